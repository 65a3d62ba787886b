package header

import (
	"fmt"

	"firestige.xyz/craft/internal/core"
)

// Field is one named entry of a header's fixed layout: a BitField plus
// the fill default and the optional human formatter used by Describe.
type Field struct {
	Name    string
	Bit     BitField
	Default uint64
	// Format renders the value for Describe. Nil means hex via
	// BitField.GetString.
	Format func(v uint64) string
}

// U8 declares a plain one-byte field at the given byte offset.
func U8(name string, offset int) Field {
	return Field{Name: name, Bit: BitField{Offset: offset, Size: 1, Bits: 8}}
}

// U16 declares a plain big-endian two-byte field.
func U16(name string, offset int) Field {
	return Field{Name: name, Bit: BitField{Offset: offset, Size: 2, Bits: 16}}
}

// U32 declares a plain big-endian four-byte field.
func U32(name string, offset int) Field {
	return Field{Name: name, Bit: BitField{Offset: offset, Size: 4, Bits: 32}}
}

// U48 declares a six-byte field (MAC address) as the top 48 bits of an
// 8-byte big-endian window starting at the field's byte offset. The
// window's low two bytes belong to the following field and are
// preserved by the read-modify-write in BitField.Set, so offset+8 must
// still lie inside the header.
func U48(name string, offset int) Field {
	return Field{Name: name, Bit: BitField{Offset: offset, Size: 8, Shift: 16, Bits: 48}}
}

// Bits declares a sub-storage bit field inside a storage integer of
// size bytes at the given byte offset.
func Bits(name string, offset, size int, shift, bits uint) Field {
	return Field{Name: name, Bit: BitField{Offset: offset, Size: size, Shift: shift, Bits: bits}}
}

// WithDefault returns a copy of the field with the fill default set.
func (f Field) WithDefault(v uint64) Field {
	f.Default = v
	return f
}

// WithFormat returns a copy of the field with a Describe formatter.
func (f Field) WithFormat(fn func(v uint64) string) Field {
	f.Format = fn
	return f
}

// describe renders the field for dump output.
func (f Field) describe(b []byte) string {
	if f.Format != nil {
		v, err := f.Bit.Get(b)
		if err != nil {
			return "<err>"
		}
		return f.Format(v)
	}
	return f.Bit.GetString(b)
}

// validate checks the field spec at registration time.
func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("unnamed field: %w", core.ErrBadFieldSpec)
	}
	return f.Bit.Valid()
}
