// Package header implements the typed header registry: bit-level field
// accessors, protocol descriptors, header instances bound to a buffer,
// and the process-wide protocol registry.
package header

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/craft/internal/core"
)

// BitField addresses a run of bits inside a fixed-width, big-endian
// storage integer located at a byte offset within a header. A plain
// full-width field is a BitField with Shift=0 and Bits=Size*8.
//
// Out-of-range writes fail with core.ErrValueOutOfRange; values are
// never silently masked. This policy is uniform across all fields.
type BitField struct {
	Offset int  // byte offset of the storage integer within the header
	Size   int  // storage width in bytes: 1, 2, 4 or 8
	Shift  uint // bit offset of the field within the storage, LSB-based
	Bits   uint // field width in bits
}

// Valid reports whether the bit field addresses a representable region.
func (f BitField) Valid() error {
	switch f.Size {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("storage size %d: %w", f.Size, core.ErrBadFieldSpec)
	}
	if f.Bits == 0 || f.Shift+f.Bits > uint(f.Size)*8 {
		return fmt.Errorf("shift %d + bits %d exceeds %d-bit storage: %w",
			f.Shift, f.Bits, f.Size*8, core.ErrBadFieldSpec)
	}
	return nil
}

// mask returns the field mask in storage position (already shifted).
func (f BitField) mask() uint64 {
	if f.Bits >= 64 {
		return ^uint64(0)
	}
	return ((uint64(1) << f.Bits) - 1) << f.Shift
}

// Get reads the field value from b, which must hold the whole storage
// integer starting at Offset.
func (f BitField) Get(b []byte) (uint64, error) {
	raw, err := f.load(b)
	if err != nil {
		return 0, err
	}
	return (raw & f.mask()) >> f.Shift, nil
}

// Set writes v into the field, leaving every other bit of the storage
// integer untouched (read-modify-write).
func (f BitField) Set(b []byte, v uint64) error {
	if f.Bits < 64 && v >= uint64(1)<<f.Bits {
		return fmt.Errorf("value %#x does not fit in %d bits: %w", v, f.Bits, core.ErrValueOutOfRange)
	}
	raw, err := f.load(b)
	if err != nil {
		return err
	}
	raw = (raw &^ f.mask()) | (v << f.Shift)
	return f.store(b, raw)
}

// GetString renders the field value as zero-padded hex sized to the
// field width.
func (f BitField) GetString(b []byte) string {
	v, err := f.Get(b)
	if err != nil {
		return "<err>"
	}
	digits := int(f.Bits+3) / 4
	return fmt.Sprintf("0x%0*X", digits, v)
}

func (f BitField) load(b []byte) (uint64, error) {
	if f.Offset < 0 || f.Offset+f.Size > len(b) {
		return 0, fmt.Errorf("storage [%d:%d) outside %d-byte header: %w",
			f.Offset, f.Offset+f.Size, len(b), core.ErrTruncatedBuffer)
	}
	s := b[f.Offset:]
	switch f.Size {
	case 1:
		return uint64(s[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(s)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(s)), nil
	case 8:
		return binary.BigEndian.Uint64(s), nil
	}
	return 0, fmt.Errorf("storage size %d: %w", f.Size, core.ErrBadFieldSpec)
}

func (f BitField) store(b []byte, raw uint64) error {
	if f.Offset < 0 || f.Offset+f.Size > len(b) {
		return fmt.Errorf("storage [%d:%d) outside %d-byte header: %w",
			f.Offset, f.Offset+f.Size, len(b), core.ErrTruncatedBuffer)
	}
	s := b[f.Offset:]
	switch f.Size {
	case 1:
		s[0] = byte(raw)
	case 2:
		binary.BigEndian.PutUint16(s, uint16(raw))
	case 4:
		binary.BigEndian.PutUint32(s, uint32(raw))
	case 8:
		binary.BigEndian.PutUint64(s, raw)
	default:
		return fmt.Errorf("storage size %d: %w", f.Size, core.ErrBadFieldSpec)
	}
	return nil
}
