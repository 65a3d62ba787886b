package header

import (
	"fmt"

	"firestige.xyz/craft/internal/core"
)

// Instance is a Descriptor bound to a byte offset inside a buffer. It
// is created and owned by the stack that binds it; all mutation goes
// through the descriptor's field table.
type Instance struct {
	desc   Descriptor
	buf    []byte
	offset int
	varLen int
}

// Bind lays the descriptor's fixed region over buf at offset. It fails
// with core.ErrTruncatedBuffer when the fixed layout does not fit.
func Bind(desc Descriptor, buf []byte, offset int) (*Instance, error) {
	if offset < 0 || offset+desc.FixedSize() > len(buf) {
		return nil, fmt.Errorf("%s needs %d bytes at offset %d of %d: %w",
			desc.Tag(), desc.FixedSize(), offset, len(buf), core.ErrTruncatedBuffer)
	}
	return &Instance{desc: desc, buf: buf, offset: offset}, nil
}

// Descriptor returns the descriptor backing this instance.
func (in *Instance) Descriptor() Descriptor { return in.desc }

// Offset returns the instance's byte offset within the buffer.
func (in *Instance) Offset() int { return in.offset }

// Size is the total length: fixed layout plus variable member.
func (in *Instance) Size() int { return in.desc.FixedSize() + in.varLen }

// VariableLen is the resolved length of the trailing variable member.
func (in *Instance) VariableLen() int { return in.varLen }

// SetVariableLen records the variable-member length. The stack calls
// this after VariableSize resolution; n is clamped to the remaining
// buffer by the caller.
func (in *Instance) SetVariableLen(n int) { in.varLen = n }

// Fixed returns the fixed-layout region of the buffer.
func (in *Instance) Fixed() []byte {
	return in.buf[in.offset : in.offset+in.desc.FixedSize()]
}

// Bytes returns the whole instance region including the variable
// member.
func (in *Instance) Bytes() []byte {
	return in.buf[in.offset : in.offset+in.Size()]
}

// Variable returns the variable-member region, empty when absent.
func (in *Instance) Variable() []byte {
	start := in.offset + in.desc.FixedSize()
	return in.buf[start : start+in.varLen]
}

// Get reads a layout field by name.
func (in *Instance) Get(name string) (uint64, error) {
	for _, f := range in.desc.Fields() {
		if f.Name == name {
			return f.Bit.Get(in.Fixed())
		}
	}
	return 0, fmt.Errorf("%s.%s: %w", in.desc.Tag(), name, core.ErrFieldNotFound)
}

// Set writes a layout field by name.
func (in *Instance) Set(name string, v uint64) error {
	for _, f := range in.desc.Fields() {
		if f.Name == name {
			return f.Bit.Set(in.Fixed(), v)
		}
	}
	return fmt.Errorf("%s.%s: %w", in.desc.Tag(), name, core.ErrFieldNotFound)
}

// GetString renders a layout field by name using the field formatter.
func (in *Instance) GetString(name string) (string, error) {
	for _, f := range in.desc.Fields() {
		if f.Name == name {
			return f.describe(in.Fixed()), nil
		}
	}
	return "", fmt.Errorf("%s.%s: %w", in.desc.Tag(), name, core.ErrFieldNotFound)
}
