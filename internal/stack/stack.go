// Package stack layers header instances over one contiguous buffer,
// driving parse (buffer to stack) and fill (named args to buffer).
package stack

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"firestige.xyz/craft/internal/core"
	"firestige.xyz/craft/internal/header"
)

// Stack is an ordered sequence of header instances over a buffer,
// contiguous and non-overlapping. A Stack belongs to a single logical
// parse or fill operation and must not be shared across goroutines.
type Stack struct {
	reg     *header.Registry
	buf     []byte
	headers []*header.Instance
	cursor  int
}

// Spec describes one layer of a stack to fill, top to bottom.
type Spec struct {
	Tag    string
	Prefix string // named-args prefix; descriptor short name when empty
	Args   header.NamedArgs
}

// New wraps buf with an empty stack resolving tags through reg. The
// stack does not own the buffer memory; the caller decides whether it
// is shared.
func New(reg *header.Registry, buf []byte) *Stack {
	return &Stack{reg: reg, buf: buf}
}

// Buffer returns the underlying buffer.
func (s *Stack) Buffer() []byte { return s.buf }

// Headers returns the bound instances in stack order.
func (s *Stack) Headers() []*header.Instance { return s.headers }

// At returns the i-th instance.
func (s *Stack) At(i int) *header.Instance { return s.headers[i] }

// Len returns the number of bound instances.
func (s *Stack) Len() int { return len(s.headers) }

// Payload returns the buffer bytes past the last bound header: the
// opaque remainder after a parse, or the payload region after a fill.
func (s *Stack) Payload() []byte { return s.buf[s.cursor:] }

// Parse binds headers over the buffer starting with startTag's
// descriptor, following each header's next-header resolution until a
// terminal header, an exhausted buffer, or a tag with no registered
// descriptor. The unresolved-tag case ends the parse gracefully and
// the remainder stays opaque payload. An unregistered startTag and a
// fixed layout that does not fit the remaining buffer are hard errors.
func (s *Stack) Parse(startTag string) error {
	s.headers = s.headers[:0]
	s.cursor = 0

	desc, err := s.reg.Lookup(startTag)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	for {
		inst, err := header.Bind(desc, s.buf, s.cursor)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}

		remaining := len(s.buf) - s.cursor - desc.FixedSize()
		varLen, err := desc.VariableSize(inst.Fixed(), remaining)
		if err != nil {
			return fmt.Errorf("parse %s: %w", desc.Tag(), err)
		}
		if varLen > remaining {
			// Never claim bytes past the buffer; the tail stays opaque.
			varLen = remaining
		}
		inst.SetVariableLen(varLen)

		s.headers = append(s.headers, inst)
		s.cursor += inst.Size()

		next, ok := desc.NextHeader(inst)
		if !ok || s.cursor >= len(s.buf) {
			return nil
		}
		desc, err = s.reg.Lookup(next)
		if err != nil {
			if errors.Is(err, core.ErrProtocolNotFound) {
				logrus.WithField("tag", next).Debug("no descriptor for next header, remainder left opaque")
				return nil
			}
			return fmt.Errorf("parse: %w", err)
		}
	}
}

// Fill writes the described stack into the buffer in wire order,
// followed by payload. Sizes are resolved in a first pass so each
// header's defaulting sees the total size of everything after it;
// the second pass defaults and fills top to bottom.
func (s *Stack) Fill(specs []Spec, payload []byte) (int, error) {
	s.headers = s.headers[:0]
	s.cursor = 0

	descs := make([]header.Descriptor, len(specs))
	sizes := make([]int, len(specs))
	total := 0
	for i, sp := range specs {
		d, err := s.reg.Lookup(sp.Tag)
		if err != nil {
			return 0, fmt.Errorf("fill: %w", err)
		}
		descs[i] = d
		sz, err := plannedSize(d, sp)
		if err != nil {
			return 0, fmt.Errorf("fill %s: %w", sp.Tag, err)
		}
		sizes[i] = sz
		total += sz
	}
	total += len(payload)
	if total > len(s.buf) {
		return 0, fmt.Errorf("fill: stack needs %d bytes, buffer holds %d: %w",
			total, len(s.buf), core.ErrBufferTooSmall)
	}

	for i, sp := range specs {
		desc := descs[i]
		prefix := sp.Prefix
		if prefix == "" {
			prefix = desc.ShortName()
		}

		next := ""
		if i+1 < len(specs) {
			next = specs[i+1].Tag
		}
		trailing := total - s.cursor - sizes[i]

		args := sp.Args
		if args == nil {
			args = header.NamedArgs{}
		}
		args = desc.DefaultNamedArgs(prefix, args.Clone(), next, trailing)

		inst, err := header.Bind(desc, s.buf, s.cursor)
		if err != nil {
			return 0, fmt.Errorf("fill: %w", err)
		}
		if err := desc.Fill(inst, args, prefix); err != nil {
			return 0, fmt.Errorf("fill: %w", err)
		}
		inst.SetVariableLen(sizes[i] - desc.FixedSize())

		s.headers = append(s.headers, inst)
		s.cursor += inst.Size()
	}

	copy(s.buf[s.cursor:], payload)
	return total, nil
}

// plannedSize computes a header's wire size before the real fill by
// filling a scratch fixed region with the spec's args and resolving
// the variable member from it (e.g. IPv4 options from IHL). Length
// fields that depend on trailing context never influence the size, so
// the scratch pass needs no stack context.
func plannedSize(desc header.Descriptor, sp Spec) (int, error) {
	prefix := sp.Prefix
	if prefix == "" {
		prefix = desc.ShortName()
	}
	args := sp.Args
	if args == nil {
		args = header.NamedArgs{}
	}

	scratch := make([]byte, desc.FixedSize())
	inst, err := header.Bind(desc, scratch, 0)
	if err != nil {
		return 0, err
	}
	if err := desc.Fill(inst, args, prefix); err != nil {
		return 0, err
	}
	varLen, err := desc.VariableSize(inst.Fixed(), maxVariable)
	if err != nil {
		return 0, err
	}
	return desc.FixedSize() + varLen, nil
}

// maxVariable is the remaining-space bound handed to VariableSize
// during size planning, before the real buffer bound is known.
const maxVariable = 1 << 20

// Dump renders one line per instance in stack order.
func (s *Stack) Dump() []string {
	lines := make([]string, 0, len(s.headers))
	for _, inst := range s.headers {
		lines = append(lines, inst.Descriptor().Describe(inst))
	}
	return lines
}
