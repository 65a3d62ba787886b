package header

import (
	"fmt"
	"strings"
)

// Descriptor describes one protocol header's wire layout and behavior,
// independent of any particular buffer. Implementations embed Layout
// for the generic parts and override the resolver hooks they need.
// Descriptors are immutable once registered.
type Descriptor interface {
	// Tag is the registry key, e.g. "ipv4".
	Tag() string

	// ShortName is the canonical named-args prefix, e.g. "ipv4" for
	// keys like "ipv4Ttl". Callers may substitute their own prefix to
	// disambiguate repeated layers.
	ShortName() string

	// Fields returns the fixed layout in wire order.
	Fields() []Field

	// FixedSize is the byte length of the fixed layout.
	FixedSize() int

	// VariableSize returns the length in bytes of the trailing
	// variable member given the filled fixed region and the number of
	// buffer bytes remaining after it. Zero for headers without one.
	VariableSize(fixed []byte, remaining int) (int, error)

	// DefaultNamedArgs fills in absent prefix+FieldName entries. next
	// is the tag of the following header ("" when terminal) and
	// trailing is the total byte size of everything that follows this
	// header in the stack being filled. Present entries are never
	// overwritten; the function is pure and idempotent.
	DefaultNamedArgs(prefix string, args NamedArgs, next string, trailing int) NamedArgs

	// Fill writes every layout field into the instance, taking
	// args[prefix+FieldName] when present and the field default
	// otherwise.
	Fill(inst *Instance, args NamedArgs, prefix string) error

	// NextHeader inspects the written fields and names the protocol
	// that interprets the following bytes. ok is false for terminal or
	// undecidable headers.
	NextHeader(inst *Instance) (tag string, ok bool)

	// Describe renders all field values as one human-readable line.
	Describe(inst *Instance) string
}

// Layout is the reusable core of a Descriptor: tag, prefix and the
// fixed field table, with generic fill/describe/size logic. Protocol
// packages embed it and keep only their resolver logic local.
type Layout struct {
	Name   string // registry tag
	Prefix string // canonical named-args prefix; Name when empty
	Fixed  []Field
	size   int
}

// NewLayout validates the field table and computes the fixed size.
// Registration-time misuse is a programming error, so it panics the
// same way the stdlib does for bad regexps.
func NewLayout(name, prefix string, fields []Field) Layout {
	if prefix == "" {
		prefix = name
	}
	size := 0
	for _, f := range fields {
		if err := f.validate(); err != nil {
			panic(fmt.Sprintf("header: layout %q field %q: %v", name, f.Name, err))
		}
		if end := f.Bit.Offset + f.Bit.Size; end > size {
			size = end
		}
	}
	return Layout{Name: name, Prefix: prefix, Fixed: fields, size: size}
}

func (l *Layout) Tag() string       { return l.Name }
func (l *Layout) ShortName() string { return l.Prefix }
func (l *Layout) Fields() []Field   { return l.Fixed }
func (l *Layout) FixedSize() int    { return l.size }

// VariableSize defaults to no variable member.
func (l *Layout) VariableSize(fixed []byte, remaining int) (int, error) { return 0, nil }

// DefaultNamedArgs defaults to the per-field constants only.
func (l *Layout) DefaultNamedArgs(prefix string, args NamedArgs, next string, trailing int) NamedArgs {
	return args
}

// NextHeader defaults to terminal.
func (l *Layout) NextHeader(inst *Instance) (string, bool) { return "", false }

// Fill writes every field of the fixed layout into the instance. The
// value for field F is args[prefix+F] when present, F's declared
// default otherwise. Fields not covered by args keep deterministic
// contents because every field is written exactly once.
func (l *Layout) Fill(inst *Instance, args NamedArgs, prefix string) error {
	b := inst.Fixed()
	for _, f := range l.Fixed {
		v := f.Default
		if av, ok := args[prefix+f.Name]; ok {
			v = av
		}
		if err := f.Bit.Set(b, v); err != nil {
			return fmt.Errorf("fill %s.%s: %w", l.Name, f.Name, err)
		}
	}
	return nil
}

// Describe renders "tag: name=value name=value ..." in layout order.
func (l *Layout) Describe(inst *Instance) string {
	b := inst.Fixed()
	var sb strings.Builder
	sb.WriteString(l.Name)
	sb.WriteByte(':')
	for _, f := range l.Fixed {
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(f.describe(b))
	}
	if n := inst.VariableLen(); n > 0 {
		fmt.Fprintf(&sb, " +%dB variable", n)
	}
	return sb.String()
}
