// Package ipv4 registers the IPv4 header descriptor. The options
// region past the 20 fixed bytes is the variable member, sized by IHL.
package ipv4

import (
	"fmt"

	"firestige.xyz/craft/internal/core"
	"firestige.xyz/craft/internal/header"
)

const Tag = "ipv4"

const fixedLen = 20

// IP protocol numbers understood by the next-header resolver.
const (
	ProtoTCP = 6
	ProtoUDP = 17
)

// AddrString renders the low 32 bits of v in dotted-quad form.
func AddrString(v uint64) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// protocolFor returns the protocol number announcing the given tag.
func protocolFor(tag string) (uint64, bool) {
	switch tag {
	case "tcp":
		return ProtoTCP, true
	case "udp":
		return ProtoUDP, true
	}
	return 0, false
}

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.Bits("Version", 0, 1, 4, 4).WithDefault(4),
		header.Bits("Ihl", 0, 1, 0, 4).WithDefault(5),
		header.Bits("Dscp", 1, 1, 2, 6),
		header.Bits("Ecn", 1, 1, 0, 2),
		header.U16("TotalLength", 2),
		header.U16("Identification", 4),
		header.Bits("Flags", 6, 2, 13, 3),
		header.Bits("FragmentOffset", 6, 2, 0, 13),
		header.U8("Ttl", 8).WithDefault(64),
		header.U8("Protocol", 9),
		header.U16("HeaderChecksum", 10),
		header.U32("SrcAddr", 12).WithFormat(AddrString),
		header.U32("DstAddr", 16).WithFormat(AddrString),
	})}
}

// VariableSize derives the options length from IHL. An IHL below the
// mandatory 5 words marks a malformed header.
func (d *descriptor) VariableSize(fixed []byte, remaining int) (int, error) {
	ihl := uint64(fixed[0] & 0x0f)
	if ihl < 5 {
		return 0, fmt.Errorf("ihl %d below minimum: %w", ihl, core.ErrTruncatedBuffer)
	}
	return int(ihl)*4 - fixedLen, nil
}

// DefaultNamedArgs derives TotalLength from the header's own size plus
// everything after it, and the Protocol number from the next layer's
// tag. The header size honors a caller-pinned IHL.
func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	ihl := uint64(5)
	if v, ok := args[prefix+"Ihl"]; ok {
		ihl = v
	}
	args.SetDefault(prefix+"TotalLength", ihl*4+uint64(trailing))
	if proto, ok := protocolFor(next); ok {
		args.SetDefault(prefix+"Protocol", proto)
	}
	return args
}

// NextHeader dispatches on the protocol number.
func (d *descriptor) NextHeader(inst *header.Instance) (string, bool) {
	proto, err := inst.Get("Protocol")
	if err != nil {
		return "", false
	}
	switch proto {
	case ProtoTCP:
		return "tcp", true
	case ProtoUDP:
		return "udp", true
	}
	return "", false
}

func init() {
	header.MustRegister(newDescriptor())
}
