// Package ipv6 registers the IPv6 header descriptor. The 128-bit
// addresses are split into Hi/Lo 64-bit fields because named args
// carry 64-bit scalars.
package ipv6

import (
	"firestige.xyz/craft/internal/header"
	"firestige.xyz/craft/internal/protocols/ipv4"
)

const Tag = "ipv6"

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.Bits("Version", 0, 4, 28, 4).WithDefault(6),
		header.Bits("TrafficClass", 0, 4, 20, 8),
		header.Bits("FlowLabel", 0, 4, 0, 20),
		header.U16("PayloadLength", 4),
		header.U8("NextHeader", 6),
		header.U8("HopLimit", 7).WithDefault(64),
		header.Field{Name: "SrcAddrHi", Bit: header.BitField{Offset: 8, Size: 8, Bits: 64}},
		header.Field{Name: "SrcAddrLo", Bit: header.BitField{Offset: 16, Size: 8, Bits: 64}},
		header.Field{Name: "DstAddrHi", Bit: header.BitField{Offset: 24, Size: 8, Bits: 64}},
		header.Field{Name: "DstAddrLo", Bit: header.BitField{Offset: 32, Size: 8, Bits: 64}},
	})}
}

// DefaultNamedArgs derives PayloadLength from everything after the
// header and NextHeader from the following layer's tag. The protocol
// number space is shared with IPv4.
func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	args.SetDefault(prefix+"PayloadLength", uint64(trailing))
	switch next {
	case "tcp":
		args.SetDefault(prefix+"NextHeader", ipv4.ProtoTCP)
	case "udp":
		args.SetDefault(prefix+"NextHeader", ipv4.ProtoUDP)
	}
	return args
}

// NextHeader dispatches on the Next Header field. Extension headers
// are not modeled; unknown numbers end the chain.
func (d *descriptor) NextHeader(inst *header.Instance) (string, bool) {
	nh, err := inst.Get("NextHeader")
	if err != nil {
		return "", false
	}
	switch nh {
	case ipv4.ProtoTCP:
		return "tcp", true
	case ipv4.ProtoUDP:
		return "udp", true
	}
	return "", false
}

func init() {
	header.MustRegister(newDescriptor())
}
