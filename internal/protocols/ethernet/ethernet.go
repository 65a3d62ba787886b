// Package ethernet registers the Ethernet II header descriptor.
package ethernet

import (
	"fmt"

	"firestige.xyz/craft/internal/header"
)

// Tag is the registry key for this descriptor.
const Tag = "ethernet"

// EtherType values understood by the next-header resolver.
const (
	EtherTypeIPv4  = 0x0800
	EtherTypeVLAN  = 0x8100
	EtherTypeQinQ  = 0x88A8
	EtherTypeIPv6  = 0x86DD
	EtherTypeECPRI = 0xAEFE
)

// etherTypeTags maps EtherType values to descriptor tags. Shared with
// the VLAN descriptor, whose inner EtherType follows the same rules.
var etherTypeTags = map[uint64]string{
	EtherTypeIPv4:  "ipv4",
	EtherTypeIPv6:  "ipv6",
	EtherTypeVLAN:  "vlan",
	EtherTypeQinQ:  "vlan",
	EtherTypeECPRI: "ecpri",
}

// ResolveEtherType maps an EtherType value to a descriptor tag.
func ResolveEtherType(v uint64) (string, bool) {
	tag, ok := etherTypeTags[v]
	return tag, ok
}

// EtherTypeFor returns the EtherType value announcing the given tag,
// used when defaulting the EtherType field from the next layer.
func EtherTypeFor(tag string) (uint64, bool) {
	switch tag {
	case "ipv4":
		return EtherTypeIPv4, true
	case "ipv6":
		return EtherTypeIPv6, true
	case "vlan":
		return EtherTypeVLAN, true
	case "ecpri":
		return EtherTypeECPRI, true
	}
	return 0, false
}

// MACString renders the low 48 bits of v as a colon-separated MAC.
func MACString(v uint64) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.U48("DstMac", 0).WithFormat(MACString),
		header.U48("SrcMac", 6).WithFormat(MACString),
		header.U16("Ethertype", 12).WithDefault(EtherTypeIPv4),
	})}
}

// DefaultNamedArgs derives the EtherType from the following layer's
// tag when the caller did not pin one.
func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	if et, ok := EtherTypeFor(next); ok {
		args.SetDefault(prefix+"Ethertype", et)
	}
	return args
}

// NextHeader dispatches on the EtherType field.
func (d *descriptor) NextHeader(inst *header.Instance) (string, bool) {
	et, err := inst.Get("Ethertype")
	if err != nil {
		return "", false
	}
	tag, ok := etherTypeTags[et]
	return tag, ok
}

func init() {
	header.MustRegister(newDescriptor())
}
