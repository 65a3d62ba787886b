// Package vlan registers the IEEE 802.1Q tag descriptor. QinQ stacks
// two of these layers; callers disambiguate their named args with
// distinct prefixes ("vlanOuter", "vlanInner").
package vlan

import (
	"fmt"

	"firestige.xyz/craft/internal/header"
	"firestige.xyz/craft/internal/protocols/ethernet"
)

const Tag = "vlan"

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.Bits("Pcp", 0, 2, 13, 3),
		header.Bits("Dei", 0, 2, 12, 1),
		header.Bits("Vid", 0, 2, 0, 12).WithFormat(func(v uint64) string {
			return fmt.Sprintf("%d", v)
		}),
		header.U16("Ethertype", 2).WithDefault(ethernet.EtherTypeIPv4),
	})}
}

func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	if et, ok := ethernet.EtherTypeFor(next); ok {
		args.SetDefault(prefix+"Ethertype", et)
	}
	return args
}

// NextHeader dispatches on the inner EtherType, same table as the
// Ethernet descriptor.
func (d *descriptor) NextHeader(inst *header.Instance) (string, bool) {
	et, err := inst.Get("Ethertype")
	if err != nil {
		return "", false
	}
	return ethernet.ResolveEtherType(et)
}

func init() {
	header.MustRegister(newDescriptor())
}
