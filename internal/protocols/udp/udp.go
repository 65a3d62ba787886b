// Package udp registers the UDP header descriptor. Application
// protocols ride over UDP through a port-binding table populated
// before parsing starts, so layering a new application header needs
// no engine change.
package udp

import (
	"sync"

	"firestige.xyz/craft/internal/header"
)

const Tag = "udp"

const headerLen = 8

// portTable maps UDP ports to descriptor tags. Populated at startup
// (config or init), read-only while packets are in flight.
var (
	portMu    sync.RWMutex
	portTable = map[uint64]string{}
)

// BindPort routes packets with the given source or destination port to
// the tagged descriptor. Rebinding a port replaces the previous tag.
func BindPort(port uint16, tag string) {
	portMu.Lock()
	defer portMu.Unlock()
	portTable[uint64(port)] = tag
}

// ResetPorts clears all bindings. Test helper.
func ResetPorts() {
	portMu.Lock()
	defer portMu.Unlock()
	portTable = map[uint64]string{}
}

func lookupPort(port uint64) (string, bool) {
	portMu.RLock()
	defer portMu.RUnlock()
	tag, ok := portTable[port]
	return tag, ok
}

// portFor returns a port bound to the given tag, lowest first so the
// choice is deterministic.
func portFor(tag string) (uint64, bool) {
	portMu.RLock()
	defer portMu.RUnlock()
	best := uint64(0)
	found := false
	for port, t := range portTable {
		if t != tag {
			continue
		}
		if !found || port < best {
			best = port
			found = true
		}
	}
	return best, found
}

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.U16("SrcPort", 0),
		header.U16("DstPort", 2),
		header.U16("Length", 4),
		header.U16("Checksum", 6),
	})}
}

// DefaultNamedArgs derives Length from the datagram size and, when a
// port is bound for the next layer's tag, the destination port.
func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	args.SetDefault(prefix+"Length", uint64(headerLen+trailing))
	if port, ok := portFor(next); ok {
		args.SetDefault(prefix+"DstPort", port)
	}
	return args
}

// NextHeader consults the port table, destination port first.
func (d *descriptor) NextHeader(inst *header.Instance) (string, bool) {
	if dst, err := inst.Get("DstPort"); err == nil {
		if tag, ok := lookupPort(dst); ok {
			return tag, true
		}
	}
	if src, err := inst.Get("SrcPort"); err == nil {
		if tag, ok := lookupPort(src); ok {
			return tag, true
		}
	}
	return "", false
}

func init() {
	header.MustRegister(newDescriptor())
}
