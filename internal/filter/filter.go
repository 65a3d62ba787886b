// Package filter compiles a tcpdump-style subset into cBPF programs
// over Ethernet frames, used to pre-select packets before parsing.
//
// Supported tokens, combined with "and": ip, ip6, udp, tcp,
// src <ipv4>, dst <ipv4>, host <ipv4>.
package filter

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/bpf"

	"firestige.xyz/craft/internal/core"
)

// Classic BPF offsets within an Ethernet frame, no VLAN shim.
const (
	offEtherType = 12
	offIPProto   = 23
	offSrcAddr   = 26
	offDstAddr   = 30

	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	ipProtoTCP    = 6
	ipProtoUDP    = 17
)

// Filter matches Ethernet frames against a compiled program.
type Filter struct {
	vm *bpf.VM
}

// Compile builds a filter from the expression. An empty expression
// matches everything.
func Compile(expr string) (*Filter, error) {
	prog, err := compile(expr)
	if err != nil {
		return nil, err
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", expr, err)
	}
	return &Filter{vm: vm}, nil
}

// Match reports whether the frame passes the filter.
func (f *Filter) Match(frame []byte) bool {
	n, err := f.vm.Run(frame)
	return err == nil && n > 0
}

// snippet is one condition's instructions; the final instruction is a
// JumpIf whose SkipFalse is patched to reach the reject return.
type snippet []bpf.Instruction

func compile(expr string) ([]bpf.Instruction, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" {
		return []bpf.Instruction{bpf.RetConstant{Val: 0xffff}}, nil
	}

	var snippets []snippet
	tokens := strings.Fields(expr)
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "and":
			// separator only
		case "ip":
			snippets = append(snippets, etherTypeSnippet(etherTypeIPv4))
		case "ip6", "ipv6":
			snippets = append(snippets, etherTypeSnippet(etherTypeIPv6))
		case "udp":
			snippets = append(snippets, etherTypeSnippet(etherTypeIPv4), protoSnippet(ipProtoUDP))
		case "tcp":
			snippets = append(snippets, etherTypeSnippet(etherTypeIPv4), protoSnippet(ipProtoTCP))
		case "src", "dst", "host":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%q needs an address: %w", tokens[i], core.ErrConfigInvalid)
			}
			addr, err := parseIPv4(tokens[i+1])
			if err != nil {
				return nil, err
			}
			switch tokens[i] {
			case "src":
				snippets = append(snippets, addrSnippet(offSrcAddr, addr))
			case "dst":
				snippets = append(snippets, addrSnippet(offDstAddr, addr))
			default:
				snippets = append(snippets, hostSnippet(addr))
			}
			i++
		default:
			return nil, fmt.Errorf("unknown filter token %q: %w", tokens[i], core.ErrConfigInvalid)
		}
	}

	return assemble(snippets), nil
}

func etherTypeSnippet(etherType uint32) snippet {
	return snippet{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherType},
	}
}

func protoSnippet(proto uint32) snippet {
	return snippet{
		bpf.LoadAbsolute{Off: offIPProto, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: proto},
	}
}

func addrSnippet(off uint32, addr uint32) snippet {
	return snippet{
		bpf.LoadAbsolute{Off: off, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: addr},
	}
}

// hostSnippet accepts the address on either side: a source match skips
// the destination check.
func hostSnippet(addr uint32) snippet {
	return snippet{
		bpf.LoadAbsolute{Off: offSrcAddr, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: addr, SkipTrue: 2},
		bpf.LoadAbsolute{Off: offDstAddr, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: addr},
	}
}

// assemble concatenates the snippets and patches every terminal JumpIf
// so a failed condition reaches the reject return.
func assemble(snippets []snippet) []bpf.Instruction {
	total := 0
	for _, s := range snippets {
		total += len(s)
	}
	prog := make([]bpf.Instruction, 0, total+2)
	for _, s := range snippets {
		start := len(prog)
		prog = append(prog, s...)
		last := start + len(s) - 1
		jump := prog[last].(bpf.JumpIf)
		// reject sits at index total+1
		jump.SkipFalse = uint8(total + 1 - last - 1)
		prog[last] = jump
	}
	prog = append(prog,
		bpf.RetConstant{Val: 0xffff},
		bpf.RetConstant{Val: 0},
	)
	return prog
}

func parseIPv4(raw string) (uint32, error) {
	ip := net.ParseIP(raw)
	if ip == nil || ip.To4() == nil {
		return 0, fmt.Errorf("address %q is not IPv4: %w", raw, core.ErrConfigInvalid)
	}
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), nil
}
