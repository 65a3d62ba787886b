package filter

import (
	"encoding/binary"
	"errors"
	"testing"

	"firestige.xyz/craft/internal/core"
)

// frame builds a minimal Ethernet+IPv4 frame for filter tests.
func frame(etherType uint16, proto byte, src, dst uint32) []byte {
	b := make([]byte, 34)
	binary.BigEndian.PutUint16(b[12:], etherType)
	b[14] = 0x45
	b[23] = proto
	binary.BigEndian.PutUint32(b[26:], src)
	binary.BigEndian.PutUint32(b[30:], dst)
	return b
}

const (
	hostA = 0x0a000001 // 10.0.0.1
	hostB = 0x0a000002 // 10.0.0.2
)

func TestCompileAndMatch(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		pkt   []byte
		match bool
	}{
		{"empty matches all", "", frame(0x0806, 0, 0, 0), true},
		{"ip matches ipv4", "ip", frame(0x0800, 17, hostA, hostB), true},
		{"ip rejects arp", "ip", frame(0x0806, 0, 0, 0), false},
		{"ip6 matches", "ip6", frame(0x86DD, 0, 0, 0), true},
		{"udp matches", "udp", frame(0x0800, 17, hostA, hostB), true},
		{"udp rejects tcp", "udp", frame(0x0800, 6, hostA, hostB), false},
		{"tcp matches", "tcp", frame(0x0800, 6, hostA, hostB), true},
		{"src matches", "src 10.0.0.1", frame(0x0800, 17, hostA, hostB), true},
		{"src rejects other", "src 10.0.0.2", frame(0x0800, 17, hostA, hostB), false},
		{"dst matches", "dst 10.0.0.2", frame(0x0800, 17, hostA, hostB), true},
		{"host matches src side", "host 10.0.0.1", frame(0x0800, 17, hostA, hostB), true},
		{"host matches dst side", "host 10.0.0.2", frame(0x0800, 17, hostA, hostB), true},
		{"host rejects absent", "host 10.0.0.3", frame(0x0800, 17, hostA, hostB), false},
		{"conjunction passes", "udp and host 10.0.0.1", frame(0x0800, 17, hostA, hostB), true},
		{"conjunction fails", "udp and host 10.0.0.3", frame(0x0800, 17, hostA, hostB), false},
		{"uppercase ok", "IP AND SRC 10.0.0.1", frame(0x0800, 17, hostA, hostB), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("compile %q: %v", tt.expr, err)
			}
			if got := f.Match(tt.pkt); got != tt.match {
				t.Errorf("match = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		"bogus",
		"src",
		"host not-an-address",
		"src 2001:db8::1",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr)
			if !errors.Is(err, core.ErrConfigInvalid) {
				t.Fatalf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestShortFrameRejected(t *testing.T) {
	f, err := Compile("src 10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if f.Match([]byte{0x00, 0x01}) {
		t.Error("short frame matched an address filter")
	}
}
