package ipv4

import (
	"errors"
	"testing"

	"firestige.xyz/craft/internal/core"
	"firestige.xyz/craft/internal/header"
)

func TestLayoutShape(t *testing.T) {
	d := newDescriptor()
	if d.FixedSize() != 20 {
		t.Fatalf("fixed size = %d, want 20", d.FixedSize())
	}
}

func TestVersionIhlShareByteZero(t *testing.T) {
	d := newDescriptor()
	inst, err := header.Bind(d, make([]byte, 20), 0)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	if err := d.Fill(inst, header.NamedArgs{}, "ipv4"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if b := inst.Fixed()[0]; b != 0x45 {
		t.Fatalf("byte 0 = %#02x, want 0x45 (version 4, ihl 5)", b)
	}
}

func TestVariableSize(t *testing.T) {
	d := newDescriptor()

	tests := []struct {
		name string
		ihl  byte
		want int
		err  error
	}{
		{"no options", 0x45, 0, nil},
		{"max options", 0x4f, 40, nil},
		{"malformed", 0x42, 0, core.ErrTruncatedBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := make([]byte, 20)
			fixed[0] = tt.ihl
			got, err := d.VariableSize(fixed, 1024)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("variable size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextHeader(t *testing.T) {
	d := newDescriptor()
	inst, _ := header.Bind(d, make([]byte, 20), 0)

	tests := []struct {
		proto uint64
		tag   string
		ok    bool
	}{
		{ProtoUDP, "udp", true},
		{ProtoTCP, "tcp", true},
		{41, "", false}, // IPv6-in-IPv4, not modeled
	}
	for _, tt := range tests {
		if err := inst.Set("Protocol", tt.proto); err != nil {
			t.Fatalf("set protocol: %v", err)
		}
		tag, ok := d.NextHeader(inst)
		if tag != tt.tag || ok != tt.ok {
			t.Errorf("proto %d: got (%q, %v), want (%q, %v)", tt.proto, tag, ok, tt.tag, tt.ok)
		}
	}
}

func TestDefaultNamedArgsHonorsPinnedIhl(t *testing.T) {
	d := newDescriptor()
	args := d.DefaultNamedArgs("ipv4", header.NamedArgs{"ipv4Ihl": 6}, "udp", 100)
	if args["ipv4TotalLength"] != 24+100 {
		t.Errorf("TotalLength = %d, want %d", args["ipv4TotalLength"], 24+100)
	}
	if args["ipv4Protocol"] != ProtoUDP {
		t.Errorf("Protocol = %d, want %d", args["ipv4Protocol"], ProtoUDP)
	}
}

func TestAddrString(t *testing.T) {
	if got := AddrString(0x0a000001); got != "10.0.0.1" {
		t.Errorf("AddrString = %q", got)
	}
}
