package tcp

import (
	"errors"
	"strings"
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

func TestDataOffsetAndFlagsShareStorage(t *testing.T) {
	d := newDescriptor()
	inst, err := header.Bind(d, make([]byte, 20), 0)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	if err := inst.Set("DataOffset", 8); err != nil {
		t.Fatalf("set data offset: %v", err)
	}
	if err := inst.Set("Flags", FlagSYN|FlagACK); err != nil {
		t.Fatalf("set flags: %v", err)
	}

	if off, _ := inst.Get("DataOffset"); off != 8 {
		t.Errorf("DataOffset = %d", off)
	}
	if fl, _ := inst.Get("Flags"); fl != FlagSYN|FlagACK {
		t.Errorf("Flags = %#x", fl)
	}
	// Wire check: byte 12 high nibble is the offset; SYN+ACK is 0x12.
	if b := inst.Fixed()[12]; b != 0x80 {
		t.Errorf("byte 12 = %#02x, want 0x80", b)
	}
	if b := inst.Fixed()[13]; b != 0x12 {
		t.Errorf("byte 13 = %#02x, want 0x12", b)
	}
}

func TestVariableSize(t *testing.T) {
	d := newDescriptor()

	fixed := make([]byte, 20)
	fixed[12] = 0x70 // data offset 7
	n, err := d.VariableSize(fixed, 1024)
	if err != nil {
		t.Fatalf("variable size: %v", err)
	}
	if n != 8 {
		t.Errorf("options = %d bytes, want 8", n)
	}

	fixed[12] = 0x30
	if _, err := d.VariableSize(fixed, 1024); !errors.Is(err, core.ErrTruncatedBuffer) {
		t.Errorf("expected ErrTruncatedBuffer, got %v", err)
	}
}

func TestFlagsString(t *testing.T) {
	got := FlagsString(FlagSYN | FlagACK)
	for _, want := range []string{"SYN", "ACK", "0x012"} {
		if !strings.Contains(got, want) {
			t.Errorf("FlagsString = %q, missing %q", got, want)
		}
	}
	if got := FlagsString(0); got != "0x000" {
		t.Errorf("FlagsString(0) = %q", got)
	}
}
