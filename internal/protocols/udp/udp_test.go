package udp

import (
	"testing"

	"firestige.xyz/craft/internal/header"
)

func TestPortBindingDispatch(t *testing.T) {
	ResetPorts()
	defer ResetPorts()
	BindPort(5123, "ecpri")

	d := newDescriptor()
	inst, err := header.Bind(d, make([]byte, 8), 0)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	t.Run("destination port wins", func(t *testing.T) {
		_ = inst.Set("SrcPort", 40000)
		_ = inst.Set("DstPort", 5123)
		tag, ok := d.NextHeader(inst)
		if !ok || tag != "ecpri" {
			t.Fatalf("got (%q, %v)", tag, ok)
		}
	})

	t.Run("source port fallback", func(t *testing.T) {
		_ = inst.Set("SrcPort", 5123)
		_ = inst.Set("DstPort", 40000)
		tag, ok := d.NextHeader(inst)
		if !ok || tag != "ecpri" {
			t.Fatalf("got (%q, %v)", tag, ok)
		}
	})

	t.Run("unbound ports are terminal", func(t *testing.T) {
		_ = inst.Set("SrcPort", 1)
		_ = inst.Set("DstPort", 2)
		if tag, ok := d.NextHeader(inst); ok {
			t.Fatalf("unexpected next header %q", tag)
		}
	})
}

func TestDefaultNamedArgs(t *testing.T) {
	ResetPorts()
	defer ResetPorts()
	BindPort(6000, "ecpri")
	BindPort(5123, "ecpri")

	d := newDescriptor()
	args := d.DefaultNamedArgs("udp", header.NamedArgs{}, "ecpri", 12)

	if args["udpLength"] != 8+12 {
		t.Errorf("Length = %d, want 20", args["udpLength"])
	}
	// Lowest bound port, deterministic across map iteration order.
	if args["udpDstPort"] != 5123 {
		t.Errorf("DstPort = %d, want 5123", args["udpDstPort"])
	}
}

func TestDefaultNamedArgsNoBinding(t *testing.T) {
	ResetPorts()
	d := newDescriptor()
	args := d.DefaultNamedArgs("udp", header.NamedArgs{}, "ecpri", 4)
	if _, ok := args["udpDstPort"]; ok {
		t.Error("DstPort defaulted without a binding")
	}
}
