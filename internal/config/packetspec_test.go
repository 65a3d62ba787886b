package config

import (
	"errors"
	"testing"

	"firestige.xyz/craft/internal/core"
)

func TestParsePacketSpec(t *testing.T) {
	spec, err := ParsePacketSpec([]byte(`
packet:
  - protocol: ethernet
    fields:
      SrcMac: "02:00:00:00:00:01"
      Ethertype: "0xAEFE"
  - protocol: ecpri
    prefix: ec
    fields:
      MessageType: 3
payload: "de ad be ef"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(spec.Layers) != 2 {
		t.Fatalf("layers = %d", len(spec.Layers))
	}
	eth := spec.Layers[0]
	if eth.Protocol != "ethernet" {
		t.Errorf("protocol = %q", eth.Protocol)
	}
	if uint64(eth.Fields["SrcMac"]) != 0x020000000001 {
		t.Errorf("SrcMac = %#x", uint64(eth.Fields["SrcMac"]))
	}
	if uint64(eth.Fields["Ethertype"]) != 0xAEFE {
		t.Errorf("Ethertype = %#x", uint64(eth.Fields["Ethertype"]))
	}
	if spec.Layers[1].Prefix != "ec" {
		t.Errorf("prefix = %q", spec.Layers[1].Prefix)
	}

	payload, err := spec.PayloadBytes()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(payload) != len(want) {
		t.Fatalf("payload = % x", payload)
	}
	for i := range want {
		if payload[i] != want[i] {
			t.Fatalf("payload = % x", payload)
		}
	}
}

func TestParseFieldValueForms(t *testing.T) {
	tests := []struct {
		raw  string
		want uint64
	}{
		{"42", 42},
		{"0x2A", 42},
		{"10.0.0.1", 0x0a000001},
		{"ff:ff:ff:ff:ff:ff", 0xffffffffffff},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseFieldValue(tt.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parse %q = %#x, want %#x", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParsePacketSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no layers", "packet: []\n"},
		{"missing protocol", "packet:\n  - fields: {A: 1}\n"},
		{"bad payload", "packet:\n  - protocol: ethernet\npayload: zz\n"},
		{"bad field value", "packet:\n  - protocol: ethernet\n    fields: {A: \"1:2:3\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePacketSpec([]byte(tt.doc))
			if !errors.Is(err, core.ErrConfigInvalid) {
				t.Fatalf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}
