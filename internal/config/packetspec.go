package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"firestige.xyz/craft/internal/core"
)

// PacketSpec is one packet description document for `craft build`.
type PacketSpec struct {
	// Layers lists the stack top to bottom (outermost first).
	Layers []LayerSpec `yaml:"packet"`
	// Payload is hex-encoded opaque payload appended after the last
	// header.
	Payload string `yaml:"payload"`
}

// LayerSpec describes one header layer. Prefix overrides the
// protocol's canonical named-args prefix, for stacks carrying the same
// protocol twice.
type LayerSpec struct {
	Protocol string                `yaml:"protocol"`
	Prefix   string                `yaml:"prefix"`
	Fields   map[string]FieldValue `yaml:"fields"`
}

// FieldValue accepts integers plus the spellings people actually put
// in packet specs: "0x..." hex, "aa:bb:cc:dd:ee:ff" MACs and dotted
// quads.
type FieldValue uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FieldValue) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		var n uint64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("field value %q: %w", node.Value, core.ErrConfigInvalid)
		}
		*f = FieldValue(n)
		return nil
	}
	v, err := parseFieldValue(raw)
	if err != nil {
		return err
	}
	*f = FieldValue(v)
	return nil
}

func parseFieldValue(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.Contains(raw, ":"):
		return parseMAC(raw)
	case strings.Count(raw, ".") == 3:
		return parseDottedQuad(raw)
	default:
		v, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("field value %q: %w", raw, core.ErrConfigInvalid)
		}
		return v, nil
	}
}

func parseMAC(raw string) (uint64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 6 {
		return 0, fmt.Errorf("mac %q: %w", raw, core.ErrConfigInvalid)
	}
	var v uint64
	for _, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("mac %q: %w", raw, core.ErrConfigInvalid)
		}
		v = v<<8 | b
	}
	return v, nil
}

func parseDottedQuad(raw string) (uint64, error) {
	parts := strings.Split(raw, ".")
	var v uint64
	for _, p := range parts {
		b, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("address %q: %w", raw, core.ErrConfigInvalid)
		}
		v = v<<8 | b
	}
	return v, nil
}

// LoadPacketSpec reads and validates a packet spec document.
func LoadPacketSpec(path string) (*PacketSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read packet spec %s: %w", path, err)
	}
	return ParsePacketSpec(data)
}

// ParsePacketSpec parses a packet spec from raw YAML.
func ParsePacketSpec(data []byte) (*PacketSpec, error) {
	var spec PacketSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse packet spec: %w", err)
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("packet spec has no layers: %w", core.ErrConfigInvalid)
	}
	for i, l := range spec.Layers {
		if l.Protocol == "" {
			return nil, fmt.Errorf("layer %d has no protocol: %w", i, core.ErrConfigInvalid)
		}
	}
	if spec.Payload != "" {
		if _, err := spec.PayloadBytes(); err != nil {
			return nil, err
		}
	}
	return &spec, nil
}

// PayloadBytes decodes the hex payload.
func (s *PacketSpec) PayloadBytes() ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' {
			return -1
		}
		return r
	}, strings.TrimPrefix(s.Payload, "0x"))
	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("payload is not valid hex: %w", core.ErrConfigInvalid)
	}
	return b, nil
}
