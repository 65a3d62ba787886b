// Package tcp registers the TCP header descriptor. Options past the 20
// fixed bytes are the variable member, sized by the data offset.
package tcp

import (
	"fmt"
	"strings"

	"firestige.xyz/craft/internal/core"
	"firestige.xyz/craft/internal/header"
)

const Tag = "tcp"

const fixedLen = 20

// Flag bits of the 9-bit flags field (NS through FIN).
const (
	FlagFIN = 1 << 0
	FlagSYN = 1 << 1
	FlagRST = 1 << 2
	FlagPSH = 1 << 3
	FlagACK = 1 << 4
	FlagURG = 1 << 5
	FlagECE = 1 << 6
	FlagCWR = 1 << 7
	FlagNS  = 1 << 8
)

var flagNames = []struct {
	bit  uint64
	name string
}{
	{FlagNS, "NS"}, {FlagCWR, "CWR"}, {FlagECE, "ECE"}, {FlagURG, "URG"},
	{FlagACK, "ACK"}, {FlagPSH, "PSH"}, {FlagRST, "RST"}, {FlagSYN, "SYN"},
	{FlagFIN, "FIN"},
}

// FlagsString renders set flag bits as "0x012[ACK,SYN]".
func FlagsString(v uint64) string {
	var names []string
	for _, f := range flagNames {
		if v&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%03X", v)
	}
	return fmt.Sprintf("0x%03X[%s]", v, strings.Join(names, ","))
}

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.U16("SrcPort", 0),
		header.U16("DstPort", 2),
		header.U32("SeqNumber", 4),
		header.U32("AckNumber", 8),
		header.Bits("DataOffset", 12, 2, 12, 4).WithDefault(5),
		header.Bits("Flags", 12, 2, 0, 9).WithFormat(FlagsString),
		header.U16("Window", 14).WithDefault(65535),
		header.U16("Checksum", 16),
		header.U16("UrgentPointer", 18),
	})}
}

// VariableSize derives the options length from the data offset.
func (d *descriptor) VariableSize(fixed []byte, remaining int) (int, error) {
	off := uint64(fixed[12] >> 4)
	if off < 5 {
		return 0, fmt.Errorf("data offset %d below minimum: %w", off, core.ErrTruncatedBuffer)
	}
	return int(off)*4 - fixedLen, nil
}

func init() {
	header.MustRegister(newDescriptor())
}
