// Package ecpri registers the eCPRI common header descriptor.
//
// Wire layout (4 bytes, big-endian):
//
//	byte 0   version:4 (high nibble) | 3 unused bits | concatenation:1 (bit 0)
//	byte 1   message type (0-11 defined, rest reserved or operator specific)
//	byte 2-3 payload length
//
// The unused bits of byte 0 are preserved as-is. Fill defaults are
// version=0 and concatenation=0. The header is terminal: whatever
// follows it is opaque payload.
package ecpri

import (
	"fmt"

	"firestige.xyz/craft/internal/header"
)

const Tag = "ecpri"

// Message type codes defined by the eCPRI specification.
const (
	MsgIQData          = 0
	MsgBitSequence     = 1
	MsgRealTimeControl = 2
	MsgGenericData     = 3
	MsgRemoteMemAccess = 4
	MsgOneWayDelay     = 5
	MsgRemoteReset     = 6
	MsgEventIndication = 7
	MsgIWFStartUp      = 8
	MsgIWFOperation    = 9
	MsgIWFMapping      = 10
	MsgIWFDelayControl = 11
)

var messageTypeNames = map[uint64]string{
	MsgIQData:          "IQ Data",
	MsgBitSequence:     "Bit Sequence",
	MsgRealTimeControl: "Real-Time Control Data",
	MsgGenericData:     "Generic Data Transfer",
	MsgRemoteMemAccess: "Remote Memory Access",
	MsgOneWayDelay:     "One-way Delay Measurement",
	MsgRemoteReset:     "Remote Reset",
	MsgEventIndication: "Event Indication",
	MsgIWFStartUp:      "IWF Start-Up",
	MsgIWFOperation:    "IWF Operation",
	MsgIWFMapping:      "IWF Mapping",
	MsgIWFDelayControl: "IWF Delay Control",
}

// MessageTypeString renders a message type code with its textual
// description. Codes outside the defined set never fail; they render
// with the reserved-range description.
func MessageTypeString(v uint64) string {
	name, ok := messageTypeNames[v]
	if !ok {
		name = "Reserved or Operator Specific"
	}
	return fmt.Sprintf("0x%02X (%s)", v, name)
}

type descriptor struct {
	header.Layout
}

func newDescriptor() *descriptor {
	return &descriptor{Layout: header.NewLayout(Tag, Tag, []header.Field{
		header.Bits("Version", 0, 1, 4, 4),
		header.Bits("Concatenation", 0, 1, 0, 1),
		header.U8("MessageType", 1).WithFormat(MessageTypeString),
		header.U16("PayloadLength", 2),
	})}
}

// DefaultNamedArgs derives PayloadLength from everything following the
// common header.
func (d *descriptor) DefaultNamedArgs(prefix string, args header.NamedArgs, next string, trailing int) header.NamedArgs {
	args.SetDefault(prefix+"PayloadLength", uint64(trailing))
	return args
}

func init() {
	header.MustRegister(newDescriptor())
}
