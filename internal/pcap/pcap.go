// Package pcap reads and writes pcap captures with gopacket's pure-Go
// pcapgo codec, bridging capture files and the header engine.
package pcap

import (
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Packet is one frame lifted out of a capture.
type Packet struct {
	Data      []byte
	Timestamp time.Time
}

// ReadAll decodes every packet from a pcap stream.
func ReadAll(r io.Reader) ([]Packet, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap stream: %w", err)
	}

	var packets []Packet
	for {
		data, ci, err := pr.ReadPacketData()
		if err == io.EOF {
			return packets, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet %d: %w", len(packets), err)
		}
		packets = append(packets, Packet{Data: data, Timestamp: ci.Timestamp})
	}
}

// Writer appends packets to a pcap stream with an Ethernet link type.
type Writer struct {
	w *pcapgo.Writer
}

// NewWriter writes the file header and returns a packet writer.
func NewWriter(w io.Writer, snaplen uint32) (*Writer, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snaplen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Writer{w: pw}, nil
}

// WritePacket appends one frame stamped with ts.
func (w *Writer) WritePacket(data []byte, ts time.Time) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := w.w.WritePacket(ci, data); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}
