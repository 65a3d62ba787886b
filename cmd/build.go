package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"firestige.xyz/craft/internal/config"
	"firestige.xyz/craft/internal/header"
	"firestige.xyz/craft/internal/pcap"
	"firestige.xyz/craft/internal/stack"
)

var (
	buildSpecFile string
	buildOutFile  string
	buildPcapFile string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fill a header stack from a packet spec and emit the bytes",
	Long: `build reads a YAML packet spec describing the stack top to bottom,
fills every header (deriving omitted fields such as lengths and
next-protocol numbers from the rest of the stack) and emits the packet
as a hex dump, a raw binary file, or a pcap capture.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := config.LoadPacketSpec(buildSpecFile)
		if err != nil {
			return err
		}
		payload, err := spec.PayloadBytes()
		if err != nil {
			return err
		}

		specs := make([]stack.Spec, 0, len(spec.Layers))
		for _, layer := range spec.Layers {
			sp := stack.Spec{Tag: layer.Protocol, Prefix: layer.Prefix, Args: header.NamedArgs{}}
			prefix := layer.Prefix
			if prefix == "" {
				prefix = layer.Protocol
			}
			for name, v := range layer.Fields {
				sp.Args[prefix+name] = uint64(v)
			}
			specs = append(specs, sp)
		}

		buf := make([]byte, cfg.Engine.BufferSize)
		st := stack.New(header.Default(), buf)
		n, err := st.Fill(specs, payload)
		if err != nil {
			return err
		}
		logrus.WithField("bytes", n).Debug("stack filled")

		for _, line := range st.Dump() {
			fmt.Println(line)
		}

		packet := buf[:n]
		if buildOutFile != "" {
			if err := os.WriteFile(buildOutFile, packet, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", buildOutFile, err)
			}
			logrus.WithField("file", buildOutFile).Info("packet written")
		}
		if buildPcapFile != "" {
			if err := writePcap(buildPcapFile, packet); err != nil {
				return err
			}
			logrus.WithField("file", buildPcapFile).Info("capture written")
		}
		if buildOutFile == "" && buildPcapFile == "" {
			fmt.Println(hex.Dump(packet))
		}
		return nil
	},
}

func writePcap(path string, packet []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w, err := pcap.NewWriter(f, uint32(len(packet)))
	if err != nil {
		return err
	}
	return w.WritePacket(packet, time.Now())
}

func init() {
	buildCmd.Flags().StringVarP(&buildSpecFile, "spec", "s", "", "packet spec file (required)")
	buildCmd.Flags().StringVarP(&buildOutFile, "out", "o", "", "write raw packet bytes to file")
	buildCmd.Flags().StringVar(&buildPcapFile, "pcap", "", "write packet to pcap file")
	_ = buildCmd.MarkFlagRequired("spec")
}
