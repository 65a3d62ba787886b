package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"firestige.xyz/craft/internal/filter"
	"firestige.xyz/craft/internal/header"
	"firestige.xyz/craft/internal/pcap"
	"firestige.xyz/craft/internal/stack"
)

var (
	inspectHex      string
	inspectPcapFile string
	inspectStartTag string
	inspectFilter   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Parse raw bytes or a pcap capture and dump the header stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (inspectHex == "") == (inspectPcapFile == "") {
			return fmt.Errorf("exactly one of --hex and --pcap is required")
		}
		startTag := inspectStartTag
		if startTag == "" {
			startTag = cfg.Engine.StartProtocol
		}

		if inspectHex != "" {
			buf, err := decodeHexArg(inspectHex)
			if err != nil {
				return err
			}
			return inspectBuffer(buf, startTag)
		}

		f, err := os.Open(inspectPcapFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", inspectPcapFile, err)
		}
		defer f.Close()

		packets, err := pcap.ReadAll(f)
		if err != nil {
			return err
		}
		match, err := filter.Compile(inspectFilter)
		if err != nil {
			return err
		}

		shown := 0
		for i, pkt := range packets {
			if !match.Match(pkt.Data) {
				continue
			}
			shown++
			fmt.Printf("# packet %d  %s  %d bytes\n", i, pkt.Timestamp.Format("15:04:05.000000"), len(pkt.Data))
			if err := inspectBuffer(pkt.Data, startTag); err != nil {
				logrus.WithError(err).WithField("packet", i).Warn("parse failed")
			}
		}
		logrus.WithFields(logrus.Fields{"total": len(packets), "matched": shown}).Debug("capture inspected")
		return nil
	},
}

func inspectBuffer(buf []byte, startTag string) error {
	st := stack.New(header.Default(), buf)
	if err := st.Parse(startTag); err != nil {
		return err
	}
	for _, line := range st.Dump() {
		fmt.Println(line)
	}
	if tail := st.Payload(); len(tail) > 0 {
		fmt.Printf("payload: %d bytes\n", len(tail))
	}
	return nil
}

func decodeHexArg(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == ':' || r == '\n' || r == '\t' {
			return -1
		}
		return r
	}, strings.TrimPrefix(s, "0x"))
	buf, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("--hex is not valid hex: %w", err)
	}
	return buf, nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectHex, "hex", "", "packet bytes as a hex string")
	inspectCmd.Flags().StringVar(&inspectPcapFile, "pcap", "", "pcap capture file")
	inspectCmd.Flags().StringVarP(&inspectStartTag, "start", "t", "", "protocol tag to start parsing with")
	inspectCmd.Flags().StringVarP(&inspectFilter, "filter", "f", "", "packet filter, e.g. \"ip and host 10.0.0.1\"")
}
