package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/craft/internal/header"
)

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List registered header descriptors and their layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := header.Default()
		for _, tag := range reg.Tags() {
			desc, err := reg.Lookup(tag)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d bytes fixed, args prefix %q)\n", tag, desc.FixedSize(), desc.ShortName())
			for _, f := range desc.Fields() {
				fmt.Printf("  %-16s offset %2d  %2d bits\n", f.Name, f.Bit.Offset, f.Bit.Bits)
			}
		}
		return nil
	},
}
