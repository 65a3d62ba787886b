// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/craft/internal/config"
	"firestige.xyz/craft/internal/log"
	_ "firestige.xyz/craft/internal/protocols"
	"firestige.xyz/craft/internal/protocols/udp"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// cfg is resolved in the persistent pre-run and shared by all
	// subcommands.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "craft",
	Short: "craft - protocol header crafting and inspection tool",
	Long: `craft builds and inspects packets through a typed header registry.
Protocol headers (Ethernet, VLAN, IPv4/IPv6, UDP/TCP, eCPRI) are stacked
over a raw buffer; each header resolves the one that follows it.

Commands:
  build      fill a header stack from a packet spec and emit the bytes
  inspect    parse raw bytes or a pcap capture and dump the stack
  protocols  list registered header descriptors`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFile != "" {
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		} else {
			cfg = config.Defaults()
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := log.Init(cfg.Log); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		bindings, err := cfg.Engine.PortBindings()
		if err != nil {
			return err
		}
		for port, tag := range bindings {
			udp.BindPort(port, tag)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(protocolsCmd)
}
