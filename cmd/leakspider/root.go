// Package main provides the entry point for the leakspider CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leakspider.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leakspider",
		Short: "Credential leak monitor for Tor hidden services",
		Long: `Leakspider crawls Tor hidden services (.onion addresses) looking for
leaked credentials in the classic email:password dump format. Discovered
secrets are one-way hashed before anything is stored or sent; the
plaintext never survives past detection.

By default, leakspider starts an embedded Tor daemon automatically.
Use --external-tor to use an existing Tor proxy instead.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Setup failures exit non-zero.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
