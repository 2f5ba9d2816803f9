// Package cli defines the nexusd command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nexusd",
	Short: "nexusd - transaction compiler and simulated ledger engine",
	Long: `nexusd compiles institutional ledger operations (issuance, trustline
controls, clawback, limit orders, AMM liquidity) into canonical transaction
templates and runs them through a simulated consensus pipeline against an
in-memory ledger, exposed over HTTP JSON and a websocket feed.`,
	Version: version,
}

// Execute runs the command tree. Called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}
