package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nexus-ledger/nexusd/internal/config"
	"github.com/nexus-ledger/nexusd/internal/di"
)

var (
	// Server flags
	port     int
	bindAddr string
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the nexusd engine",
	Long: `Start the nexusd server which provides:
- HTTP JSON endpoints for ledger state, template compilation and submission
- WebSocket feed with ledger summaries and submission notifications
- Background ledger poller

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Run the server when invoked without a subcommand
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}

	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if bindAddr != "" {
		cfg.Server.IP = bindAddr
	}

	container, err := di.Build(cfg)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("nexusd %s\n", version)
		fmt.Printf("  - HTTP JSON:  http://%s:%d/v1/\n", cfg.Server.IP, cfg.Server.Port)
		fmt.Printf("  - WebSocket:  ws://%s:%d/ws\n", cfg.Server.IP, cfg.Server.Port)
		fmt.Printf("  - Network:    %s (simulated)\n", cfg.Network.Endpoint)
		if cfg.SeedDemo {
			fmt.Println("  - Demo genesis state loaded")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return container.Server.Run(ctx)
}
