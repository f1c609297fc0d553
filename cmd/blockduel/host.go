package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/netplay"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a duel and wait for an opponent",
	Long: `Listen for an opponent on the local network. The host announces
itself over UDP broadcast so joiners can find it with 'blockduel join'.

Examples:
  blockduel host
  blockduel host --name alice`,
	Args: cobra.NoArgs,
	Run:  runHost,
}

func runHost(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger("host")
	disc := netplay.NewBroadcastDiscovery(cfg.Net, logger)
	defer disc.Close()

	conn := netplay.NewManager(cfg.Net, disc, logger)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.Host(ctx, flagName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Hosting as %q on %s, waiting for an opponent...\n", flagName, conn.Addr())
	if err := waitConnected(ctx, conn); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runDuel(conn, cfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// waitConnected blocks until the manager reports a live connection.
func waitConnected(ctx context.Context, conn *netplay.Manager) error {
	if conn.Status().State == netplay.StateConnected {
		return nil
	}
	watch := conn.WatchStatus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case status := <-watch:
			switch status.State {
			case netplay.StateConnected:
				return nil
			case netplay.StateDisconnected:
				return fmt.Errorf("connection failed: %s", status)
			}
		}
	}
}
