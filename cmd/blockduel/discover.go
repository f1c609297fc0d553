package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/netplay"
)

var flagDiscoverWait int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List hosts announcing on the LAN",
	Long: `Listen for host announcements and print each one found.

Examples:
  blockduel discover
  blockduel discover --wait 10`,
	Args: cobra.NoArgs,
	Run:  runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&flagDiscoverWait, "wait", 5, "Seconds to listen for announcements")
}

func runDiscover(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	disc := netplay.NewBroadcastDiscovery(cfg.Net, newLogger("discover"))
	defer disc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flagDiscoverWait)*time.Second)
	defer cancel()

	peers, err := disc.Discover(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: discovery failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Listening for hosts (%ds)...\n", flagDiscoverWait)
	found := 0
	for {
		select {
		case peer, ok := <-peers:
			if !ok {
				return
			}
			found++
			fmt.Printf("  %-20s %s\n", peer.Name, peer.HostPort())
		case <-ctx.Done():
			if found == 0 {
				fmt.Println("No hosts found.")
			}
			return
		}
	}
}
