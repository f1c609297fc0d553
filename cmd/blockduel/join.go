package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/netplay"
)

var flagJoinWait int

var joinCmd = &cobra.Command{
	Use:   "join [addr]",
	Short: "Join a hosted duel",
	Long: `Connect to a host. With an explicit address the connection is
direct; without one the LAN is scanned and the first announcing host is
joined.

Examples:
  blockduel join
  blockduel join 192.168.1.17:42070
  blockduel join 192.168.1.17
  blockduel join --wait 10`,
	Args: cobra.MaximumNArgs(1),
	Run:  runJoin,
}

func init() {
	joinCmd.Flags().IntVar(&flagJoinWait, "wait", 5, "Seconds to scan for hosts when no address is given")
}

func runJoin(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger("join")

	var peer netplay.PeerInfo
	if len(args) == 1 {
		peer, err = parsePeerAddr(args[0], cfg.Net)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		peer, err = findHost(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Found host %q at %s\n", peer.Name, peer.HostPort())
	}

	conn := netplay.NewManager(cfg.Net, nil, logger)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.Join(ctx, peer, flagName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runDuel(conn, cfg, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parsePeerAddr accepts "host:port" or a bare host, which gets the
// default port.
func parsePeerAddr(addr string, cfg config.NetConfig) (netplay.PeerInfo, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return netplay.PeerInfo{Name: addr, Addr: addr, Port: cfg.Port}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return netplay.PeerInfo{}, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return netplay.PeerInfo{Name: host, Addr: host, Port: port}, nil
}

// findHost scans the LAN and returns the first announcing host.
func findHost(cfg config.Config) (netplay.PeerInfo, error) {
	disc := netplay.NewBroadcastDiscovery(cfg.Net, newLogger("discover"))
	defer disc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flagJoinWait)*time.Second)
	defer cancel()

	peers, err := disc.Discover(ctx)
	if err != nil {
		return netplay.PeerInfo{}, fmt.Errorf("discovery failed: %w", err)
	}

	fmt.Printf("Scanning for hosts (%ds)...\n", flagJoinWait)
	select {
	case peer, ok := <-peers:
		if !ok {
			return netplay.PeerInfo{}, fmt.Errorf("no hosts found")
		}
		return peer, nil
	case <-ctx.Done():
		return netplay.PeerInfo{}, fmt.Errorf("no hosts found")
	}
}
