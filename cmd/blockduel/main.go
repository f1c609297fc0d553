// blockduel is a head-to-head falling-block duel played over the local
// network, plus a solo practice mode.
//
// Usage:
//
//	blockduel play              - Play a solo game
//	blockduel host              - Host a duel and wait for an opponent
//	blockduel join [addr]       - Join a duel (discovers hosts if no addr)
//	blockduel discover          - List hosts announcing on the LAN
//	blockduel scores            - Show high scores and recent matches
//
// Global flags:
//
//	--name <name>   - Player name shown to the opponent
//	--config <path> - Path to a custom config YAML
//	--db <path>     - Database path (default: ~/.blockduel/blockduel.db)
//	--seed <value>  - RNG seed for reproducible piece sequences
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/config"
)

var (
	// Global flags
	flagName    string
	flagConfig  string
	flagDBPath  string
	flagSeed    int64
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockduel",
	Short: "Blockduel - head-to-head falling blocks over LAN",
	Long: `Blockduel is a two-player falling-block duel played over the local
network. Clearing lines sends garbage rows to your opponent; the last
player standing wins.

Available commands:
  play      - Solo practice game
  host      - Host a duel and wait for an opponent
  join      - Join a hosted duel
  discover  - List hosts announcing on the LAN
  scores    - View high scores and recent match results

Examples:
  blockduel play
  blockduel host --name alice
  blockduel join --name bob
  blockduel join 192.168.1.17:42070
  blockduel scores`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagName, "name", defaultName(), "Player name")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blockduel/blockduel.db", "Path to database")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(scoresCmd)
}

func defaultName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "player"
}

func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func gameSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}
