package config

import (
	_ "embed"
)

//go:embed defaults/blockduel.yaml
var defaultYAML []byte

// Default returns the built-in configuration, used when no YAML file can be
// found or parsed.
func Default() Config {
	return Config{
		Game: GameConfig{
			Width:         10,
			Height:        20,
			TickRate:      60,
			BaseDropMs:    500,
			DropStepMs:    50,
			MinDropMs:     100,
			LineScores:    []int{40, 100, 300, 800},
			HardDropBonus: 0,
			ClearDelayMs:  300,
		},
		Net: NetConfig{
			ServiceName:   "blockduel",
			Port:          42070,
			DiscoveryPort: 42071,
			AnnounceMs:    1000,
			HeartbeatMs:   5000,
			BackoffMs:     2000,
			MaxReconnects: 5,
			AcceptMs:      10000,
			BoardSyncMs:   33,
			DebounceMs:    300,
			LeaveGraceMs:  250,
			DialTimeoutMs: 5000,
		},
		Colors: map[string]string{
			"I": "cyan",
			"O": "yellow",
			"T": "magenta",
			"S": "green",
			"Z": "red",
			"J": "blue",
			"L": "orange",
		},
	}
}
