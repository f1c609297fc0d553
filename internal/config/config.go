// Package config provides YAML-based configuration loading for gameplay
// tuning, network behavior and piece colors.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/piece"
)

// Config is the root configuration document.
type Config struct {
	Game   GameConfig        `yaml:"game"`
	Net    NetConfig         `yaml:"net"`
	Colors map[string]string `yaml:"colors"` // piece letter -> color name
}

// GameConfig tunes the simulation.
type GameConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	TickRate int `yaml:"tick_rate"` // simulation ticks per second

	BaseDropMs int `yaml:"base_drop_ms"` // gravity interval at level 1
	DropStepMs int `yaml:"drop_step_ms"` // interval reduction per level
	MinDropMs  int `yaml:"min_drop_ms"`  // gravity interval floor

	LineScores    []int `yaml:"line_scores"`     // base points for 1..4 cleared lines
	HardDropBonus int   `yaml:"hard_drop_bonus"` // extra points per hard-dropped row
	ClearDelayMs  int   `yaml:"clear_delay_ms"`  // line-clear animation window
}

// NetConfig tunes discovery, transport and replication.
type NetConfig struct {
	ServiceName   string `yaml:"service_name"`   // discovery service identifier
	Port          int    `yaml:"port"`           // TCP game port
	DiscoveryPort int    `yaml:"discovery_port"` // UDP beacon port

	AnnounceMs    int `yaml:"announce_ms"`    // beacon interval while hosting
	HeartbeatMs   int `yaml:"heartbeat_ms"`   // ping interval while connected
	BackoffMs     int `yaml:"backoff_ms"`     // reconnect backoff unit (x attempt)
	MaxReconnects int `yaml:"max_reconnects"` // reconnect attempts before giving up
	AcceptMs      int `yaml:"accept_ms"`      // host re-accept window per attempt

	BoardSyncMs   int `yaml:"board_sync_ms"`   // full board broadcast interval
	DebounceMs    int `yaml:"debounce_ms"`     // stats / next-piece debounce
	LeaveGraceMs  int `yaml:"leave_grace_ms"`  // delivery grace before teardown
	DialTimeoutMs int `yaml:"dial_timeout_ms"` // outbound connect timeout
}

// DropSpeed returns the gravity interval for a level.
func (g GameConfig) DropSpeed(level int) time.Duration {
	ms := g.BaseDropMs - (level-1)*g.DropStepMs
	if ms < g.MinDropMs {
		ms = g.MinDropMs
	}
	return time.Duration(ms) * time.Millisecond
}

// LineScore returns the base points for clearing n lines at once.
func (g GameConfig) LineScore(n int) int {
	if n < 1 || n > len(g.LineScores) {
		return 0
	}
	return g.LineScores[n-1]
}

// PieceColors resolves the configured piece->color mapping.
func (c Config) PieceColors() (map[piece.Type]core.Color, error) {
	out := make(map[piece.Type]core.Color, len(c.Colors))
	for letter, name := range c.Colors {
		t, ok := piece.ParseType(letter)
		if !ok {
			return nil, fmt.Errorf("config: unknown piece type %q", letter)
		}
		col, err := core.ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("config: piece %s: %w", letter, err)
		}
		out[t] = col
	}
	return out, nil
}

// Duration helpers for the net section.

func (n NetConfig) Heartbeat() time.Duration    { return time.Duration(n.HeartbeatMs) * time.Millisecond }
func (n NetConfig) Backoff() time.Duration      { return time.Duration(n.BackoffMs) * time.Millisecond }
func (n NetConfig) AcceptWindow() time.Duration { return time.Duration(n.AcceptMs) * time.Millisecond }
func (n NetConfig) Announce() time.Duration     { return time.Duration(n.AnnounceMs) * time.Millisecond }
func (n NetConfig) BoardSync() time.Duration    { return time.Duration(n.BoardSyncMs) * time.Millisecond }
func (n NetConfig) Debounce() time.Duration     { return time.Duration(n.DebounceMs) * time.Millisecond }
func (n NetConfig) LeaveGrace() time.Duration   { return time.Duration(n.LeaveGraceMs) * time.Millisecond }
func (n NetConfig) DialTimeout() time.Duration  { return time.Duration(n.DialTimeoutMs) * time.Millisecond }
