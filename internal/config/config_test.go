package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/piece"
)

func TestDropSpeed(t *testing.T) {
	g := Default().Game

	tests := []struct {
		level    int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 450 * time.Millisecond},
		{5, 300 * time.Millisecond},
		{9, 100 * time.Millisecond},
		{10, 100 * time.Millisecond}, // clamped to the floor
		{50, 100 * time.Millisecond},
	}

	for _, tc := range tests {
		if got := g.DropSpeed(tc.level); got != tc.expected {
			t.Errorf("DropSpeed(%d) = %v, expected %v", tc.level, got, tc.expected)
		}
	}
}

func TestLineScore(t *testing.T) {
	g := Default().Game

	tests := []struct {
		lines    int
		expected int
	}{
		{1, 40},
		{2, 100},
		{3, 300},
		{4, 800},
		{0, 0},
		{5, 0},
	}

	for _, tc := range tests {
		if got := g.LineScore(tc.lines); got != tc.expected {
			t.Errorf("LineScore(%d) = %d, expected %d", tc.lines, got, tc.expected)
		}
	}
}

func TestPieceColors(t *testing.T) {
	colors, err := Default().PieceColors()
	if err != nil {
		t.Fatalf("PieceColors() error: %v", err)
	}
	if len(colors) != piece.TypeCount {
		t.Errorf("mapped %d piece types, expected %d", len(colors), piece.TypeCount)
	}
	if colors[piece.TypeI] != core.ColorCyan {
		t.Errorf("I piece color = %v, expected cyan", colors[piece.TypeI])
	}
}

func TestPieceColorsRejectsUnknown(t *testing.T) {
	cfg := Default()
	cfg.Colors = map[string]string{"X": "red"}
	if _, err := cfg.PieceColors(); err == nil {
		t.Error("expected error for unknown piece type")
	}

	cfg.Colors = map[string]string{"I": "ultraviolet"}
	if _, err := cfg.PieceColors(); err == nil {
		t.Error("expected error for unknown color name")
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := []byte("game:\n  tick_rate: 30\nnet:\n  port: 9999\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Game.TickRate != 30 {
		t.Errorf("tick_rate = %d, expected 30", cfg.Game.TickRate)
	}
	if cfg.Net.Port != 9999 {
		t.Errorf("port = %d, expected 9999", cfg.Net.Port)
	}
	// Missing keys keep defaults.
	if cfg.Game.BaseDropMs != 500 {
		t.Errorf("base_drop_ms = %d, expected default 500", cfg.Game.BaseDropMs)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load with missing explicit path should fail")
	}
}

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	parsed, err := parse(defaultYAML, "embedded")
	if err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	hard := Default()
	if parsed.Game.TickRate != hard.Game.TickRate ||
		parsed.Game.BaseDropMs != hard.Game.BaseDropMs ||
		parsed.Net != hard.Net {
		t.Error("embedded default diverges from hardcoded default")
	}
	if got, want := parsed.Game.LineScore(4), hard.Game.LineScore(4); got != want {
		t.Errorf("embedded tetris score = %d, expected %d", got, want)
	}
}
