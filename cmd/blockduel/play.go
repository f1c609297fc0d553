package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a solo game",
	Long: `Start a solo practice game.

Controls:
  A/D or arrows - Move left/right
  W or Up       - Rotate
  S or Down     - Soft drop
  Space         - Hard drop
  P             - Pause
  R             - Restart (after game over)
  Q/Ctrl+C      - Quit

Examples:
  blockduel play
  blockduel play --seed 42
  blockduel play --config ./my-rules.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	colors, err := cfg.PieceColors()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	session := game.New(cfg.Game, colors, gameSeed())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.Run(ctx)

	keys, restore, err := rawInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read terminal input: %v\n", err)
		os.Exit(1)
	}
	defer restore()

	session.Start()

	frame := time.NewTicker(50 * time.Millisecond)
	defer frame.Stop()

	saved := false
	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return
			}
			switch k {
			case keyLeft:
				session.MoveLeft()
			case keyRight:
				session.MoveRight()
			case keyRotate:
				session.Rotate()
			case keySoftDrop:
				session.SoftDrop()
			case keyHardDrop:
				session.HardDrop()
			case keyPause:
				if session.State() == game.StatePaused {
					session.Resume()
				} else {
					session.Pause()
				}
			case keyRestart:
				if session.State() == game.StateGameOver {
					saved = false
					session.Start()
				}
			case keyQuit:
				fmt.Print(ansiHome)
				return
			}
		case <-frame.C:
			snap := session.Snapshot()
			if snap.State == game.StateGameOver && !saved {
				saved = true
				if store != nil {
					if err := store.SaveScore(snap.Stats.Score, snap.Stats.Level, snap.Stats.Lines); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: could not save score: %v\n", err)
					}
				}
			}
			fmt.Print(renderSolo(snap))
		}
	}
}
