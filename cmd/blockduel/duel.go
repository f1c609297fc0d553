package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/match"
	"github.com/vovakirdan/blockduel/internal/netplay"
	"github.com/vovakirdan/blockduel/internal/storage"
)

// buildSession constructs the local session for a duel.
func buildSession(cfg config.Config) (*game.Session, error) {
	colors, err := cfg.PieceColors()
	if err != nil {
		return nil, err
	}
	return game.New(cfg.Game, colors, gameSeed()), nil
}

// openStore opens the database, degrading to nil on failure so the duel
// still runs without persistence.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	return store
}

// runDuel drives a connected match: the orchestrator loop, input and the
// render loop, until the player quits.
func runDuel(conn *netplay.Manager, cfg config.Config, isHost bool) error {
	session, err := buildSession(cfg)
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	o := match.New(cfg, flagName, isHost, session, conn, newLogger("match"))
	if store != nil {
		o.SetResultSink(store)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.Run(ctx)

	keys, restore, err := rawInput()
	if err != nil {
		return fmt.Errorf("cannot read terminal input: %w", err)
	}
	defer restore()

	frame := time.NewTicker(50 * time.Millisecond)
	defer frame.Stop()

	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return nil
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
				if o.Winner() != match.WinnerNone {
					o.RequestPlayAgain()
				}
			case keyQuit:
				o.LeaveGame()
				fmt.Print(ansiHome)
				return nil
			}
		case <-frame.C:
			fmt.Print(renderDuel(session.Snapshot(), flagName, o.Opponent(), o.Winner()))
		}
	}
}
