package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockduel/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores and recent matches",
	Long: `Display the top 10 solo scores and the most recent match results.

Examples:
  blockduel scores
  blockduel scores --db ./other.db`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func runScores(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scores, err := store.TopScores(10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("High Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'blockduel play' to set the first high score!")
	} else {
		fmt.Printf("  %-4s  %-10s  %-6s  %-6s  %s\n", "Rank", "Score", "Level", "Lines", "Date")
		fmt.Printf("  %-4s  %-10s  %-6s  %-6s  %s\n", "----", "-----", "-----", "-----", "----")
		for i, entry := range scores {
			dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
			fmt.Printf("  %-4d  %-10d  %-6d  %-6d  %s\n", i+1, entry.Score, entry.Level, entry.Lines, dateStr)
		}

		if high, err := store.HighScore(); err == nil {
			fmt.Println()
			fmt.Printf("Best: %d\n", high)
		}
	}

	matches, err := store.RecentMatches(10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}
	if len(matches) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Recent Matches")
	fmt.Println()
	fmt.Printf("  %-16s  %-14s  %-10s  %-10s  %-8s  %s\n", "Opponent", "Winner", "You", "Them", "Time", "Date")
	fmt.Printf("  %-16s  %-14s  %-10s  %-10s  %-8s  %s\n", "--------", "------", "---", "----", "----", "----")
	for _, m := range matches {
		dateStr := m.CreatedAt.Format("2006-01-02 15:04")
		timeStr := fmt.Sprintf("%d:%02d", m.DurationSecs/60, m.DurationSecs%60)
		fmt.Printf("  %-16s  %-14s  %-10d  %-10d  %-8s  %s\n", m.Opponent, m.Outcome, m.LocalScore, m.RemoteScore, timeStr, dateStr)
	}
}
