package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bubble-duel/internal/platform/tui"
	"github.com/vovakirdan/bubble-duel/internal/storage"
)

var (
	flagHistoryTUI   bool
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show match history",
	Long: `Display recent matches and overall stats from the history database.

Examples:
  duel history
  duel history --limit 50
  duel history --tui
  duel history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Browse history in an interactive table")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Number of recent matches to list")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all recorded matches")
}

func runHistory(cmd *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatalf("opening history database: %v", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flagHistoryClear {
		if err := store.ClearMatches(ctx); err != nil {
			fatalf("%v", err)
		}
		fmt.Println("Match history cleared.")
		return
	}

	if flagHistoryTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunHistory(ctx, store, width, height); err != nil {
			fatalf("%v", err)
		}
		return
	}

	records, stats, err := tui.LoadHistory(ctx, store, flagHistoryLimit)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println("Match History")
	fmt.Println()

	if len(records) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'duel play' to record your first match!")
		return
	}

	fmt.Printf("  %-16s  %-4s  %-10s  %-7s  %-9s  %s\n", "Date", "Won", "Reason", "Gems", "Score", "Time")
	fmt.Printf("  %-16s  %-4s  %-10s  %-7s  %-9s  %s\n", "----", "---", "------", "----", "-----", "----")
	for _, r := range records {
		won := "no"
		if r.PlayerWon() {
			won = "yes"
		}
		fmt.Printf("  %-16s  %-4s  %-10s  %-7s  %-9s  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"), won, r.Reason,
			fmt.Sprintf("%d-%d", r.PlayerGems, r.OpponentGems),
			fmt.Sprintf("%d-%d", r.PlayerScore, r.OpponentScore),
			r.Duration.Round(time.Second))
	}

	fmt.Println()
	fmt.Printf("Played %d, won %d, lost %d. Best score %d, average %.1f gems in %s.\n",
		stats.Matches, stats.Wins, stats.Losses, stats.BestScore, stats.AvgGems,
		stats.AvgDuration.Round(time.Second))

	reasons := make([]string, 0, len(stats.ByReason))
	for reason := range stats.ByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Printf("  %-10s  %d\n", reason, stats.ByReason[reason])
	}
}
