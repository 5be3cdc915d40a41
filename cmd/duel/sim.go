package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bubble-duel/internal/duel"
	"github.com/vovakirdan/bubble-duel/internal/gameplay"
	"github.com/vovakirdan/bubble-duel/internal/storage"
)

var (
	flagSimFrame  time.Duration
	flagSimEvents int
	flagSimSave   bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless seeded match",
	Long: `Play one match without a terminal UI. The player fires whenever ready and
time is simulated, so a match finishes instantly. The same seed, config and
frame length always produce the same result.

Examples:
  duel sim --seed 42
  duel sim --seed 42 --difficulty hard --events 40
  duel sim --seed 7 --save`,
	Args: cobra.NoArgs,
	Run:  runSim,
}

func init() {
	simCmd.Flags().DurationVar(&flagSimFrame, "frame", 50*time.Millisecond, "Simulated frame length")
	simCmd.Flags().IntVar(&flagSimEvents, "events", 15, "Number of trailing events to print")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Record the match in the history database")
}

func runSim(cmd *cobra.Command, _ []string) {
	gameCfg := loadConfig()
	logger, closeLog := newLogger(os.Stderr)
	defer closeLog()

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := duel.Options{
		Config: gameCfg,
		Logger: logger,
		Seed:   seed,
		Meta:   gameplay.RecordMeta{Mode: "sim", PlayerName: "autopilot"},
	}
	if flagSimSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fatalf("opening history database: %v", err)
		}
		defer store.Close()
		opts.Saver = store
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := duel.Simulate(ctx, opts, flagSimFrame)
	if err != nil {
		fatalf("%v", err)
	}

	out := res.Outcome
	fmt.Printf("Seed %d, %s difficulty\n\n", seed, gameCfg.Difficulty.Preset)
	fmt.Printf("  Winner   %s (%s)\n", out.Winner, out.Reason)
	fmt.Printf("  Elapsed  %s over %d frames\n", out.Elapsed.Round(time.Millisecond), res.Frames)
	fmt.Printf("  Match    %s\n\n", out.MatchID)

	fmt.Printf("  %-9s  %5s  %6s  %6s  %6s  %5s\n", "Side", "Gems", "Score", "Danger", "Resets", "Shots")
	fmt.Printf("  %-9s  %5s  %6s  %6s  %6s  %5s\n", "----", "----", "-----", "------", "------", "-----")
	p, o := res.Final.Player, res.Final.Opponent
	fmt.Printf("  %-9s  %5d  %6d  %6d  %6d  %5d\n", "player", p.Gems, p.Score,
		res.Final.Field.PlayerFieldDanger, p.ResetCount, res.Shots[0])
	fmt.Printf("  %-9s  %5d  %6d  %6d  %6d  %5d\n", "opponent", o.Gems, o.Score,
		res.Final.Field.OpponentFieldDanger, o.ResetCount, res.Shots[1])

	history := res.History
	if flagSimEvents >= 0 && len(history) > flagSimEvents {
		history = history[len(history)-flagSimEvents:]
	}
	if len(history) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Last events:")
	start := res.History[0].At
	for _, rec := range history {
		fmt.Printf("  #%-5d %8s  %-22s %+v\n", rec.Seq, rec.At.Sub(start).Round(time.Millisecond),
			rec.Event.Name(), rec.Event)
	}
}
