package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bubble-duel/internal/core"
	"github.com/vovakirdan/bubble-duel/internal/duel"
	"github.com/vovakirdan/bubble-duel/internal/gameplay"
	"github.com/vovakirdan/bubble-duel/internal/platform/tui"
	"github.com/vovakirdan/bubble-duel/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a duel",
	Long: `Start a duel against the AI opponent.

Controls:
  Space/Enter - Fire
  E           - Spend the oldest power-up
  P/Esc       - Pause
  R           - Rematch (after game over)
  B           - Leave (when paused or over)
  Q/Ctrl+C    - Quit

Difficulty options:
  easy   - Slower, less accurate opponent
  normal - Default opponent
  hard   - Faster, sharper opponent

Examples:
  duel play
  duel play --difficulty hard
  duel play --config ./my-duel.yaml --log-file duel.log`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	gameCfg := loadConfig()

	// Logging to the terminal would corrupt the alt screen
	logger, closeLog := newLogger(io.Discard)
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	opts := duel.Options{
		Config: gameCfg,
		Logger: logger,
		Seed:   cfg.Seed,
		Meta:   gameplay.RecordMeta{Mode: "local", PlayerName: playerName()},
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open history database: %v\n", err)
		// Continue without storage - the duel still works
	} else {
		defer store.Close()
		opts.Saver = store
	}

	d, err := duel.New(context.Background(), opts)
	if err != nil {
		fatalf("%v", err)
	}
	defer d.Close()

	if err := tui.Run(d, cfg); err != nil {
		fatalf("%v", err)
	}

	if out, ok := d.Outcome(); ok {
		result := "lost"
		if out.Winner.IsPlayer() {
			result = "won"
		}
		fmt.Printf("You %s (%s) in %s.\n", result, out.Reason, out.Elapsed.Round(time.Second))
	}
}

// playerName is the local account name recorded with each match.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}
