// duel is a terminal bubble-matching duel against an AI opponent.
//
// Usage:
//
//	duel play              - Play a duel in the terminal
//	duel sim               - Run a headless seeded match
//	duel history           - Show match history
//	duel serve             - Start SSH server for remote play
//	duel config            - Print the resolved game config
//
// Global flags:
//
//	--config <path>      - Custom game config YAML
//	--difficulty <name>  - Difficulty preset: easy, normal, hard
//	--seed <value>       - RNG seed for reproducible play
//	--db <path>          - Match history database (default: ~/.duel/history.db)
//	--log-file <path>    - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/bubble-duel/internal/config"
)

var (
	// Global flags
	flagConfig     string
	flagDifficulty string
	flagSeed       int64
	flagDBPath     string
	flagLogFile    string
	flagFPS        int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "Bubble Duel - race an AI opponent to the gem threshold",
	Long: `Bubble Duel is a terminal bubble-matching duel. Pop bubbles to earn gems,
keep your field from overflowing and reach the gem threshold before the
opponent does, or lead when the clock runs out.

Available commands:
  play     - Play a duel in the terminal
  sim      - Run a headless seeded match
  history  - Show match history and stats
  serve    - Start SSH server for remote play
  config   - Print the resolved game config

Examples:
  duel play
  duel play --difficulty hard
  duel sim --seed 42
  duel history --tui
  duel serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.duel/history.db", "Path to match history database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig resolves the game config from the global flags.
func loadConfig() config.GameConfig {
	cfg, err := config.Resolve(flagConfig, flagDifficulty)
	if err != nil {
		fatalf("%v", err)
	}
	return cfg
}

// newLogger builds the command logger. With --log-file logs go there,
// otherwise to fallback. The returned close func is always safe to call.
func newLogger(fallback io.Writer) (*log.Logger, func()) {
	w, closeFn := fallback, func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fatalf("cannot open log file: %v", err)
		}
		w, closeFn = f, func() { f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "duel",
	})
	return logger, closeFn
}
