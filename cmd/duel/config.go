package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bubble-duel/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved game config",
	Long: `Print the game config as YAML after applying the config file search
order, DUEL_* environment overrides and the difficulty preset.

Config search order:
  1. --config <path>
  2. ~/.duel/configs/duel.yaml
  3. ./configs/duel.yaml
  4. built-in defaults

Examples:
  duel config
  duel config --difficulty hard
  duel config --defaults > ~/.duel/configs/duel.yaml`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the built-in default config")
}

func runConfig(_ *cobra.Command, _ []string) {
	if flagConfigDefaults {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	out, err := config.Dump(loadConfig())
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Print(string(out))
}
