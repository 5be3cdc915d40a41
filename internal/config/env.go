package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ApplyEnv overrides cfg with DUEL_* environment variables.
// Unset variables leave the loaded values untouched.
func ApplyEnv(cfg *GameConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}
