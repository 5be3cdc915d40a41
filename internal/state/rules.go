package state

import (
	"time"

	"github.com/vovakirdan/bubble-duel/internal/config"
)

// MaxPowerUps is the number of power-up slots per side.
const MaxPowerUps = 3

// Rules are the numeric constants the store enforces.
type Rules struct {
	GemsToWin       int
	MinGemLoss      int
	MaxGemLoss      int
	ResetLossRatio  float64
	MaxDanger       int
	GameDuration    time.Duration
	SuddenDeathTime time.Duration
	Difficulty      string
}

// RulesFromConfig extracts store rules from a game configuration.
func RulesFromConfig(cfg config.GameConfig) Rules {
	return Rules{
		GemsToWin:       cfg.Rules.GemsToWin,
		MinGemLoss:      cfg.Rules.MinGemLoss,
		MaxGemLoss:      cfg.Rules.MaxGemLoss,
		ResetLossRatio:  cfg.Rules.ResetLossRatio,
		MaxDanger:       cfg.Rules.MaxDanger,
		GameDuration:    cfg.Timing.GameDuration,
		SuddenDeathTime: cfg.Timing.SuddenDeathTime,
		Difficulty:      cfg.Difficulty.Preset,
	}
}

// DefaultRules returns the rules of the default configuration.
func DefaultRules() Rules {
	return RulesFromConfig(config.DefaultGameConfig())
}
