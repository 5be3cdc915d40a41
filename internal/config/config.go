// Package config provides YAML-based duel configuration loading,
// environment overrides and difficulty management.
package config

import (
	"fmt"
	"time"
)

// GameConfig contains all tunable parameters for a duel.
type GameConfig struct {
	Rules      RulesConfig      `yaml:"rules"`
	Timing     TimingConfig     `yaml:"timing"`
	Field      FieldConfig      `yaml:"field"`
	Shooter    ShooterConfig    `yaml:"shooter"`
	Opponent   OpponentConfig   `yaml:"opponent"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Events     EventsConfig     `yaml:"events"`
}

// RulesConfig defines win thresholds and reset penalties.
type RulesConfig struct {
	GemsToWin      int     `yaml:"gems_to_win" env:"DUEL_GEMS_TO_WIN"`
	MinGemLoss     int     `yaml:"min_gem_loss" env:"DUEL_MIN_GEM_LOSS"`
	MaxGemLoss     int     `yaml:"max_gem_loss" env:"DUEL_MAX_GEM_LOSS"`
	ResetLossRatio float64 `yaml:"reset_loss_ratio" env:"DUEL_RESET_LOSS_RATIO"`
	MaxDanger      int     `yaml:"max_danger" env:"DUEL_MAX_DANGER"`
}

// TimingConfig defines the match clock.
type TimingConfig struct {
	GameDuration         time.Duration `yaml:"game_duration" env:"DUEL_GAME_DURATION"`
	SuddenDeathTime      time.Duration `yaml:"sudden_death_time" env:"DUEL_SUDDEN_DEATH_TIME"`
	TimerTick            time.Duration `yaml:"timer_tick" env:"DUEL_TIMER_TICK"`
	VictoryCheckInterval time.Duration `yaml:"victory_check_interval" env:"DUEL_VICTORY_CHECK_INTERVAL"`
}

// FieldConfig defines how field pressure builds and is relieved.
type FieldConfig struct {
	RowInterval      time.Duration `yaml:"row_interval" env:"DUEL_ROW_INTERVAL"`           // Time per danger level
	ImmunityDuration time.Duration `yaml:"immunity_duration" env:"DUEL_IMMUNITY_DURATION"` // Granted after a reset or shield
	PenaltyDuration  time.Duration `yaml:"penalty_duration" env:"DUEL_PENALTY_DURATION"`   // Danger rises twice as fast
	ClearAmount      int           `yaml:"clear_amount" env:"DUEL_CLEAR_AMOUNT"`           // Danger removed by a clear power-up
}

// ShooterConfig defines the player's shot resolution.
type ShooterConfig struct {
	Accuracy     float64       `yaml:"accuracy" env:"DUEL_SHOOTER_ACCURACY"`
	FireCooldown time.Duration `yaml:"fire_cooldown" env:"DUEL_SHOOTER_COOLDOWN"`
	MaxCascade   int           `yaml:"max_cascade"`
}

// OpponentConfig defines the AI opponent's baseline behavior.
type OpponentConfig struct {
	ShotInterval    time.Duration `yaml:"shot_interval" env:"DUEL_OPPONENT_SHOT_INTERVAL"`
	Accuracy        float64       `yaml:"accuracy" env:"DUEL_OPPONENT_ACCURACY"`
	MaxCascade      int           `yaml:"max_cascade"`
	PowerUpAtDanger int           `yaml:"power_up_at_danger"` // Spend power-ups at or above this danger
}

// DifficultyConfig defines the opponent's difficulty progression.
type DifficultyConfig struct {
	Preset       string            `yaml:"preset" env:"DUEL_DIFFICULTY"`
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over match time.
type ProgressionConfig struct {
	Type  string        `yaml:"type"`   // "time" or "none"
	MaxAt time.Duration `yaml:"max_at"` // Elapsed time at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	AccuracyBonus     float64       `yaml:"accuracy_bonus"`     // Added to opponent accuracy at max difficulty
	IntervalReduction time.Duration `yaml:"interval_reduction"` // Removed from shot interval at max difficulty
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	HistorySize int `yaml:"history_size" env:"DUEL_EVENT_HISTORY"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name. Empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s), nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// Validate checks cross-field constraints.
func (c GameConfig) Validate() error {
	switch {
	case c.Rules.GemsToWin <= 0:
		return fmt.Errorf("config: gems_to_win must be positive, got %d", c.Rules.GemsToWin)
	case c.Rules.MinGemLoss < 0 || c.Rules.MaxGemLoss < c.Rules.MinGemLoss:
		return fmt.Errorf("config: gem loss bounds [%d, %d] are invalid", c.Rules.MinGemLoss, c.Rules.MaxGemLoss)
	case c.Rules.ResetLossRatio < 0 || c.Rules.ResetLossRatio > 1:
		return fmt.Errorf("config: reset_loss_ratio must be within [0, 1], got %g", c.Rules.ResetLossRatio)
	case c.Rules.MaxDanger <= 0:
		return fmt.Errorf("config: max_danger must be positive, got %d", c.Rules.MaxDanger)
	case c.Timing.GameDuration <= 0:
		return fmt.Errorf("config: game_duration must be positive")
	case c.Timing.SuddenDeathTime < 0 || c.Timing.SuddenDeathTime > c.Timing.GameDuration:
		return fmt.Errorf("config: sudden_death_time %s must be within the game duration %s",
			c.Timing.SuddenDeathTime, c.Timing.GameDuration)
	case c.Timing.TimerTick <= 0 || c.Timing.VictoryCheckInterval <= 0:
		return fmt.Errorf("config: timer_tick and victory_check_interval must be positive")
	case c.Field.RowInterval <= 0:
		return fmt.Errorf("config: row_interval must be positive")
	case c.Field.ImmunityDuration <= 0 || c.Field.PenaltyDuration <= 0:
		return fmt.Errorf("config: immunity_duration and penalty_duration must be positive")
	case c.Opponent.ShotInterval <= 0:
		return fmt.Errorf("config: opponent shot_interval must be positive")
	}
	if _, err := ParsePreset(c.Difficulty.Preset); err != nil {
		return err
	}
	return nil
}
