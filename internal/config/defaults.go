package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/duel.yaml
var defaultDuelYAML []byte

// DefaultGameConfig returns the hardcoded duel configuration.
// It mirrors defaults/duel.yaml and is the fallback if the embed fails to parse.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Rules: RulesConfig{
			GemsToWin:      15,
			MinGemLoss:     2,
			MaxGemLoss:     8,
			ResetLossRatio: 0.5,
			MaxDanger:      10,
		},
		Timing: TimingConfig{
			GameDuration:         180 * time.Second,
			SuddenDeathTime:      150 * time.Second,
			TimerTick:            100 * time.Millisecond,
			VictoryCheckInterval: 500 * time.Millisecond,
		},
		Field: FieldConfig{
			RowInterval:      8 * time.Second,
			ImmunityDuration: 3 * time.Second,
			PenaltyDuration:  5 * time.Second,
			ClearAmount:      3,
		},
		Shooter: ShooterConfig{
			Accuracy:     0.6,
			FireCooldown: 250 * time.Millisecond,
			MaxCascade:   3,
		},
		Opponent: OpponentConfig{
			ShotInterval:    1800 * time.Millisecond,
			Accuracy:        0.45,
			MaxCascade:      2,
			PowerUpAtDanger: 7,
		},
		Difficulty: DifficultyConfig{
			Preset:       string(DifficultyNormal),
			Enabled:      true,
			InitialLevel: 0.3,
			Progression: ProgressionConfig{
				Type:  "time",
				MaxAt: 150 * time.Second,
			},
			Scaling: ScalingConfig{
				AccuracyBonus:     0.3,
				IntervalReduction: 800 * time.Millisecond,
			},
		},
		Events: EventsConfig{
			HistorySize: 128,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultDuelYAML
}
