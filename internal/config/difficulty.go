package config

import (
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
)

const (
	maxOpponentAccuracy = 0.95
	minShotInterval     = 250 * time.Millisecond
)

// DifficultyManager calculates opponent parameters from elapsed match time.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: core.Clamp(cfg.InitialLevel, 0.0, 1.0),
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = core.Clamp(level, 0.0, 1.0)
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level (0.0 to 1.0).
func (d *DifficultyManager) Level(elapsed time.Duration) float64 {
	if !d.IsEnabled() || d.cfg.Progression.Type != "time" {
		return d.initialLevel
	}

	maxAt := d.cfg.Progression.MaxAt
	if maxAt <= 0 {
		return 1.0
	}
	progress := core.Clamp(float64(elapsed)/float64(maxAt), 0.0, 1.0)

	// Interpolate from initial level to 1.0
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Accuracy returns the opponent's hit chance at the given elapsed time.
func (d *DifficultyManager) Accuracy(base float64, elapsed time.Duration) float64 {
	level := d.Level(elapsed)
	return core.Clamp(base+level*d.cfg.Scaling.AccuracyBonus, 0.0, maxOpponentAccuracy)
}

// ShotInterval returns the delay between opponent shots at the given elapsed time.
func (d *DifficultyManager) ShotInterval(base, elapsed time.Duration) time.Duration {
	level := d.Level(elapsed)
	result := base - time.Duration(level*float64(d.cfg.Scaling.IntervalReduction))
	if result < minShotInterval {
		result = minShotInterval
	}
	return result
}
