package config

import (
	"testing"
	"time"
)

func testDifficulty() DifficultyConfig {
	return DifficultyConfig{
		Enabled:      true,
		InitialLevel: 0.5,
		Progression:  ProgressionConfig{Type: "time", MaxAt: 100 * time.Second},
		Scaling:      ScalingConfig{AccuracyBonus: 0.4, IntervalReduction: time.Second},
	}
}

func TestDifficultyLevelRamps(t *testing.T) {
	d := NewDifficultyManager(testDifficulty())

	if got := d.Level(0); got != 0.5 {
		t.Errorf("Level(0) = %g, want 0.5", got)
	}
	if got := d.Level(50 * time.Second); got != 0.75 {
		t.Errorf("Level(50s) = %g, want 0.75", got)
	}
	if got := d.Level(time.Hour); got != 1.0 {
		t.Errorf("Level(1h) = %g, want 1.0", got)
	}
}

func TestDifficultyDisabledHoldsInitialLevel(t *testing.T) {
	cfg := testDifficulty()
	cfg.Progression.Type = "none"
	d := NewDifficultyManager(cfg)

	if d.IsEnabled() {
		t.Fatal("expected progression disabled")
	}
	if got := d.Level(time.Hour); got != 0.5 {
		t.Errorf("Level() = %g, want 0.5", got)
	}
}

func TestDifficultyAccuracyAndInterval(t *testing.T) {
	d := NewDifficultyManager(testDifficulty())

	if got := d.Accuracy(0.4, time.Hour); got != 0.8 {
		t.Errorf("Accuracy() = %g, want 0.8", got)
	}
	if got := d.Accuracy(0.9, time.Hour); got != maxOpponentAccuracy {
		t.Errorf("Accuracy() = %g, want capped %g", got, maxOpponentAccuracy)
	}
	if got := d.ShotInterval(2*time.Second, time.Hour); got != time.Second {
		t.Errorf("ShotInterval() = %s, want 1s", got)
	}
	if got := d.ShotInterval(500*time.Millisecond, time.Hour); got != minShotInterval {
		t.Errorf("ShotInterval() = %s, want floor %s", got, minShotInterval)
	}
}

func TestSetInitialLevelClamps(t *testing.T) {
	d := NewDifficultyManager(testDifficulty())
	d.SetInitialLevel(4)
	if got := d.Level(0); got != 1.0 {
		t.Errorf("Level(0) = %g, want 1.0", got)
	}
}
