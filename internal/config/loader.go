package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadGame loads the duel configuration.
// Search order: customPath -> ~/.duel/configs/duel.yaml -> ./configs/duel.yaml -> embedded default
func LoadGame(customPath string) (GameConfig, error) {
	cfg := DefaultGameConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("duel.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultGameConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "duel.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultGameConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultDuelYAML, &cfg); err != nil {
		return DefaultGameConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Resolve loads the file configuration, then applies environment overrides
// and the difficulty preset (flag beats environment beats file), and validates.
func Resolve(customPath, preset string) (GameConfig, error) {
	cfg, err := LoadGame(customPath)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if preset == "" {
		preset = cfg.Difficulty.Preset
	}
	p, err := ParsePreset(preset)
	if err != nil {
		return cfg, err
	}
	ApplyPreset(&cfg, p)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Dump renders a configuration as YAML.
func Dump(cfg GameConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: failed to encode: %w", err)
	}
	return data, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".duel", "configs", filename)
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	cfg.Difficulty.Preset = string(preset)
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)

	// Adjust the opponent baseline
	switch preset {
	case DifficultyEasy:
		cfg.Opponent.Accuracy = 0.35
		cfg.Opponent.ShotInterval = 2200 * time.Millisecond
		cfg.Opponent.PowerUpAtDanger = 9
	case DifficultyHard:
		cfg.Opponent.Accuracy = 0.55
		cfg.Opponent.ShotInterval = 1400 * time.Millisecond
		cfg.Opponent.PowerUpAtDanger = 6
	}
}
