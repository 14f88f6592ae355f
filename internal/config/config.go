package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// DefaultBet is the flat per-round stake settled at resolution.
	DefaultBet int64 `json:"default_bet"`
	// WelcomeBonusChips is the starting stack granted to new accounts.
	WelcomeBonusChips int64 `json:"welcome_bonus_chips"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetDefaultBet returns the configured per-round stake.
func GetDefaultBet() int64 {
	if cfg == nil || cfg.DefaultBet <= 0 {
		return 100 // Safe default
	}
	return cfg.DefaultBet
}

// GetWelcomeBonusChips returns the configured starting stack.
func GetWelcomeBonusChips() int64 {
	if cfg == nil || cfg.WelcomeBonusChips <= 0 {
		return 1000 // Safe default
	}
	return cfg.WelcomeBonusChips
}
