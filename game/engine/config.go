package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every ValidateConfig failure.
var ErrInvalidConfig = errors.New("config validation")

// Config describes a game variant. The zero value of an optional field falls
// back to the classic rules when passed through WithDefaults.
type Config struct {
	Name            string  `json:"name" mapstructure:"name" yaml:"name"`
	Description     string  `json:"description" mapstructure:"description" yaml:"description"`
	Size            int     `json:"size" mapstructure:"size" yaml:"size"`
	StartTiles      int     `json:"start_tiles" mapstructure:"start_tiles" yaml:"start_tiles"`
	WinValue        int     `json:"win_value" mapstructure:"win_value" yaml:"win_value"`
	FourProbability float64 `json:"four_probability" mapstructure:"four_probability" yaml:"four_probability"`
}

// DefaultConfig returns the classic 4×4 game to 2048.
func DefaultConfig() *Config {
	return &Config{
		Name:            "classic",
		Description:     "Classic 4x4 board, join the numbers to reach 2048",
		Size:            DefaultBoardSize,
		StartTiles:      DefaultStartTiles,
		WinValue:        DefaultWinValue,
		FourProbability: DefaultFourChance,
	}
}

// WithDefaults returns a copy with zero-valued numeric fields filled from
// DefaultConfig. FourProbability is kept as is, zero is a legal setting.
func (c Config) WithDefaults() *Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.StartTiles == 0 {
		c.StartTiles = d.StartTiles
	}
	if c.WinValue == 0 {
		c.WinValue = d.WinValue
	}
	return &c
}

// ValidateConfig checks that a variant is playable.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if config.Size < MinBoardSize || config.Size > MaxBoardSize {
		return fmt.Errorf("%w: size must be between %d and %d, got %d",
			ErrInvalidConfig, MinBoardSize, MaxBoardSize, config.Size)
	}

	cells := config.Size * config.Size
	if config.StartTiles < 1 || config.StartTiles > cells {
		return fmt.Errorf("%w: start_tiles must be between 1 and %d, got %d",
			ErrInvalidConfig, cells, config.StartTiles)
	}

	if config.WinValue < 4 || !IsPowerOfTwo(config.WinValue) {
		return fmt.Errorf("%w: win_value must be a power of two of at least 4, got %d",
			ErrInvalidConfig, config.WinValue)
	}

	if config.FourProbability < 0 || config.FourProbability > 1 {
		return fmt.Errorf("%w: four_probability must be between 0 and 1, got %g",
			ErrInvalidConfig, config.FourProbability)
	}

	return nil
}
