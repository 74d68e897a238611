package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Default(t *testing.T) {
	require.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"nil name", func(c *Config) { c.Name = "" }, "name is required"},
		{"size too small", func(c *Config) { c.Size = 1 }, "size must be between"},
		{"size too large", func(c *Config) { c.Size = MaxBoardSize + 1 }, "size must be between"},
		{"no start tiles", func(c *Config) { c.StartTiles = 0 }, "start_tiles"},
		{"too many start tiles", func(c *Config) { c.StartTiles = 17 }, "start_tiles"},
		{"win value not power of two", func(c *Config) { c.WinValue = 1000 }, "win_value"},
		{"win value too small", func(c *Config) { c.WinValue = 2 }, "win_value"},
		{"negative probability", func(c *Config) { c.FourProbability = -0.1 }, "four_probability"},
		{"probability above one", func(c *Config) { c.FourProbability = 1.5 }, "four_probability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.ErrorIs(t, ValidateConfig(nil), ErrInvalidConfig)
}

func TestValidateConfig_Edges(t *testing.T) {
	config := DefaultConfig()
	config.Size = MinBoardSize
	config.StartTiles = 4
	config.WinValue = 4
	config.FourProbability = 0
	assert.NoError(t, ValidateConfig(config))
}

func TestConfig_WithDefaults(t *testing.T) {
	config := Config{Size: 6}.WithDefaults()

	assert.Equal(t, "classic", config.Name)
	assert.Equal(t, 6, config.Size)
	assert.Equal(t, DefaultStartTiles, config.StartTiles)
	assert.Equal(t, DefaultWinValue, config.WinValue)
	assert.Zero(t, config.FourProbability)
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 1024, 1 << 20} {
		assert.True(t, IsPowerOfTwo(n), "%d", n)
	}
	for _, n := range []int{0, -2, 3, 6, 1000} {
		assert.False(t, IsPowerOfTwo(n), "%d", n)
	}
}
