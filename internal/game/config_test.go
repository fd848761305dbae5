package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlindSchedule(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		hand       int
		small, big int64
	}{
		{0, 10_000, 20_000},
		{3, 10_000, 20_000},
		{4, 20_000, 40_000},
		{8, 40_000, 80_000},
		{12, 80_000, 160_000},
		{16, 120_000, 240_000},
		{400, 120_000, 240_000},
	}
	for _, tt := range tests {
		small, big := cfg.Blinds(tt.hand)
		assert.Equal(t, tt.small, small, "hand %d", tt.hand)
		assert.Equal(t, tt.big, big, "hand %d", tt.hand)
	}

	cfg.BlindDoubleHands = 0
	small, big := cfg.Blinds(100)
	assert.Equal(t, int64(10_000), small)
	assert.Equal(t, int64(20_000), big)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"one seat", func(c *Config) { c.Seats = 1 }},
		{"seven seats", func(c *Config) { c.Seats = 7 }},
		{"zero blind", func(c *Config) { c.SmallBlind = 0 }},
		{"inverted blinds", func(c *Config) { c.BigBlind = c.SmallBlind - 1 }},
		{"buy-in below big blind", func(c *Config) { c.BuyIn = c.BigBlind }},
		{"negative schedule", func(c *Config) { c.BlindDoubleHands = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
