package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "freezeout.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:9871", cfg.ServerAddress())
	assert.False(t, cfg.TLS())
	assert.False(t, cfg.Game.AutoRefill)

	action, newHand := cfg.Timeouts()
	assert.Equal(t, 15*time.Second, action)
	assert.Equal(t, 7500*time.Millisecond, newHand)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  port   = 9999
  tables = 4
  seats  = 6
}

game {
  buy_in          = 5000
  small_blind     = 25
  big_blind       = 50
  auto_refill     = true
  action_timeout  = "30s"
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Tables)
	assert.Equal(t, 6, cfg.Server.Seats)
	assert.Equal(t, "127.0.0.1", cfg.Server.Address, "unset values keep their default")
	assert.Equal(t, int64(5000), cfg.Game.BuyIn)
	assert.True(t, cfg.Game.AutoRefill)
	assert.Equal(t, int64(1_000_000), cfg.Game.InitialBalance)

	action, newHand := cfg.Timeouts()
	assert.Equal(t, 30*time.Second, action)
	assert.Equal(t, 7500*time.Millisecond, newHand)

	g := cfg.GameConfig()
	assert.Equal(t, 6, g.Seats)
	assert.Equal(t, int64(25), g.SmallBlind)
	assert.Equal(t, int64(50), g.BigBlind)
}

func TestLoadConfigBlindSchedule(t *testing.T) {
	t.Parallel()

	d := DefaultConfig().Game
	tests := []struct {
		name       string
		body       string
		wantDouble int
		wantMax    int64
	}{
		{"unset keeps defaults", `game { buy_in = 2000 }`, d.BlindDoubleHands, d.BlindMaxMultiplier},
		{"zero disables doubling", `game { blind_double_hands = 0 }`, 0, d.BlindMaxMultiplier},
		{"zero removes the cap", `game { blind_max_multiplier = 0 }`, d.BlindDoubleHands, 0},
		{"explicit values", "game {\n  blind_double_hands = 10\n  blind_max_multiplier = 4\n}", 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadConfig(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDouble, cfg.Game.BlindDoubleHands)
			assert.Equal(t, tt.wantMax, cfg.Game.BlindMaxMultiplier)
		})
	}

	cfg, err := LoadConfig(writeConfig(t, `game { blind_double_hands = 0 }`))
	require.NoError(t, err)
	small, big := cfg.GameConfig().Blinds(100)
	assert.Equal(t, d.SmallBlind, small, "blinds never rise")
	assert.Equal(t, d.BigBlind, big)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"syntax", `server {`},
		{"unknown block", `bots { }`},
		{"wrong type", `server { port = "high" }`},
		{"too many seats", `server { seats = 7 }`},
		{"too many tables", `server { tables = 101 }`},
		{"bad duration", `game { new_hand_delay = "soon" }`},
		{"negative duration", `game { action_timeout = "-1s" }`},
		{"half of tls", `server { tls_cert = "cert.pem" }`},
		{"buy-in below big blind", `game { buy_in = 100 }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
