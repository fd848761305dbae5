package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/freezeout/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings is the `server {}` block.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	Tables   int    `hcl:"tables,optional"`
	Seats    int    `hcl:"seats,optional"`
	DataPath string `hcl:"data_path,optional"`
	TLSCert  string `hcl:"tls_cert,optional"`
	TLSKey   string `hcl:"tls_key,optional"`
}

// GameSettings is the `game {}` block. Durations are Go duration strings.
type GameSettings struct {
	BuyIn              int64  `hcl:"buy_in,optional"`
	InitialBalance     int64  `hcl:"initial_balance,optional"`
	AutoRefill         bool   `hcl:"auto_refill,optional"`
	SmallBlind         int64  `hcl:"small_blind,optional"`
	BigBlind           int64  `hcl:"big_blind,optional"`
	BlindDoubleHands   int    `hcl:"blind_double_hands,optional"`
	BlindMaxMultiplier int64  `hcl:"blind_max_multiplier,optional"`
	ActionTimeout      string `hcl:"action_timeout,optional"`
	NewHandDelay       string `hcl:"new_hand_delay,optional"`
}

type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *fileGame       `hcl:"game,block"`
}

// fileGame is GameSettings as read from a file. Zero is meaningful for the
// blind schedule, so those fields are pointers to tell it apart from unset.
type fileGame struct {
	BuyIn              int64  `hcl:"buy_in,optional"`
	InitialBalance     int64  `hcl:"initial_balance,optional"`
	AutoRefill         bool   `hcl:"auto_refill,optional"`
	SmallBlind         int64  `hcl:"small_blind,optional"`
	BigBlind           int64  `hcl:"big_blind,optional"`
	BlindDoubleHands   *int   `hcl:"blind_double_hands,optional"`
	BlindMaxMultiplier *int64 `hcl:"blind_max_multiplier,optional"`
	ActionTimeout      string `hcl:"action_timeout,optional"`
	NewHandDelay       string `hcl:"new_hand_delay,optional"`
}

func (f fileGame) settings(d GameSettings) GameSettings {
	g := GameSettings{
		BuyIn:              f.BuyIn,
		InitialBalance:     f.InitialBalance,
		AutoRefill:         f.AutoRefill,
		SmallBlind:         f.SmallBlind,
		BigBlind:           f.BigBlind,
		BlindDoubleHands:   d.BlindDoubleHands,
		BlindMaxMultiplier: d.BlindMaxMultiplier,
		ActionTimeout:      f.ActionTimeout,
		NewHandDelay:       f.NewHandDelay,
	}
	if f.BlindDoubleHands != nil {
		g.BlindDoubleHands = *f.BlindDoubleHands
	}
	if f.BlindMaxMultiplier != nil {
		g.BlindMaxMultiplier = *f.BlindMaxMultiplier
	}
	return g
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	g := game.DefaultConfig()
	return Config{
		Server: ServerSettings{
			Address:  "127.0.0.1",
			Port:     9871,
			Tables:   10,
			Seats:    g.Seats,
			DataPath: ".freezeout",
		},
		Game: GameSettings{
			BuyIn:              g.BuyIn,
			InitialBalance:     1_000_000,
			SmallBlind:         g.SmallBlind,
			BigBlind:           g.BigBlind,
			BlindDoubleHands:   g.BlindDoubleHands,
			BlindMaxMultiplier: g.BlindMaxMultiplier,
			ActionTimeout:      "15s",
			NewHandDelay:       "7.5s",
		},
	}
}

// LoadConfig reads an HCL file over the defaults. An empty filename or a
// missing file gives the defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.Server != nil {
		cfg.Server = *fc.Server
	}
	if fc.Game != nil {
		cfg.Game = fc.Game.settings(cfg.Game)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// applyDefaults fills unset values. AutoRefill has no unset state and keeps
// whatever the file said. A zero blind schedule turns doubling or its cap
// off, so LoadConfig resolves those before this runs.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	s, ds := &c.Server, d.Server
	if s.Address == "" {
		s.Address = ds.Address
	}
	if s.Port == 0 {
		s.Port = ds.Port
	}
	if s.Tables == 0 {
		s.Tables = ds.Tables
	}
	if s.Seats == 0 {
		s.Seats = ds.Seats
	}
	if s.DataPath == "" {
		s.DataPath = ds.DataPath
	}

	g, dg := &c.Game, d.Game
	if g.BuyIn == 0 {
		g.BuyIn = dg.BuyIn
	}
	if g.InitialBalance == 0 {
		g.InitialBalance = dg.InitialBalance
	}
	if g.SmallBlind == 0 {
		g.SmallBlind = dg.SmallBlind
	}
	if g.BigBlind == 0 {
		g.BigBlind = dg.BigBlind
	}
	if g.ActionTimeout == "" {
		g.ActionTimeout = dg.ActionTimeout
	}
	if g.NewHandDelay == "" {
		g.NewHandDelay = dg.NewHandDelay
	}
}

// Validate validates the server configuration
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Tables < 1 || c.Server.Tables > 100 {
		return fmt.Errorf("tables must be between 1 and 100, got %d", c.Server.Tables)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if c.Game.InitialBalance < 0 {
		return fmt.Errorf("initial balance must not be negative, got %d", c.Game.InitialBalance)
	}
	if err := c.GameConfig().Validate(); err != nil {
		return err
	}
	if _, err := parsePositive("action_timeout", c.Game.ActionTimeout); err != nil {
		return err
	}
	if _, err := parsePositive("new_hand_delay", c.Game.NewHandDelay); err != nil {
		return err
	}
	return nil
}

// ServerAddress returns the host:port to listen on.
func (c Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TLS reports whether a certificate and key are configured.
func (c Config) TLS() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}

// GameConfig is the per-table engine configuration.
func (c Config) GameConfig() game.Config {
	return game.Config{
		Seats:              c.Server.Seats,
		BuyIn:              c.Game.BuyIn,
		SmallBlind:         c.Game.SmallBlind,
		BigBlind:           c.Game.BigBlind,
		BlindDoubleHands:   c.Game.BlindDoubleHands,
		BlindMaxMultiplier: c.Game.BlindMaxMultiplier,
	}
}

// Timeouts returns the decision timeout and the delay between hands. The
// config must have been validated.
func (c Config) Timeouts() (action, newHand time.Duration) {
	action, _ = parsePositive("action_timeout", c.Game.ActionTimeout)
	newHand, _ = parsePositive("new_hand_delay", c.Game.NewHandDelay)
	return action, newHand
}

func parsePositive(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, s)
	}
	return d, nil
}
