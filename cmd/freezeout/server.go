package main

import (
	"fmt"
	"path/filepath"

	"github.com/lox/freezeout/cmd/freezeout/shared"
	"github.com/lox/freezeout/internal/fileutil"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
	"github.com/lox/freezeout/internal/randutil"
	"github.com/lox/freezeout/internal/server"
)

// ServerCmd runs the server. Flags that are set override the config file.
type ServerCmd struct {
	Config   string  `kong:"type='path',help='HCL config file'"`
	Address  *string `kong:"help='Listen address (default 127.0.0.1)'"`
	Port     *int    `kong:"help='Listen port (default 9871)'"`
	Tables   *int    `kong:"help='Number of tables, 1 to 100 (default 10)'"`
	Seats    *int    `kong:"help='Seats per table, 2 to 6 (default 3)'"`
	DataPath *string `kong:"type='path',help='Directory for the server key and ledger (default .freezeout)'"`
	TLSCert  *string `kong:"name='tls-cert',type='path',help='TLS certificate file'"`
	TLSKey   *string `kong:"name='tls-key',type='path',help='TLS key file'"`
	Seed     *int64  `kong:"help='Deterministic RNG seed for seating and decks (optional)'"`
	Debug    bool    `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	c.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := fileutil.EnsureDir(cfg.Server.DataPath, 0o700); err != nil {
		return err
	}
	key, created, err := identity.LoadOrCreate(filepath.Join(cfg.Server.DataPath, identity.PhraseFile))
	if err != nil {
		return err
	}
	if created {
		logger.Info().Str("path", filepath.Join(cfg.Server.DataPath, identity.PhraseFile)).Msg("Generated new server key")
	}

	store, err := ledger.Open(filepath.Join(cfg.Server.DataPath, ledger.DBFile))
	if err != nil {
		return err
	}
	defer store.Close()

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = randutil.Seed(0)
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}

	action, newHand := cfg.Timeouts()
	logger.Info().
		Str("address", cfg.ServerAddress()).
		Str("server_id", key.PlayerID().String()).
		Int("tables", cfg.Server.Tables).
		Int("seats", cfg.Server.Seats).
		Int64("buy_in", cfg.Game.BuyIn).
		Int64("small_blind", cfg.Game.SmallBlind).
		Int64("big_blind", cfg.Game.BigBlind).
		Dur("action_timeout", action).
		Dur("new_hand_delay", newHand).
		Msg("Starting freezeout server")

	s := server.NewServer(cfg, key, store, logger, server.WithSeed(seed))
	ctx := shared.SetupSignalHandlerWithLogger(logger)
	if err := s.ListenAndRun(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}

func (c *ServerCmd) apply(cfg *server.Config) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.Server.Address, c.Address)
	setInt(&cfg.Server.Port, c.Port)
	setInt(&cfg.Server.Tables, c.Tables)
	setInt(&cfg.Server.Seats, c.Seats)
	set(&cfg.Server.DataPath, c.DataPath)
	set(&cfg.Server.TLSCert, c.TLSCert)
	set(&cfg.Server.TLSKey, c.TLSKey)
}
