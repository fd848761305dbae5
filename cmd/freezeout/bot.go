package main

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lox/freezeout/cmd/freezeout/shared"
	"github.com/lox/freezeout/internal/bot"
	"github.com/lox/freezeout/internal/client"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/randutil"
)

// BotCmd connects Count bots, each with its own persistent key.
type BotCmd struct {
	Server   string `arg:"" default:"localhost:9871" help:"Server address or URL"`
	Count    int    `short:"n" default:"1" help:"Number of bots"`
	Strategy string `default:"call" enum:"call,random,chart" help:"Bot strategy (call, random, chart)"`
	Prefix   string `default:"bot" help:"Nickname prefix"`
	Keys     string `type:"path" default:".freezeout/bots" help:"Directory holding the bots' key phrases"`
	ServerID string `name:"server-id" help:"Expected server player id"`
	Games    int    `default:"0" help:"Stop each bot after this many games (0 for no limit)"`
	Rejoin   bool   `default:"true" negatable:"" help:"Take a new seat after each game"`
	Insecure bool   `help:"Skip TLS certificate verification"`
	Seed     *int64 `help:"Deterministic RNG seed for bot decisions (optional)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	logger := shared.SetupCLILogger(c.Debug)
	if c.Count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	var opts []client.Option
	if c.ServerID != "" {
		id, err := identity.ParsePlayerID(c.ServerID)
		if err != nil {
			return fmt.Errorf("--server-id: %w", err)
		}
		opts = append(opts, client.WithServerID(id))
	}
	if c.Insecure {
		opts = append(opts, client.WithInsecureTLS())
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
	}
	seed = randutil.Seed(seed)
	rngs := randutil.Split(seed, c.Count)
	logger.Info("Starting bots", "count", c.Count, "strategy", c.Strategy, "seed", seed)

	ctx := shared.SetupSignalHandler()
	g, gctx := errgroup.WithContext(ctx)
	for i := range c.Count {
		strategy, err := bot.StrategyByName(c.Strategy)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s-%d", c.Prefix, i+1)
		key, created, err := identity.LoadOrCreate(filepath.Join(c.Keys, name+".phrase"))
		if err != nil {
			return err
		}
		if created {
			logger.Info("Generated bot key", "bot", name, "id", key.PlayerID().Short())
		}

		b := bot.New(strategy, logger,
			bot.WithRNG(rngs[i]),
			bot.WithMaxGames(c.Games),
			bot.WithRejoin(c.Rejoin),
			bot.WithClientOptions(opts...),
		)
		g.Go(func() error {
			stats, err := b.Run(gctx, c.Server, key, name)
			logger.Info("Bot finished", "bot", name, "hands", stats.Hands, "won", stats.Won, "games", stats.Games, "balance", stats.Balance)
			if err != nil && gctx.Err() == nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
