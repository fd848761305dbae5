// Package bot plays freezeout over the client SDK with a pluggable strategy.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/freezeout/internal/client"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/randutil"
)

// ErrBroke is returned when the account can no longer cover a buy-in.
var ErrBroke = errors.New("bot: not enough chips to buy in")

const defaultRetryDelay = 2 * time.Second

var (
	winStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true)
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	cardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// RunOption configures a Bot.
type RunOption func(*Bot)

// WithRNG sets the generator used by the strategy.
func WithRNG(rng *rand.Rand) RunOption {
	return func(b *Bot) { b.rng = rng }
}

// WithMaxGames stops the bot after n games; a game ends when the bot leaves
// its table, busted or not. Zero means no limit.
func WithMaxGames(n int) RunOption {
	return func(b *Bot) { b.maxGames = n }
}

// WithRejoin makes the bot take a new seat after each game.
func WithRejoin(rejoin bool) RunOption {
	return func(b *Bot) { b.rejoin = rejoin }
}

// WithRetryDelay sets the wait before asking again when no table has room.
func WithRetryDelay(d time.Duration) RunOption {
	return func(b *Bot) { b.retryDelay = d }
}

// WithClientOptions passes options through to client.Dial.
func WithClientOptions(opts ...client.Option) RunOption {
	return func(b *Bot) { b.clientOpts = append(b.clientOpts, opts...) }
}

// Stats summarises what a bot has played.
type Stats struct {
	Hands   int
	Won     int
	Games   int
	Balance int64
}

// Bot is a client.Handler that answers its own ActionRequests with a
// Strategy and keeps playing until it runs out of games or chips.
type Bot struct {
	strategy   Strategy
	logger     *log.Logger
	rng        *rand.Rand
	maxGames   int
	rejoin     bool
	retryDelay time.Duration
	clientOpts []client.Option

	seated bool
	view   View
	handID string
	stats  Stats
	err    error
}

// New creates a bot playing strategy.
func New(strategy Strategy, logger *log.Logger, opts ...RunOption) *Bot {
	b := &Bot{
		strategy:   strategy,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = randutil.New(randutil.Seed(0))
	}
	return b
}

// Run dials serverURL, plays and returns the bot's stats once it stops.
func (b *Bot) Run(ctx context.Context, serverURL string, key *identity.SigningKey, nickname string) (Stats, error) {
	c, err := client.Dial(ctx, serverURL, key, nickname, b.logger, b.clientOpts...)
	if err != nil {
		return b.stats, fmt.Errorf("connect failed: %w", err)
	}
	b.logger = b.logger.With("bot", nickname)
	return b.Play(ctx, c)
}

// Play joins a table with an already connected client and plays until ctx
// is cancelled, the game limit is reached or the account is broke.
func (b *Bot) Play(ctx context.Context, c *client.Client) (Stats, error) {
	defer c.Close()
	b.stats.Balance = c.Account().Chips
	if err := c.JoinTable(); err != nil {
		return b.stats, err
	}
	if err := c.Run(ctx, b); err != nil {
		return b.stats, err
	}
	return b.stats, b.err
}

// Stats reports what the bot has played so far. It is only safe to call
// once Play has returned.
func (b *Bot) Stats() Stats { return b.stats }

// HandleMessage implements client.Handler.
func (b *Bot) HandleMessage(ctx context.Context, c *client.Client, msg protocol.Message) error {
	me := c.PlayerID()

	switch m := msg.(type) {
	case protocol.TableJoined:
		b.seated = true
		b.view.Stack = m.Chips
		b.logger.Info("Joined table", "table", m.TableID, "seat", m.Seat, "chips", m.Chips)

	case protocol.NoTablesLeft:
		if b.seated {
			return nil
		}
		b.logger.Warn("No table has room, retrying", "delay", b.retryDelay)
		time.AfterFunc(b.retryDelay, func() { _ = c.JoinTable() })

	case protocol.NotEnoughChips:
		b.logger.Error("Not enough chips for the buy-in", "balance", b.stats.Balance)
		b.err = ErrBroke
		c.Close()

	case protocol.StartHand:
		b.handID = m.HandID
		b.view = View{Stack: b.view.Stack, Street: "preflop"}

	case protocol.DealCards:
		b.view.Cards = m.Cards

	case protocol.PlayerActed:
		b.view.Pot = m.Pot
		if m.PlayerID == me {
			b.view.Stack = m.Stack
		}

	case protocol.GameUpdate:
		b.view.Street = m.Street
		b.view.Board = m.Board
		b.view.Pot = m.Pot
		for _, p := range m.Players {
			if p.PlayerID == me {
				b.view.Stack = p.Stack
			}
		}

	case protocol.ActionRequest:
		if m.PlayerID != me {
			return nil
		}
		d := b.strategy.Decide(b.view, m, b.rng)
		b.logger.Debug("Acting", "action", d.Action, "amount", d.Amount, "reason", d.Reason)
		return c.Act(d.Action, d.Amount)

	case protocol.EndHand:
		b.endHand(me, m)

	case protocol.EndGame:
		if m.Winner == me {
			b.logger.Info(winStyle.Render("Won the game"), "chips", m.Chips)
		} else {
			b.logger.Info("Game over", "winner", m.Winner.Short())
		}

	case protocol.PlayerLeft:
		if m.PlayerID == me {
			b.seated = false
		}

	case protocol.ShowAccount:
		b.stats.Games++
		b.stats.Balance = m.Chips
		b.logger.Info("Left table", "balance", m.Chips, "hands", b.stats.Hands, "games", b.stats.Games)
		if !b.rejoin || (b.maxGames > 0 && b.stats.Games >= b.maxGames) {
			c.Close()
			return nil
		}
		b.view = View{}
		return c.JoinTable()

	case protocol.Error:
		b.logger.Warn("Server error", "code", m.Code, "message", m.Message)
	}
	return nil
}

func (b *Bot) endHand(me identity.PlayerID, m protocol.EndHand) {
	b.stats.Hands++

	var won int64
	var hand string
	for _, p := range m.Payoffs {
		if p.PlayerID == me {
			won += p.Chips
			hand = p.Hand
		}
	}

	cards := cardStyle.Render(strings.Join(b.view.Cards, " "))
	board := dimStyle.Render("[" + strings.Join(m.Board, " ") + "]")
	if won > 0 {
		b.stats.Won++
		line := winStyle.Render(fmt.Sprintf("+%d", won))
		if hand != "" {
			line += " " + hand
		}
		b.logger.Info(line, "cards", cards, "board", board, "hand", shortHand(b.handID))
		return
	}
	b.logger.Info(lossStyle.Render("lost"), "cards", cards, "board", board, "hand", shortHand(b.handID))
}

func shortHand(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
