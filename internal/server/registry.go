package server

import (
	"context"
	"errors"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/freezeout/internal/game"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/randutil"
)

var (
	ErrNoTableAvailable = errors.New("server: no table available")
	ErrShuttingDown     = errors.New("server: shutting down")
)

// joining marks a player whose join is in flight.
const joining = -1

// Registry owns the fixed set of tables and knows which table every player
// sits at. A player holds at most one seat across all tables.
type Registry struct {
	cfg    Config
	ledger ledger.Ledger
	logger zerolog.Logger
	tables []*tableActor

	mu     sync.Mutex
	seated map[identity.PlayerID]int
}

// NewRegistry creates cfg.Server.Tables tables. Each table draws its seat
// shuffles and decks from its own generator derived from seed.
func NewRegistry(cfg Config, l ledger.Ledger, clock quartz.Clock, seed int64, logger zerolog.Logger) *Registry {
	r := &Registry{
		cfg:    cfg,
		ledger: l,
		logger: logger.With().Str("component", "registry").Logger(),
		seated: make(map[identity.PlayerID]int),
	}
	gcfg := cfg.GameConfig()
	tableLogger := logger.With().Str("component", "table").Logger()
	for i, rng := range randutil.Split(seed, cfg.Server.Tables) {
		r.tables = append(r.tables, newTableActor(i, game.NewTable(i, gcfg, rng), r, clock, tableLogger))
	}
	return r
}

// Run runs every table until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	r.logger.Info().Int("tables", len(r.tables)).Int("seats", r.cfg.Server.Seats).Msg("Starting tables")
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range r.tables {
		g.Go(func() error { return t.run(gctx) })
	}
	return g.Wait()
}

// Join debits the buy-in and seats p at the first waiting table with an
// open seat. The buy-in is refunded if no table accepts. It fails with
// game.ErrAlreadySeated, ledger.ErrInsufficientChips or
// ErrNoTableAvailable.
func (r *Registry) Join(ctx context.Context, p identity.PlayerID, nickname string, peer Peer) (int, error) {
	r.mu.Lock()
	if _, ok := r.seated[p]; ok {
		r.mu.Unlock()
		return -1, game.ErrAlreadySeated
	}
	r.seated[p] = joining
	r.mu.Unlock()

	tableID, err := r.join(ctx, p, nickname, peer)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delete(r.seated, p)
		return -1, err
	}
	// A seat may already have been released if the table vacated it
	// before we got here.
	if r.seated[p] == joining {
		r.seated[p] = tableID
	}
	return tableID, nil
}

func (r *Registry) join(ctx context.Context, p identity.PlayerID, nickname string, peer Peer) (int, error) {
	buyIn := r.cfg.Game.BuyIn
	if r.cfg.Game.AutoRefill {
		if err := r.refill(ctx, p, buyIn); err != nil {
			return -1, err
		}
	}
	if err := r.ledger.Debit(ctx, p, buyIn); err != nil {
		return -1, err
	}

	for _, t := range r.tables {
		err := t.join(ctx, p, nickname, peer)
		if err == nil {
			r.logger.Info().Str("player", p.String()).Int("table", t.id).Msg("Player joined table")
			return t.id, nil
		}
		if !errors.Is(err, game.ErrNotAccepting) && !errors.Is(err, game.ErrTableFull) {
			r.refund(p, buyIn)
			return -1, err
		}
	}
	r.refund(p, buyIn)
	return -1, ErrNoTableAvailable
}

func (r *Registry) refill(ctx context.Context, p identity.PlayerID, buyIn int64) error {
	balance, err := r.ledger.Balance(ctx, p)
	if err != nil {
		return err
	}
	if balance >= buyIn {
		return nil
	}
	r.logger.Info().Str("player", p.String()).Int64("balance", balance).Msg("Refilling balance")
	return r.ledger.Credit(ctx, p, buyIn-balance)
}

// refund runs detached from the caller's context so a cancelled join still
// returns the buy-in.
func (r *Registry) refund(p identity.PlayerID, amount int64) {
	if err := r.ledger.Credit(context.Background(), p, amount); err != nil {
		r.logger.Error().Err(err).Str("player", p.String()).Int64("chips", amount).Msg("Failed to refund buy-in")
	}
}

// Leave gives up p's seat on behalf of peer, the connection that joined the
// table. Another connection with the same identity gets ErrNotSeated. See
// game.Table.Leave for how a hand in progress is handled.
func (r *Registry) Leave(ctx context.Context, p identity.PlayerID, peer Peer) error {
	t, err := r.tableOf(p)
	if err != nil {
		return err
	}
	return t.leave(ctx, p, peer)
}

// Act forwards a decision to p's table.
func (r *Registry) Act(ctx context.Context, p identity.PlayerID, action game.Action, amount int64) error {
	t, err := r.tableOf(p)
	if err != nil {
		return err
	}
	return t.act(ctx, p, action, amount)
}

// TableOf returns the table p is seated at.
func (r *Registry) TableOf(p identity.PlayerID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.seated[p]
	return id, ok && id != joining
}

func (r *Registry) tableOf(p identity.PlayerID) (*tableActor, error) {
	id, ok := r.TableOf(p)
	if !ok {
		return nil, game.ErrNotSeated
	}
	return r.tables[id], nil
}

// Inspect runs fn on the goroutine that owns table id.
func (r *Registry) Inspect(ctx context.Context, id int, fn func(*game.Table)) error {
	return r.tables[id].inspect(ctx, fn)
}

// release is called by a table when a seat is vacated. The stack goes back
// to the player's balance, which is then shown to them.
func (r *Registry) release(ctx context.Context, tableID int, v game.PlayerVacated, peer Peer) {
	logger := r.logger.With().Str("player", v.Player.String()).Int("table", tableID).Logger()
	if v.Chips > 0 {
		if err := r.ledger.Credit(ctx, v.Player, v.Chips); err != nil {
			logger.Error().Err(err).Int64("chips", v.Chips).Msg("Failed to credit stack")
		}
	}

	r.mu.Lock()
	if id, ok := r.seated[v.Player]; ok && (id == tableID || id == joining) {
		delete(r.seated, v.Player)
	}
	r.mu.Unlock()

	logger.Info().Str("reason", v.Reason.String()).Int64("chips", v.Chips).Msg("Seat vacated")
	if peer == nil {
		return
	}
	balance, err := r.ledger.Balance(ctx, v.Player)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read balance")
		return
	}
	peer.Send(protocol.ShowAccount{Chips: balance})
}
