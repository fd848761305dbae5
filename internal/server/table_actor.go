package server

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/freezeout/internal/game"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/poker"
)

// Peer receives one player's table traffic. Send must not block.
type Peer interface {
	Send(msg protocol.Message)
	// Dead reports that the peer stopped accepting messages; its seat is
	// folded and vacated on its next turn.
	Dead() bool
}

type joinRequest struct {
	player   identity.PlayerID
	nickname string
	peer     Peer
	reply    chan error
}

type leaveRequest struct {
	player identity.PlayerID
	peer   Peer
	reply  chan error
}

type actRequest struct {
	player identity.PlayerID
	action game.Action
	amount int64
	reply  chan error
}

// decisionTimeout is posted by the action timer for the decision it was
// armed for.
type decisionTimeout struct {
	handID string
	index  int
}

type handTick struct{}

type inspectRequest struct {
	fn   func(*game.Table)
	done chan struct{}
}

// tableActor owns one game.Table. Every change to the table, including
// timer expiries, goes through its inbox and runs on its goroutine.
type tableActor struct {
	id       int
	table    *game.Table
	registry *Registry
	clock    quartz.Clock
	logger   zerolog.Logger

	actionTimeout time.Duration
	newHandDelay  time.Duration

	inbox chan any
	done  chan struct{}
	peers map[identity.PlayerID]Peer

	actionTimer *quartz.Timer
	handTimer   *quartz.Timer
}

func newTableActor(id int, table *game.Table, r *Registry, clock quartz.Clock, logger zerolog.Logger) *tableActor {
	action, newHand := r.cfg.Timeouts()
	return &tableActor{
		id:            id,
		table:         table,
		registry:      r,
		clock:         clock,
		logger:        logger.With().Int("table", id).Logger(),
		actionTimeout: action,
		newHandDelay:  newHand,
		inbox:         make(chan any, 64),
		done:          make(chan struct{}),
		peers:         make(map[identity.PlayerID]Peer),
	}
}

// run processes the inbox until ctx is cancelled, then returns every seated
// player's chips to the ledger.
func (a *tableActor) run(ctx context.Context) error {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case m := <-a.inbox:
			a.handle(ctx, m)
		}
	}
}

// post delivers m to the actor. It fails once the actor has stopped.
func (a *tableActor) post(ctx context.Context, m any) error {
	select {
	case a.inbox <- m:
		return nil
	case <-a.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call posts a request and waits for its reply. Once posted, the request is
// waited for even if ctx ends, since the actor may already have applied it.
func (a *tableActor) call(ctx context.Context, m any, reply chan error) error {
	if err := a.post(ctx, m); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-a.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrShuttingDown
		}
	}
}

func (a *tableActor) join(ctx context.Context, p identity.PlayerID, nickname string, peer Peer) error {
	reply := make(chan error, 1)
	return a.call(ctx, joinRequest{player: p, nickname: nickname, peer: peer, reply: reply}, reply)
}

func (a *tableActor) leave(ctx context.Context, p identity.PlayerID, peer Peer) error {
	reply := make(chan error, 1)
	return a.call(ctx, leaveRequest{player: p, peer: peer, reply: reply}, reply)
}

func (a *tableActor) act(ctx context.Context, p identity.PlayerID, action game.Action, amount int64) error {
	reply := make(chan error, 1)
	return a.call(ctx, actRequest{player: p, action: action, amount: amount, reply: reply}, reply)
}

// inspect runs fn on the actor goroutine.
func (a *tableActor) inspect(ctx context.Context, fn func(*game.Table)) error {
	done := make(chan struct{})
	if err := a.post(ctx, inspectRequest{fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-a.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *tableActor) handle(ctx context.Context, m any) {
	switch m := m.(type) {
	case joinRequest:
		a.handleJoin(ctx, m)

	case leaveRequest:
		if a.peers[m.player] != m.peer {
			m.reply <- game.ErrNotSeated
			return
		}
		events, err := a.table.Leave(m.player)
		m.reply <- err
		if err == nil {
			a.logger.Info().Str("player", m.player.String()).Str("state", a.table.State().String()).Msg("Player leaving")
		}
		a.dispatch(ctx, events)

	case actRequest:
		events, err := a.table.Act(m.player, m.action, m.amount)
		m.reply <- err
		if err != nil {
			a.logger.Debug().Err(err).Str("player", m.player.String()).Str("action", m.action.String()).Msg("Rejected action")
			return
		}
		a.dispatch(ctx, events)

	case decisionTimeout:
		events, ok := a.table.Timeout(m.handID, m.index)
		if !ok {
			return
		}
		a.logger.Info().Str("hand", m.handID).Int("index", m.index).Msg("Decision timed out")
		a.dispatch(ctx, events)

	case handTick:
		a.handTimer = nil
		a.tick(ctx)

	case inspectRequest:
		m.fn(a.table)
		close(m.done)
	}
}

func (a *tableActor) handleJoin(ctx context.Context, m joinRequest) {
	seat, events, err := a.table.Join(m.player, m.nickname)
	m.reply <- err
	if err != nil {
		return
	}

	// The newcomer hears about the players already seated, then the table
	// hears about the newcomer.
	m.peer.Send(protocol.TableJoined{TableID: a.id, Seat: seat, Chips: a.table.Config().BuyIn})
	for _, s := range a.table.Seats() {
		if s.Occupied() && s.Player != m.player {
			m.peer.Send(protocol.PlayerJoined{PlayerID: s.Player, Nickname: s.Nickname, Chips: s.Stack})
		}
	}
	a.peers[m.player] = m.peer

	a.logger.Info().
		Str("player", m.player.String()).
		Str("nickname", m.nickname).
		Int("seat", seat).
		Msg("Player seated")
	a.dispatch(ctx, events)
}

// dispatch fans events out to the seated players and reacts to the ones
// that need the actor: timers, vacated seats and settled hands.
func (a *tableActor) dispatch(ctx context.Context, events []game.Event) {
	queue := events
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		switch e := e.(type) {
		case game.CardsDealt:
			if p := a.peers[e.Player]; p != nil {
				p.Send(protocol.DealCards{HandID: e.HandID, Cards: poker.Strings(e.Cards)})
			}

		case game.PlayerVacated:
			peer := a.peers[e.Player]
			delete(a.peers, e.Player)
			a.broadcast(protocol.PlayerLeft{PlayerID: e.Player})
			if peer != nil {
				peer.Send(protocol.PlayerLeft{PlayerID: e.Player})
			}
			a.registry.release(ctx, a.id, e, peer)

		case game.PlayerActed:
			a.stopActionTimer()
			a.broadcast(toMessage(e, 0))

		case game.ActionRequested:
			if p := a.peers[e.Player]; p == nil || p.Dead() {
				a.logger.Info().Str("player", e.Player.String()).Msg("Folding unreachable player")
				more, err := a.table.Leave(e.Player)
				if err != nil {
					a.logger.Error().Err(err).Str("player", e.Player.String()).Msg("Failed to fold unreachable player")
				}
				queue = append(queue, more...)
				continue
			}
			deadline := a.armActionTimer(e.HandID, e.Index)
			a.broadcast(toMessage(e, deadline))

		case game.HandEnded:
			a.broadcast(toMessage(e, 0))
			queue = append(queue, a.commit(ctx)...)

		case game.GameEnded:
			a.logger.Info().Str("winner", e.Winner.String()).Int64("chips", e.Chips).Msg("Game over")
			a.broadcast(toMessage(e, 0))

		default:
			if msg := toMessage(e, 0); msg != nil {
				a.broadcast(msg)
			}
		}
	}
	a.schedule(ctx)
}

// commit persists the pending settlement. On failure the table blocks and
// the commit is retried on the next tick.
func (a *tableActor) commit(ctx context.Context) []game.Event {
	s := a.table.Pending()
	if s == nil {
		return nil
	}
	if err := a.registry.ledger.CommitHand(ctx, a.id, s.Deltas); err != nil {
		blocked := a.table.CommitFailed(err)
		a.logger.Error().Err(blocked).Str("hand", s.HandID).Msg("Failed to commit hand")
		return nil
	}
	events, err := a.table.Commit()
	if err != nil {
		a.logger.Error().Err(err).Str("hand", s.HandID).Msg("Failed to commit hand")
		return nil
	}
	a.logger.Debug().Str("hand", s.HandID).Msg("Hand committed")
	return events
}

// schedule arms the hand timer for whatever the table needs next. A full
// table starts its first hand at once.
func (a *tableActor) schedule(ctx context.Context) {
	if a.handTimer != nil {
		return
	}
	switch {
	case a.table.State() == game.HandSettled:
		a.handTimer = a.clock.AfterFunc(a.newHandDelay, func() {
			_ = a.post(context.Background(), handTick{})
		}, "table", "hand")
	case a.table.Ready():
		a.startHand(ctx)
	}
}

func (a *tableActor) tick(ctx context.Context) {
	if a.table.Pending() != nil {
		a.dispatch(ctx, a.commit(ctx))
		return
	}
	if a.table.State() == game.HandSettled || a.table.Ready() {
		a.startHand(ctx)
	}
}

func (a *tableActor) startHand(ctx context.Context) {
	events, err := a.table.StartHand(nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Cannot start hand")
		return
	}
	if h := a.table.Hand(); h != nil {
		a.logger.Info().
			Str("hand", h.ID).
			Int64("small_blind", h.SmallBlind).
			Int64("big_blind", h.BigBlind).
			Msg("Hand started")
	}
	a.dispatch(ctx, events)
}

// armActionTimer replaces the decision timer and returns the deadline in
// unix milliseconds.
func (a *tableActor) armActionTimer(handID string, index int) int64 {
	a.stopActionTimer()
	a.actionTimer = a.clock.AfterFunc(a.actionTimeout, func() {
		_ = a.post(context.Background(), decisionTimeout{handID: handID, index: index})
	}, "table", "action")
	return a.clock.Now().Add(a.actionTimeout).UnixMilli()
}

func (a *tableActor) stopActionTimer() {
	if a.actionTimer != nil {
		a.actionTimer.Stop()
		a.actionTimer = nil
	}
}

func (a *tableActor) broadcast(msg protocol.Message) {
	for _, p := range a.peers {
		p.Send(msg)
	}
}

// shutdown stops the timers and returns every stack to the ledger.
func (a *tableActor) shutdown() {
	a.stopActionTimer()
	if a.handTimer != nil {
		a.handTimer.Stop()
		a.handTimer = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A settled hand's stacks are final and get credited below, so its
	// commit gets one last try first.
	if s := a.table.Pending(); s != nil {
		if err := a.registry.ledger.CommitHand(ctx, a.id, s.Deltas); err != nil {
			a.logger.Error().Err(err).Str("hand", s.HandID).Interface("deltas", s.Deltas).
				Msg("Hand not recorded at shutdown, crediting final stacks anyway")
		} else {
			a.logger.Info().Str("hand", s.HandID).Msg("Hand committed at shutdown")
		}
	}

	for _, e := range a.table.Abandon() {
		if v, ok := e.(game.PlayerVacated); ok {
			peer := a.peers[v.Player]
			delete(a.peers, v.Player)
			a.registry.release(ctx, a.id, v, peer)
		}
	}
}
