package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/freezeout/internal/handid"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/poker"
)

// State is a table's top-level state.
type State int

const (
	WaitingForPlayers State = iota
	HandInProgress
	HandSettled
	GameOver
)

func (s State) String() string {
	return [...]string{"waiting_for_players", "hand_in_progress", "hand_settled", "game_over"}[s]
}

// Table is one freezeout table. It is not safe for concurrent use; the
// owner serializes every call.
type Table struct {
	id    int
	cfg   Config
	rng   *rand.Rand
	seats []Seat
	state State
	hand  *Hand

	button  int
	hands   int // hands played in the current game
	pending *Settlement
	blocked error
}

// NewTable creates an empty table. The config is assumed valid.
func NewTable(id int, cfg Config, rng *rand.Rand) *Table {
	return &Table{
		id:     id,
		cfg:    cfg,
		rng:    rng,
		seats:  make([]Seat, cfg.Seats),
		button: -1,
	}
}

func (t *Table) ID() int        { return t.id }
func (t *Table) Config() Config { return t.cfg }
func (t *Table) State() State   { return t.state }

// Hand returns the current or last settled hand, nil between games. Callers
// must not modify it.
func (t *Table) Hand() *Hand { return t.hand }

// Seats returns a copy of the seats.
func (t *Table) Seats() []Seat {
	out := make([]Seat, len(t.seats))
	for i, s := range t.seats {
		out[i] = s.clone()
	}
	return out
}

// SeatOf returns the seat held by p.
func (t *Table) SeatOf(p identity.PlayerID) (int, bool) {
	for i := range t.seats {
		if t.seats[i].Occupied() && t.seats[i].Player == p {
			return i, true
		}
	}
	return -1, false
}

// Players returns the occupants in seat order.
func (t *Table) Players() []identity.PlayerID {
	var out []identity.PlayerID
	for i := range t.seats {
		if t.seats[i].Occupied() {
			out = append(out, t.seats[i].Player)
		}
	}
	return out
}

// Open reports whether the table accepts a new player.
func (t *Table) Open() bool {
	return t.state == WaitingForPlayers && len(t.Players()) < len(t.seats)
}

// Ready reports whether a new game can start: every seat is taken and
// nobody is on the way out.
func (t *Table) Ready() bool {
	if t.state != WaitingForPlayers {
		return false
	}
	for i := range t.seats {
		if !t.seats[i].Occupied() || t.seats[i].Leaving {
			return false
		}
	}
	return true
}

// Pot is everything committed to the current hand.
func (t *Table) Pot() int64 {
	var pot int64
	for i := range t.seats {
		pot += t.seats[i].Total
	}
	return pot
}

// Chips is the table's chip mass: stacks plus the pot.
func (t *Table) Chips() int64 {
	var chips int64
	for i := range t.seats {
		chips += t.seats[i].Stack + t.seats[i].Total
	}
	return chips
}

// Pending returns the settled hand awaiting Commit, if any.
func (t *Table) Pending() *Settlement { return t.pending }

// Blocked returns the persistence failure holding the table, if any.
func (t *Table) Blocked() error { return t.blocked }

// Join seats p with the configured buy-in. Only a waiting table accepts
// players.
func (t *Table) Join(p identity.PlayerID, nickname string) (int, []Event, error) {
	if t.state != WaitingForPlayers {
		return -1, nil, ErrNotAccepting
	}
	if _, ok := t.SeatOf(p); ok {
		return -1, nil, ErrAlreadySeated
	}
	for i := range t.seats {
		if t.seats[i].Occupied() {
			continue
		}
		t.seats[i] = Seat{Player: p, Nickname: nickname, Stack: t.cfg.BuyIn, Status: SeatActive}
		return i, []Event{PlayerSeated{Seat: i, Player: p, Nickname: nickname, Chips: t.cfg.BuyIn}}, nil
	}
	return -1, nil, ErrTableFull
}

// Leave gives up p's seat. Between hands the seat is vacated at once.
// During a hand the seat sits out: it folds on its turn, immediately if it
// is the seat to act, and vacates when the hand is committed.
func (t *Table) Leave(p identity.PlayerID) ([]Event, error) {
	idx, ok := t.SeatOf(p)
	if !ok {
		return nil, ErrNotSeated
	}
	s := &t.seats[idx]

	switch {
	case t.state == HandInProgress:
		s.Leaving = true
		if s.Status == SeatActive {
			s.Status = SeatSittingOut
		}
		if idx == t.hand.Actor && s.CanAct() {
			return t.apply(idx, Fold, 0, true)
		}
		return nil, nil
	case t.state == HandSettled && t.pending != nil:
		s.Leaving = true
		return nil, nil
	}

	ev := t.vacate(nil, idx, Left)
	if t.state == HandSettled {
		ev = t.checkGameOver(ev)
	}
	return ev, nil
}

// StartHand deals the next hand. A waiting table must be Ready and starts a
// new game with shuffled seats; a settled table must have been committed.
// A nil deck is shuffled from the table's RNG. Hole cards are dealt two at a
// time starting left of the button, then three, one and one board cards.
func (t *Table) StartHand(deck *poker.Deck) ([]Event, error) {
	var ev []Event
	switch t.state {
	case WaitingForPlayers:
		if !t.Ready() {
			return nil, ErrNotReady
		}
		t.rng.Shuffle(len(t.seats), func(i, j int) {
			t.seats[i], t.seats[j] = t.seats[j], t.seats[i]
		})
		t.hands = 0
		t.button = -1
		ev = append(ev, GameStarted{Seats: t.Players()})
	case HandSettled:
		if t.pending != nil {
			if t.blocked != nil {
				return nil, t.blocked
			}
			return nil, fmt.Errorf("%w: hand %s not committed", ErrPersistence, t.pending.HandID)
		}
	default:
		return nil, fmt.Errorf("cannot start a hand while %s", t.state)
	}
	if deck == nil {
		deck = poker.NewDeck(t.rng)
	}

	n := len(t.seats)
	t.button = t.nextOccupied(t.button + 1)
	small, big := t.cfg.Blinds(t.hands)
	h := &Hand{
		ID:         handid.New(),
		Button:     t.button,
		SmallBlind: small,
		BigBlind:   big,
		Betting:    NewBettingRound(n, big),
		Actor:      -1,
		deck:       deck,
		start:      make([]int64, n),
	}
	// Heads-up the button posts the small blind.
	if len(t.Players()) == 2 {
		h.SmallBlindSeat = t.button
	} else {
		h.SmallBlindSeat = t.nextOccupied(t.button + 1)
	}
	h.BigBlindSeat = t.nextOccupied(h.SmallBlindSeat + 1)

	for i := range t.seats {
		s := &t.seats[i]
		s.Bet, s.Total, s.Hole = 0, 0, nil
		h.start[i] = s.Stack
		if s.Occupied() {
			s.Status = SeatActive
		}
	}
	t.hand = h
	t.state = HandInProgress

	ev = append(ev, HandStarted{
		HandID:     h.ID,
		Button:     t.seats[t.button].Player,
		SmallBlind: small,
		BigBlind:   big,
	})
	ev = t.postBlind(ev, h.SmallBlindSeat, SmallBlind, small)
	ev = t.postBlind(ev, h.BigBlindSeat, BigBlind, big)
	h.Betting.CurrentBet = big
	ev = t.dealHoleCards(ev)
	ev = append(ev, t.update())

	h.cursor = h.BigBlindSeat + 1
	return t.proceed(ev), nil
}

// Act applies a decision from p, who must be the seat to act. Amount is the
// total street bet for Bet and Raise. Illegal actions return a *RuleError
// and change nothing.
func (t *Table) Act(p identity.PlayerID, a Action, amount int64) ([]Event, error) {
	if t.state != HandInProgress {
		return nil, ruleErrorf("no hand in progress")
	}
	idx, ok := t.SeatOf(p)
	if !ok {
		return nil, ErrNotSeated
	}
	if idx != t.hand.Actor {
		return nil, ruleErrorf("not your turn")
	}
	return t.apply(idx, a, amount, false)
}

// Timeout applies the default decision, check if legal and otherwise fold,
// for the decision identified by handID and index. A timeout for any other
// decision is stale and ignored; ok reports whether it was applied.
func (t *Table) Timeout(handID string, index int) (events []Event, ok bool) {
	h := t.hand
	if t.state != HandInProgress || h == nil || h.ID != handID || h.index != index || h.Actor < 0 {
		return nil, false
	}
	a := Fold
	if h.Betting.ToCall(&t.seats[h.Actor]) == 0 {
		a = Check
	}
	ev, err := t.apply(h.Actor, a, 0, true)
	if err != nil {
		return nil, false
	}
	return ev, true
}

// Commit marks the pending settlement as persisted. Eliminated and departed
// seats are vacated, and the game ends if one player is left.
func (t *Table) Commit() ([]Event, error) {
	if t.state != HandSettled || t.pending == nil {
		return nil, ErrNothingPending
	}
	t.pending, t.blocked = nil, nil

	var ev []Event
	for i := range t.seats {
		switch s := &t.seats[i]; {
		case s.Status == SeatEliminated:
			ev = t.vacate(ev, i, Eliminated)
		case s.Leaving:
			ev = t.vacate(ev, i, Left)
		}
	}
	return t.checkGameOver(ev), nil
}

// CommitFailed blocks the table until a later Commit succeeds.
func (t *Table) CommitFailed(err error) error {
	handID := ""
	if t.pending != nil {
		handID = t.pending.HandID
	}
	t.blocked = fmt.Errorf("%w: table %d hand %s: %v", ErrPersistence, t.id, handID, err)
	return t.blocked
}

// Abandon clears the table, e.g. on shutdown. A hand in progress is void:
// every player takes back the stack they started it with. A settled but
// uncommitted hand stands, since its stacks are final.
func (t *Table) Abandon() []Event {
	var ev []Event
	for i := range t.seats {
		s := &t.seats[i]
		if !s.Occupied() {
			continue
		}
		if t.state == HandInProgress {
			s.Stack += s.Total
			s.Total = 0
		}
		ev = t.vacate(ev, i, Left)
	}
	t.state = WaitingForPlayers
	t.hand = nil
	t.button = -1
	t.hands = 0
	t.pending, t.blocked = nil, nil
	return ev
}

func (t *Table) vacate(ev []Event, idx int, reason VacateReason) []Event {
	s := t.seats[idx]
	chips := s.Stack
	if reason == Eliminated {
		chips = 0
	}
	t.seats[idx] = Seat{}
	return append(ev, PlayerVacated{Seat: idx, Player: s.Player, Chips: chips, Reason: reason})
}

// checkGameOver ends the game when at most one player remains.
func (t *Table) checkGameOver(ev []Event) []Event {
	if len(t.Players()) > 1 {
		return ev
	}
	t.state = GameOver
	for i := range t.seats {
		if s := &t.seats[i]; s.Occupied() {
			ev = append(ev, GameEnded{Winner: s.Player, Chips: s.Stack})
			ev = t.vacate(ev, i, Won)
		}
	}
	t.state = WaitingForPlayers
	t.hand = nil
	t.button = -1
	t.hands = 0
	return ev
}

func (t *Table) nextOccupied(from int) int {
	n := len(t.seats)
	for k := range n {
		if i := (from + k) % n; t.seats[i].Occupied() {
			return i
		}
	}
	return -1
}

// live counts seats that can still win the pot.
func (t *Table) live() int {
	n := 0
	for i := range t.seats {
		if t.seats[i].InHand() {
			n++
		}
	}
	return n
}
