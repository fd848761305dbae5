package game

import (
	"fmt"
	"slices"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/poker"
)

// Hand is the record of the hand in progress.
type Hand struct {
	ID             string
	Street         Street
	Button         int
	SmallBlindSeat int
	BigBlindSeat   int
	SmallBlind     int64
	BigBlind       int64
	Board          []poker.Card
	Betting        *BettingRound
	Actor          int // seat to act, -1 when nobody is

	index  int // decisions made so far
	cursor int // where the search for the next actor starts
	deck   *poker.Deck
	start  []int64
}

// Index counts the decisions applied so far in the hand.
func (h *Hand) Index() int { return h.index }

// Settlement is the result of a hand waiting to be persisted.
type Settlement struct {
	HandID string
	// Deltas is each participant's stack change. They sum to zero.
	Deltas map[identity.PlayerID]int64
}

func (t *Table) postBlind(ev []Event, idx int, a Action, amount int64) []Event {
	s := &t.seats[idx]
	put := min(amount, s.Stack)
	s.Stack -= put
	s.Bet += put
	s.Total += put
	if s.Stack == 0 {
		s.Status = SeatAllIn
	}
	return append(ev, t.acted(idx, a, put, false))
}

func (t *Table) dealHoleCards(ev []Event) []Event {
	h := t.hand
	n := len(t.seats)
	for k := 1; k <= n; k++ {
		i := (h.Button + k) % n
		s := &t.seats[i]
		if !s.Occupied() {
			continue
		}
		s.Hole = h.deck.Deal(2)
		ev = append(ev, CardsDealt{HandID: h.ID, Player: s.Player, Cards: slices.Clone(s.Hole)})
	}
	return ev
}

// apply runs one decision for the seat at idx and advances the hand.
func (t *Table) apply(idx int, a Action, amount int64, serverIssued bool) ([]Event, error) {
	h := t.hand
	put, err := h.Betting.Apply(idx, &t.seats[idx], a, amount)
	if err != nil {
		return nil, err
	}
	h.index++
	h.cursor = idx + 1
	ev := []Event{t.acted(idx, a, put, serverIssued)}
	return t.proceed(ev), nil
}

// proceed moves the hand forward until a seat has to make a decision or the
// hand is over.
func (t *Table) proceed(ev []Event) []Event {
	h := t.hand
	for {
		if t.live() <= 1 {
			return t.settle(ev)
		}
		if h.Betting.Complete(t.seats) {
			if h.Street == River {
				return t.settle(ev)
			}
			ev = t.nextStreet(ev)
			continue
		}

		idx := t.nextToAct(h.cursor)
		if idx < 0 {
			return t.settle(ev)
		}
		h.Actor = idx
		s := &t.seats[idx]
		if s.Status == SeatSittingOut {
			_, _ = h.Betting.Apply(idx, s, Fold, 0)
			h.index++
			h.cursor = idx + 1
			ev = append(ev, t.acted(idx, Fold, 0, true))
			continue
		}
		return append(ev, t.request(idx))
	}
}

func (t *Table) nextStreet(ev []Event) []Event {
	h := t.hand
	for i := range t.seats {
		t.seats[i].Bet = 0
	}
	h.Betting.Reset()
	h.Street++
	n := 1
	if h.Street == Flop {
		n = 3
	}
	h.Board = append(h.Board, h.deck.Deal(n)...)
	h.cursor = h.Button + 1
	return append(ev, t.update())
}

func (t *Table) nextToAct(from int) int {
	n := len(t.seats)
	for k := range n {
		i := (from + k) % n
		if t.hand.Betting.needsAction(i, &t.seats[i]) {
			return i
		}
	}
	return -1
}

// settle awards the pots, records the stack changes and eliminates busted
// seats. Cards are only shown when more than one seat is still in.
func (t *Table) settle(ev []Event) []Event {
	h := t.hand
	n := len(t.seats)
	showdown := t.live() > 1
	if showdown {
		h.Street = Showdown
	}

	var contribs []Contribution
	for i := range t.seats {
		s := &t.seats[i]
		s.Bet = 0
		if s.Occupied() {
			contribs = append(contribs, Contribution{Seat: i, Amount: s.Total, Folded: !s.InHand()})
		}
	}
	pots := BuildPots(contribs)

	ranks := make(map[int]poker.HandRank)
	descs := make(map[int]string)
	var shown []ShownCards
	if showdown {
		for i := range t.seats {
			s := &t.seats[i]
			if !s.InHand() {
				continue
			}
			cards := append(slices.Clone(s.Hole), h.Board...)
			rank, err := poker.Evaluate(cards...)
			if err != nil {
				panic(fmt.Sprintf("game: evaluate seat %d: %v", i, err))
			}
			ranks[i] = rank
			descs[i], _ = poker.Describe(cards...)
			shown = append(shown, ShownCards{Player: s.Player, Cards: slices.Clone(s.Hole)})
		}
	}

	won := make([]int64, n)
	for _, pot := range pots {
		winners := pot.Eligible
		if showdown {
			winners = best(pot.Eligible, ranks)
		}
		for seat, chips := range split(pot.Amount, winners, h.Button, n) {
			won[seat] += chips
		}
	}

	settlement := &Settlement{HandID: h.ID, Deltas: make(map[identity.PlayerID]int64)}
	var payoffs []Payoff
	for i := range t.seats {
		s := &t.seats[i]
		if !s.Occupied() {
			continue
		}
		s.Stack += won[i]
		s.Total = 0
		settlement.Deltas[s.Player] = s.Stack - h.start[i]
		if won[i] > 0 {
			payoffs = append(payoffs, Payoff{Player: s.Player, Chips: won[i], Hand: descs[i]})
		}
		if s.Stack == 0 {
			s.Status = SeatEliminated
		}
	}

	h.Actor = -1
	t.hands++
	t.state = HandSettled
	t.pending = settlement
	return append(ev, HandEnded{
		HandID:  h.ID,
		Payoffs: payoffs,
		Board:   slices.Clone(h.Board),
		Shown:   shown,
	})
}

// best returns the eligible seats holding the highest rank.
func best(eligible []int, ranks map[int]poker.HandRank) []int {
	var winners []int
	var top poker.HandRank
	for _, seat := range eligible {
		rank, ok := ranks[seat]
		if !ok {
			continue
		}
		switch cmp := poker.CompareHands(rank, top); {
		case len(winners) == 0 || cmp > 0:
			top = rank
			winners = []int{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}

func (t *Table) acted(idx int, a Action, put int64, serverIssued bool) PlayerActed {
	s := &t.seats[idx]
	return PlayerActed{
		HandID:       t.hand.ID,
		Player:       s.Player,
		Action:       a,
		Amount:       put,
		Stack:        s.Stack,
		Bet:          s.Bet,
		Pot:          t.Pot(),
		ServerIssued: serverIssued,
	}
}

func (t *Table) request(idx int) ActionRequested {
	h := t.hand
	s := &t.seats[idx]
	return ActionRequested{
		HandID:   h.ID,
		Index:    h.index,
		Seat:     idx,
		Player:   s.Player,
		Actions:  h.Betting.ValidActions(idx, s),
		ToCall:   h.Betting.ToCall(s),
		MinRaise: h.Betting.MinTotal(),
		BigBlind: h.BigBlind,
	}
}

func (t *Table) update() GameUpdated {
	h := t.hand
	u := GameUpdated{
		HandID: h.ID,
		Street: h.Street,
		Board:  slices.Clone(h.Board),
		Pot:    t.Pot(),
	}
	for i := range t.seats {
		s := &t.seats[i]
		if s.Occupied() {
			u.Seats = append(u.Seats, SeatSnapshot{Player: s.Player, Stack: s.Stack, Bet: s.Bet, Status: s.Status})
		}
	}
	return u
}
