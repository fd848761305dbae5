package game

import (
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/poker"
)

// Event is something a table operation produced that players should hear
// about. Events are returned in the order they happened.
type Event interface {
	event()
}

// VacateReason says why a seat was vacated.
type VacateReason int

const (
	Left VacateReason = iota
	Eliminated
	Won
)

func (r VacateReason) String() string {
	return [...]string{"left", "eliminated", "won"}[r]
}

// PlayerSeated is emitted when a player takes a seat with their buy-in.
type PlayerSeated struct {
	Seat     int
	Player   identity.PlayerID
	Nickname string
	Chips    int64
}

// PlayerVacated is emitted when a seat is cleared. Chips is the stack the
// player takes away, to be credited back to their balance.
type PlayerVacated struct {
	Seat   int
	Player identity.PlayerID
	Chips  int64
	Reason VacateReason
}

// GameStarted carries the shuffled seat order of a new game.
type GameStarted struct {
	Seats []identity.PlayerID
}

type HandStarted struct {
	HandID     string
	Button     identity.PlayerID
	SmallBlind int64
	BigBlind   int64
}

// CardsDealt is private to Player.
type CardsDealt struct {
	HandID string
	Player identity.PlayerID
	Cards  []poker.Card
}

// PlayerActed reports an applied action. Amount is the chips put in by it.
type PlayerActed struct {
	HandID       string
	Player       identity.PlayerID
	Action       Action
	Amount       int64
	Stack        int64
	Bet          int64
	Pot          int64
	ServerIssued bool
}

// SeatSnapshot is the public view of a seat.
type SeatSnapshot struct {
	Player identity.PlayerID
	Stack  int64
	Bet    int64
	Status SeatStatus
}

// GameUpdated is emitted after the blinds and whenever a street is dealt.
type GameUpdated struct {
	HandID string
	Street Street
	Board  []poker.Card
	Pot    int64
	Seats  []SeatSnapshot
}

// ActionRequested names the seat that must act next. Index identifies the
// decision so that a late timeout for an earlier one can be told apart.
type ActionRequested struct {
	HandID   string
	Index    int
	Seat     int
	Player   identity.PlayerID
	Actions  []Action
	ToCall   int64
	MinRaise int64 // smallest legal total bet
	BigBlind int64
}

// Payoff is what one player won in a hand.
type Payoff struct {
	Player identity.PlayerID
	Chips  int64
	Hand   string
}

// ShownCards are hole cards revealed at showdown.
type ShownCards struct {
	Player identity.PlayerID
	Cards  []poker.Card
}

// HandEnded is emitted when the pot has been awarded. Shown is empty when
// every other seat folded.
type HandEnded struct {
	HandID  string
	Payoffs []Payoff
	Board   []poker.Card
	Shown   []ShownCards
}

// GameEnded is emitted when one player holds every chip at the table.
type GameEnded struct {
	Winner identity.PlayerID
	Chips  int64
}

func (PlayerSeated) event()    {}
func (PlayerVacated) event()   {}
func (GameStarted) event()     {}
func (HandStarted) event()     {}
func (CardsDealt) event()      {}
func (PlayerActed) event()     {}
func (GameUpdated) event()     {}
func (ActionRequested) event() {}
func (HandEnded) event()       {}
func (GameEnded) event()       {}
