package game

import (
	"slices"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/poker"
)

// SeatStatus is a seat's standing in the current hand.
type SeatStatus int

const (
	SeatEmpty SeatStatus = iota
	SeatActive
	SeatFolded
	SeatAllIn
	// SeatSittingOut is a player who left mid-hand. The seat folds when its
	// turn comes and vacates at settlement.
	SeatSittingOut
	// SeatEliminated has lost its stack; it vacates when the hand is committed.
	SeatEliminated
)

func (s SeatStatus) String() string {
	return [...]string{"empty", "active", "folded", "allin", "sitting_out", "eliminated"}[s]
}

// Seat is one position at a table.
type Seat struct {
	Player   identity.PlayerID
	Nickname string
	Stack    int64
	Bet      int64 // this street
	Total    int64 // this hand
	Status   SeatStatus
	Hole     []poker.Card
	Leaving  bool
}

// Occupied reports whether a player holds the seat.
func (s *Seat) Occupied() bool { return s.Status != SeatEmpty }

// InHand reports whether the seat can still win the pot.
func (s *Seat) InHand() bool {
	switch s.Status {
	case SeatActive, SeatAllIn, SeatSittingOut:
		return true
	}
	return false
}

// CanAct reports whether the seat still takes turns this hand.
func (s *Seat) CanAct() bool {
	return s.Status == SeatActive || s.Status == SeatSittingOut
}

func (s Seat) clone() Seat {
	s.Hole = slices.Clone(s.Hole)
	return s
}
