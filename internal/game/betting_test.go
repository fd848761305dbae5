package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		currentBet int64
		seat       Seat
		want       []Action
	}{
		{"unopened street", 0, Seat{Stack: 100}, []Action{Fold, Check, Bet, AllIn}},
		{"facing a bet", 20, Seat{Stack: 100}, []Action{Fold, Call, Raise, AllIn}},
		{"big blind option", 20, Seat{Stack: 100, Bet: 20}, []Action{Fold, Check, Raise, AllIn}},
		{"cannot cover the call", 50, Seat{Stack: 30}, []Action{Fold, Call, AllIn}},
		{"exactly covers the call", 30, Seat{Stack: 30}, []Action{Fold, Call, AllIn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			br := NewBettingRound(2, 20)
			br.CurrentBet = tt.currentBet
			tt.seat.Status = SeatActive
			assert.Equal(t, tt.want, br.ValidActions(0, &tt.seat))
		})
	}
}

func TestApplyRejectsIllegalActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action Action
		amount int64
	}{
		{"check facing a bet", Check, 0},
		{"bet into a bet", Bet, 100},
		{"raise below minimum", Raise, 50},
		{"raise not above current bet", Raise, 40},
		{"raise beyond stack", Raise, 500},
		{"blind is not a decision", BigBlind, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			br := NewBettingRound(2, 20)
			br.CurrentBet = 40
			br.MinRaise = 20
			s := Seat{Stack: 200, Status: SeatActive}
			before := s

			_, err := br.Apply(0, &s, tt.action, tt.amount)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGameRule)
			var re *RuleError
			assert.True(t, errors.As(err, &re))

			assert.Equal(t, before, s)
			assert.Equal(t, int64(40), br.CurrentBet)
			assert.False(t, br.Acted[0])
		})
	}

	br := NewBettingRound(2, 20)
	s := Seat{Stack: 100, Status: SeatActive}
	_, err := br.Apply(0, &s, Call, 0)
	assert.ErrorIs(t, err, ErrGameRule, "nothing to call")
	_, err = br.Apply(0, &s, Raise, 40)
	assert.ErrorIs(t, err, ErrGameRule, "nothing to raise")
}

func TestApplyRaiseReopensAction(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 20)
	seats := []Seat{
		{Stack: 1000, Status: SeatActive},
		{Stack: 1000, Status: SeatActive},
		{Stack: 1000, Status: SeatActive},
	}

	put, err := br.Apply(0, &seats[0], Bet, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), put)
	assert.Equal(t, int64(50), br.MinRaise)

	_, err = br.Apply(1, &seats[1], Call, 0)
	require.NoError(t, err)

	// Raise to 150 is a raise of 100.
	_, err = br.Apply(2, &seats[2], Raise, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), br.CurrentBet)
	assert.Equal(t, int64(100), br.MinRaise)
	assert.Equal(t, 2, br.LastAggressor)
	assert.Equal(t, []bool{false, false, true}, br.Acted)
	assert.False(t, br.Complete(seats))

	_, err = br.Apply(0, &seats[0], Raise, 200)
	require.Error(t, err, "minimum re-raise is to 250")

	_, err = br.Apply(0, &seats[0], Call, 0)
	require.NoError(t, err)
	_, err = br.Apply(1, &seats[1], Call, 0)
	require.NoError(t, err)
	assert.True(t, br.Complete(seats))

	for _, s := range seats {
		assert.Equal(t, int64(150), s.Bet)
		assert.Equal(t, int64(850), s.Stack)
	}
}

func TestApplyShortAllIn(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(2, 20)
	br.CurrentBet = 100
	br.MinRaise = 100
	s := Seat{Stack: 130, Status: SeatActive}

	// Raising to the whole stack is legal below the minimum.
	put, err := br.Apply(0, &s, Raise, 130)
	require.NoError(t, err)
	assert.Equal(t, int64(130), put)
	assert.Equal(t, SeatAllIn, s.Status)
	assert.Equal(t, int64(130), br.CurrentBet)
	assert.Equal(t, int64(100), br.MinRaise)

	caller := Seat{Stack: 60, Status: SeatActive}
	put, err = br.Apply(1, &caller, Call, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(60), put, "call is capped by the stack")
	assert.Equal(t, SeatAllIn, caller.Status)
}

func TestShortAllInDoesNotReopenBetting(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(4, 20)
	seats := []Seat{
		{Stack: 1000, Status: SeatActive},
		{Stack: 1000, Status: SeatActive},
		{Stack: 130, Status: SeatActive},
		{Stack: 1000, Status: SeatActive},
	}

	_, err := br.Apply(0, &seats[0], Bet, 100)
	require.NoError(t, err)
	_, err = br.Apply(1, &seats[1], Call, 0)
	require.NoError(t, err)
	_, err = br.Apply(2, &seats[2], AllIn, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(130), br.CurrentBet)
	assert.Equal(t, int64(100), br.MinRaise)

	// Seats that acted before the short all-in may only call or fold.
	assert.Equal(t, []Action{Fold, Call}, br.ValidActions(0, &seats[0]))
	_, err = br.Apply(0, &seats[0], Raise, 230)
	assert.ErrorIs(t, err, ErrGameRule)
	_, err = br.Apply(0, &seats[0], AllIn, 0)
	assert.ErrorIs(t, err, ErrGameRule)
	assert.Equal(t, int64(900), seats[0].Stack, "rejected actions change nothing")

	// A seat yet to act keeps its full options.
	assert.Equal(t, []Action{Fold, Call, Raise, AllIn}, br.ValidActions(3, &seats[3]))

	_, err = br.Apply(0, &seats[0], Call, 0)
	require.NoError(t, err)
	assert.True(t, br.Capped[1], "still capped after another seat calls")

	// A full raise reopens betting for everyone.
	_, err = br.Apply(3, &seats[3], Raise, 230)
	require.NoError(t, err)
	assert.False(t, br.Capped[0])
	assert.False(t, br.Capped[1])
	assert.Equal(t, []Action{Fold, Call, Raise, AllIn}, br.ValidActions(1, &seats[1]))

	br.Reset()
	assert.Equal(t, []bool{false, false, false, false}, br.Capped)
}

func TestCappedSeatMayGoAllInToCall(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 20)
	seats := []Seat{
		{Stack: 140, Status: SeatActive},
		{Stack: 1000, Status: SeatActive},
		{Stack: 130, Status: SeatActive},
	}
	_, err := br.Apply(0, &seats[0], Bet, 100)
	require.NoError(t, err)
	_, err = br.Apply(1, &seats[1], Call, 0)
	require.NoError(t, err)
	_, err = br.Apply(2, &seats[2], AllIn, 0)
	require.NoError(t, err)

	// Seat 0 has 40 behind against 30 to call, so all in would be a raise.
	assert.Equal(t, []Action{Fold, Call}, br.ValidActions(0, &seats[0]))

	seats[0].Stack = 25
	assert.Equal(t, []Action{Fold, Call, AllIn}, br.ValidActions(0, &seats[0]))
	put, err := br.Apply(0, &seats[0], AllIn, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), put)
}

func TestCompleteWithAllIns(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 20)
	seats := []Seat{
		{Stack: 0, Bet: 80, Status: SeatAllIn},
		{Stack: 500, Bet: 0, Status: SeatActive},
		{Stack: 0, Status: SeatFolded},
	}
	br.CurrentBet = 80
	assert.False(t, br.Complete(seats), "the live seat owes a call")

	_, err := br.Apply(1, &seats[1], Call, 0)
	require.NoError(t, err)
	assert.True(t, br.Complete(seats))

	br.Reset()
	seats[1].Bet = 0
	assert.True(t, br.Complete(seats), "nobody left to bet against")
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	for a := NoAction; a <= AllIn; a++ {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("muck")
	assert.Error(t, err)
}
