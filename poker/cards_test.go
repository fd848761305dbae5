package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/freezeout/internal/randutil"
)

func TestParseCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		rank uint8
		suit uint8
	}{
		{"As", Ace, Spades},
		{"Td", Ten, Diamonds},
		{"2c", Two, Clubs},
		{"kh", King, Hearts},
	}
	for _, tt := range tests {
		c, err := ParseCard(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.rank, c.Rank(), tt.in)
		assert.Equal(t, tt.suit, c.Suit(), tt.in)
	}

	for _, bad := range []string{"", "A", "1s", "Ax", "Asd"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, bad)
	}
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for c := Card(0); c < 52; c++ {
		s := c.String()
		require.False(t, seen[s], "duplicate %s", s)
		seen[s] = true

		back, err := ParseCard(s)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
	assert.Len(t, seen, 52)
	assert.Equal(t, "??", Card(52).String())
}

func TestDeck(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(42))
	assert.Equal(t, 52, d.CardsRemaining())

	seen := map[Card]bool{}
	for d.CardsRemaining() > 0 {
		for _, c := range d.Deal(1) {
			assert.False(t, seen[c])
			seen[c] = true
		}
	}
	assert.Len(t, seen, 52)
	assert.Nil(t, d.Deal(1))

	// Same seed, same order.
	a := NewDeck(randutil.New(7)).Deal(10)
	b := NewDeck(randutil.New(7)).Deal(10)
	assert.Equal(t, a, b)
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()

	top, err := ParseCards("As Ks Qs")
	require.NoError(t, err)

	d := NewStackedDeck(top...)
	assert.Equal(t, top, d.Deal(3))
	assert.Equal(t, 49, d.CardsRemaining())
	for _, c := range d.Deal(49) {
		assert.NotContains(t, top, c)
	}
}
