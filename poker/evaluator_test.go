package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEval(t *testing.T, s string) HandRank {
	t.Helper()
	cards, err := ParseCards(s)
	require.NoError(t, err)
	r, err := Evaluate(cards...)
	require.NoError(t, err)
	return r
}

func TestEvaluateOrdering(t *testing.T) {
	t.Parallel()

	// Strongest first.
	hands := []string{
		"As Ks Qs Js Ts 2c 3d", // royal flush
		"9h 8h 7h 6h 5h Ac Kd", // straight flush
		"Qc Qd Qh Qs 2c 3d 4h", // quads
		"8c 8d 8h 3s 3c Ad Kh", // full house
		"Ah Jh 9h 4h 2h Kc Qd", // flush
		"5c 6d 7h 8s 9c Kd 2h", // straight
		"Ac 2d 3h 4s 5c Kd 9h", // wheel
		"7c 7d 7h As Kc 2d 4h", // trips
		"Jc Jd 4h 4s Ac 2d 8h", // two pair
		"Tc Td As Kc 4h 2d 8s", // pair
		"Ac Qd 9h 7s 5c 3d 2h", // high card
	}

	ranks := make([]HandRank, len(hands))
	for i, h := range hands {
		ranks[i] = mustEval(t, h)
	}
	for i := 1; i < len(ranks); i++ {
		assert.Greater(t, ranks[i-1], ranks[i], "%q should beat %q", hands[i-1], hands[i])
	}
}

func TestEvaluateTies(t *testing.T) {
	t.Parallel()

	// Board plays for both.
	a := mustEval(t, "2c 3d As Ks Qs Js Ts")
	b := mustEval(t, "4c 5d As Ks Qs Js Ts")
	assert.Equal(t, 0, CompareHands(a, b))

	// Kicker decides.
	c := mustEval(t, "Ac Kd Ah 9s 5c 3d 2h")
	d := mustEval(t, "Ad Qd Ah 9s 5c 3d 2h")
	assert.Equal(t, 1, CompareHands(c, d))
	assert.Equal(t, -1, CompareHands(d, c))
}

func TestEvaluateCardCounts(t *testing.T) {
	t.Parallel()

	five := mustEval(t, "As Ks Qs Js Ts")
	six := mustEval(t, "As Ks Qs Js Ts 2c")
	seven := mustEval(t, "As Ks Qs Js Ts 2c 3d")
	assert.Equal(t, five, six)
	assert.Equal(t, five, seven)

	pairSix := mustEval(t, "2c 2d 9h Ts Jc Ad")
	pairFive := mustEval(t, "2c 2d Ts Jc Ad")
	assert.Equal(t, pairFive, pairSix)

	cards, err := ParseCards("As Ks Qs Js")
	require.NoError(t, err)
	_, err = Evaluate(cards...)
	assert.ErrorIs(t, err, ErrCardCount)

	dup, err := ParseCards("As As Qs Js Ts")
	require.NoError(t, err)
	_, err = Evaluate(dup...)
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("8c 8d 8h 3s 3c Ad Kh")
	require.NoError(t, err)
	desc, err := Describe(cards...)
	require.NoError(t, err)
	assert.NotEmpty(t, desc)
}
