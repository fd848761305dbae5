package poker

import (
	"errors"
	"fmt"

	ph "github.com/paulhankin/poker"
)

// HandRank orders hands: a greater rank always beats a lesser one and equal
// ranks tie.
type HandRank int16

// ErrCardCount is returned when Evaluate is given fewer than 5 or more than 7 cards.
var ErrCardCount = errors.New("poker: evaluate needs 5 to 7 cards")

// Evaluate ranks the best five card hand that can be made from cards.
func Evaluate(cards ...Card) (HandRank, error) {
	conv, err := convert(cards)
	if err != nil {
		return 0, err
	}

	switch len(conv) {
	case 7:
		var h [7]ph.Card
		copy(h[:], conv)
		return HandRank(ph.Eval7(&h)), nil
	case 6:
		best := HandRank(-1 << 15)
		for skip := range 6 {
			var h [5]ph.Card
			j := 0
			for i, c := range conv {
				if i == skip {
					continue
				}
				h[j] = c
				j++
			}
			if r := HandRank(ph.Eval5(&h)); r > best {
				best = r
			}
		}
		return best, nil
	default:
		var h [5]ph.Card
		copy(h[:], conv)
		return HandRank(ph.Eval5(&h)), nil
	}
}

// Describe names the best hand that can be made from cards, e.g. "full house, 8s over 3s".
func Describe(cards ...Card) (string, error) {
	conv, err := convert(cards)
	if err != nil {
		return "", err
	}
	return ph.Describe(conv)
}

// CompareHands returns 1 if a beats b, -1 if b beats a and 0 on a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func convert(cards []Card) ([]ph.Card, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
	seen := make(map[Card]bool, len(cards))
	out := make([]ph.Card, len(cards))
	for i, c := range cards {
		if !c.Valid() || seen[c] {
			return nil, fmt.Errorf("poker: invalid or duplicate card %s", c)
		}
		seen[c] = true
		pc, err := ph.MakeCard(ph.Suit(c.Suit()), ph.Rank(phRank(c.Rank())))
		if err != nil {
			return nil, fmt.Errorf("poker: convert %s: %w", c, err)
		}
		out[i] = pc
	}
	return out, nil
}

// phRank maps Two..Ace (0..12) to the evaluator's 1..13 with the ace as 1.
func phRank(r uint8) uint8 {
	if r == Ace {
		return 1
	}
	return r + 2
}
