package game

import "slices"

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int64
	Eligible []int // seats that can win it
	Cap      int64 // contribution level that bounds it
}

// Contribution is what one seat put into the hand.
type Contribution struct {
	Seat   int
	Amount int64
	Folded bool
}

// BuildPots layers the contributions into a main pot and side pots. Each
// distinct contribution level of a seat still in the hand closes a layer;
// a layer is contested by the seats that reached it. Folded chips count
// toward the layers they reached, and anything a folded seat put in above
// the highest live level goes to the top pot.
func BuildPots(contribs []Contribution) []Pot {
	var levels []int64
	for _, c := range contribs {
		if !c.Folded && c.Amount > 0 {
			levels = append(levels, c.Amount)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var pots []Pot
	var prev int64
	for _, level := range levels {
		pot := Pot{Cap: level}
		for _, c := range contribs {
			pot.Amount += min(c.Amount, level) - min(c.Amount, prev)
			if !c.Folded && c.Amount >= level {
				pot.Eligible = append(pot.Eligible, c.Seat)
			}
		}
		pots = append(pots, pot)
		prev = level
	}

	var rest int64
	for _, c := range contribs {
		rest += max(c.Amount-prev, 0)
	}
	if rest > 0 {
		if len(pots) == 0 {
			return []Pot{{Amount: rest, Cap: prev + rest}}
		}
		pots[len(pots)-1].Amount += rest
	}
	return pots
}

// Total returns the total amount in all pots
func Total(pots []Pot) int64 {
	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// split divides amount among winners. Odd chips go one at a time to the
// winners nearest clockwise of the button.
func split(amount int64, winners []int, button, seats int) map[int]int64 {
	out := make(map[int]int64, len(winners))
	if len(winners) == 0 {
		return out
	}
	share := amount / int64(len(winners))
	odd := amount % int64(len(winners))
	for _, w := range winners {
		out[w] = share
	}
	for k := 1; k <= seats && odd > 0; k++ {
		seat := (button + k) % seats
		if slices.Contains(winners, seat) {
			out[seat]++
			odd--
		}
	}
	return out
}
