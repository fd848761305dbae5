package poker

// Category is a coarse preflop strength bucket for two hole cards.
type Category int

const (
	Unknown Category = iota
	Trash
	Weak    // 22-66, suited cards at most two ranks apart
	Medium  // 77-99, suited broadway
	Strong  // TT, AQ, AJ
	Premium // JJ+, AK
)

func (c Category) String() string {
	switch c {
	case Trash:
		return "trash"
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	case Premium:
		return "premium"
	}
	return "unknown"
}

// Preflop buckets a two-card starting hand. Anything other than two valid,
// distinct cards is Unknown.
func Preflop(hole []Card) Category {
	if len(hole) != 2 || !hole[0].Valid() || !hole[1].Valid() || hole[0] == hole[1] {
		return Unknown
	}
	lo, hi := hole[0].Rank(), hole[1].Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := hole[0].Suit() == hole[1].Suit()

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return Premium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return Strong
	case pair && lo >= Seven, suited && lo >= Ten:
		return Medium
	case pair, suited && hi-lo <= 2:
		return Weak
	}
	return Trash
}

// PreflopStrings is Preflop for cards in wire form.
func PreflopStrings(hole []string) Category {
	cards, err := FromStrings(hole)
	if err != nil {
		return Unknown
	}
	return Preflop(cards)
}
