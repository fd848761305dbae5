package game

import "fmt"

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action represents a player action
type Action int

const (
	NoAction Action = iota
	SmallBlind
	BigBlind
	Check
	Call
	Bet
	Raise
	Fold
	AllIn
)

var actionNames = [...]string{"none", "small_blind", "big_blind", "check", "call", "bet", "raise", "fold", "allin"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction parses the wire name of an action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return NoAction, fmt.Errorf("unknown action %q", s)
}

// BettingRound tracks one street of betting. Amounts are per-street totals.
type BettingRound struct {
	CurrentBet    int64
	MinRaise      int64
	LastAggressor int
	Acted         []bool
	// Capped seats acted before an all-in that was short of a full raise.
	// They may call or fold but not raise until a full raise reopens betting.
	Capped   []bool
	BigBlind int64
}

// NewBettingRound creates a new betting round
func NewBettingRound(seats int, bigBlind int64) *BettingRound {
	return &BettingRound{
		MinRaise:      bigBlind,
		LastAggressor: -1,
		Acted:         make([]bool, seats),
		Capped:        make([]bool, seats),
		BigBlind:      bigBlind,
	}
}

// Reset prepares the round for a new street.
func (br *BettingRound) Reset() {
	br.CurrentBet = 0
	br.MinRaise = br.BigBlind
	br.LastAggressor = -1
	clear(br.Acted)
	clear(br.Capped)
}

// ToCall is what the seat owes to stay in.
func (br *BettingRound) ToCall(s *Seat) int64 {
	return max(br.CurrentBet-s.Bet, 0)
}

// MinTotal is the smallest legal total bet for a bet or raise.
func (br *BettingRound) MinTotal() int64 {
	return br.CurrentBet + br.MinRaise
}

// ValidActions returns the legal actions for the seat at idx.
func (br *BettingRound) ValidActions(idx int, s *Seat) []Action {
	actions := []Action{Fold}
	toCall := br.ToCall(s)
	capped := br.Capped[idx]

	if toCall == 0 {
		actions = append(actions, Check)
		if s.Stack > 0 && !capped {
			if br.CurrentBet == 0 {
				actions = append(actions, Bet)
			} else {
				actions = append(actions, Raise)
			}
		}
	} else {
		actions = append(actions, Call)
		if s.Stack > toCall && !capped {
			actions = append(actions, Raise)
		}
	}
	if s.Stack > 0 && (!capped || s.Stack <= toCall) {
		actions = append(actions, AllIn)
	}
	return actions
}

// Apply validates an action for the seat at idx and applies it. Amount is the
// total street bet for Bet and Raise and is ignored otherwise. It returns the
// chips the seat put in. A *RuleError leaves everything unchanged.
func (br *BettingRound) Apply(idx int, s *Seat, a Action, amount int64) (int64, error) {
	toCall := br.ToCall(s)
	var put int64

	switch a {
	case Fold:
		s.Status = SeatFolded

	case Check:
		if toCall > 0 {
			return 0, ruleErrorf("cannot check, %d to call", toCall)
		}

	case Call:
		if toCall == 0 {
			return 0, ruleErrorf("nothing to call")
		}
		put = min(toCall, s.Stack)

	case Bet, Raise:
		if a == Bet && br.CurrentBet > 0 {
			return 0, ruleErrorf("cannot bet into %d, raise instead", br.CurrentBet)
		}
		if a == Raise && br.CurrentBet == 0 {
			return 0, ruleErrorf("nothing to raise, bet instead")
		}
		if br.Capped[idx] {
			return 0, ruleErrorf("betting was not reopened, call or fold")
		}
		limit := s.Bet + s.Stack
		if amount > limit {
			return 0, ruleErrorf("%s to %d exceeds stack of %d", a, amount, limit)
		}
		if amount <= br.CurrentBet {
			return 0, ruleErrorf("%s to %d does not exceed the current bet of %d", a, amount, br.CurrentBet)
		}
		// Short all-ins are always allowed.
		if amount < br.MinTotal() && amount < limit {
			return 0, ruleErrorf("%s must be to at least %d", a, br.MinTotal())
		}
		put = amount - s.Bet

	case AllIn:
		if s.Stack == 0 {
			return 0, ruleErrorf("no chips left")
		}
		if br.Capped[idx] && s.Stack > toCall {
			return 0, ruleErrorf("betting was not reopened, all in only as a call")
		}
		put = s.Stack

	default:
		return 0, ruleErrorf("%s is not a player action", a)
	}

	s.Stack -= put
	s.Bet += put
	s.Total += put
	if put > 0 && s.Stack == 0 {
		s.Status = SeatAllIn
	}
	br.Acted[idx] = true

	if s.Bet > br.CurrentBet {
		full := s.Bet-br.CurrentBet >= br.MinRaise
		br.MinRaise = max(br.MinRaise, s.Bet-br.CurrentBet)
		br.CurrentBet = s.Bet
		br.LastAggressor = idx
		// Everyone else has to act again; after a short all-in those who
		// already acted may only call.
		for i := range br.Acted {
			if full {
				br.Capped[i] = false
			} else if i != idx && br.Acted[i] {
				br.Capped[i] = true
			}
			br.Acted[i] = i == idx
		}
	}
	return put, nil
}

// Complete reports whether no seat still has to act on this street.
func (br *BettingRound) Complete(seats []Seat) bool {
	open := 0
	last := -1
	for i := range seats {
		if seats[i].CanAct() {
			open++
			last = i
		}
	}
	switch open {
	case 0:
		return true
	case 1:
		// Nobody left to bet against.
		if seats[last].Bet >= br.CurrentBet {
			return true
		}
	}
	for i := range seats {
		if br.needsAction(i, &seats[i]) {
			return false
		}
	}
	return true
}

func (br *BettingRound) needsAction(idx int, s *Seat) bool {
	return s.CanAct() && (!br.Acted[idx] || s.Bet < br.CurrentBet)
}
