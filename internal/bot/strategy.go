package bot

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/poker"
)

// View is what a bot knows when it is asked to act.
type View struct {
	Cards  []string // hole cards, empty if the deal was missed
	Board  []string
	Street string
	Stack  int64
	Pot    int64
}

// Decision is an answer to an ActionRequest. Amount is the total bet for
// bet and raise and ignored otherwise.
type Decision struct {
	Action protocol.PlayerAction
	Amount int64
	Reason string
}

// Strategy picks one of the actions offered in req.
type Strategy interface {
	Decide(v View, req protocol.ActionRequest, rng *rand.Rand) Decision
}

// Strategies lists the names accepted by StrategyByName.
var Strategies = []string{"call", "random", "chart"}

// StrategyByName returns a fresh strategy.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "call", "":
		return CallStrategy{RaiseChance: 0.1}, nil
	case "random":
		return RandomStrategy{}, nil
	case "chart":
		return ChartStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, Strategies)
}

func offered(req protocol.ActionRequest, a protocol.PlayerAction) bool {
	return slices.Contains(req.Actions, a)
}

// passive checks when it can, otherwise calls, otherwise folds.
func passive(req protocol.ActionRequest, reason string) Decision {
	switch {
	case offered(req, protocol.ActionCheck):
		return Decision{Action: protocol.ActionCheck, Reason: reason}
	case offered(req, protocol.ActionCall):
		return Decision{Action: protocol.ActionCall, Reason: reason}
	case offered(req, protocol.ActionAllIn):
		return Decision{Action: protocol.ActionAllIn, Reason: reason}
	}
	return Decision{Action: protocol.ActionFold, Reason: reason}
}

// minRaise bets or raises the minimum, if either is on offer.
func minRaise(req protocol.ActionRequest, reason string) (Decision, bool) {
	for _, a := range []protocol.PlayerAction{protocol.ActionRaise, protocol.ActionBet} {
		if offered(req, a) {
			return Decision{Action: a, Amount: req.MinRaise, Reason: reason}, true
		}
	}
	return Decision{}, false
}

// CallStrategy checks or calls down, min-raising now and then.
type CallStrategy struct {
	RaiseChance float64
}

func (s CallStrategy) Decide(_ View, req protocol.ActionRequest, rng *rand.Rand) Decision {
	if s.RaiseChance > 0 && rng.Float64() < s.RaiseChance {
		if d, ok := minRaise(req, "min-raise"); ok {
			return d
		}
	}
	return passive(req, "check/call")
}

// RandomStrategy picks uniformly among the offered actions, with a random
// bet size between the minimum and the whole stack.
type RandomStrategy struct{}

func (RandomStrategy) Decide(v View, req protocol.ActionRequest, rng *rand.Rand) Decision {
	if len(req.Actions) == 0 {
		return Decision{Action: protocol.ActionFold, Reason: "nothing offered"}
	}
	a := req.Actions[rng.IntN(len(req.Actions))]
	d := Decision{Action: a, Reason: "random"}
	if a == protocol.ActionBet || a == protocol.ActionRaise {
		d.Amount = req.MinRaise
		if v.Stack > req.MinRaise {
			d.Amount += rng.Int64N(v.Stack - req.MinRaise + 1)
		}
	}
	return d
}

// ChartStrategy plays a preflop chart: it raises premium hands, calls
// playable ones and folds the rest to a bet. After the flop it checks or
// calls.
type ChartStrategy struct{}

func (ChartStrategy) Decide(v View, req protocol.ActionRequest, _ *rand.Rand) Decision {
	if v.Street != "" && v.Street != "preflop" {
		return passive(req, "postflop check/call")
	}

	category := poker.PreflopStrings(v.Cards)

	switch category {
	case poker.Premium:
		if d, ok := minRaise(req, "premium raise"); ok {
			return d
		}
		return passive(req, "premium")
	case poker.Strong, poker.Medium:
		return passive(req, category.String())
	}

	if offered(req, protocol.ActionCheck) {
		return Decision{Action: protocol.ActionCheck, Reason: "free look"}
	}
	return Decision{Action: protocol.ActionFold, Reason: category.String()}
}
