package server

import (
	"github.com/lox/freezeout/internal/game"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/poker"
)

func wireAction(a game.Action) protocol.PlayerAction {
	return protocol.PlayerAction(a.String())
}

func wireActions(as []game.Action) []protocol.PlayerAction {
	out := make([]protocol.PlayerAction, len(as))
	for i, a := range as {
		out[i] = wireAction(a)
	}
	return out
}

// toMessage converts a broadcast event to its wire form. CardsDealt and
// PlayerVacated are handled by the actor and return nil.
func toMessage(e game.Event, deadline int64) protocol.Message {
	switch e := e.(type) {
	case game.PlayerSeated:
		return protocol.PlayerJoined{PlayerID: e.Player, Nickname: e.Nickname, Chips: e.Chips}
	case game.GameStarted:
		return protocol.StartGame{Seats: e.Seats}
	case game.HandStarted:
		return protocol.StartHand{
			HandID:     e.HandID,
			Button:     e.Button,
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
		}
	case game.PlayerActed:
		return protocol.PlayerActed{
			HandID:       e.HandID,
			PlayerID:     e.Player,
			Action:       wireAction(e.Action),
			Amount:       e.Amount,
			Stack:        e.Stack,
			Bet:          e.Bet,
			Pot:          e.Pot,
			ServerIssued: e.ServerIssued,
		}
	case game.GameUpdated:
		m := protocol.GameUpdate{
			HandID: e.HandID,
			Street: e.Street.String(),
			Board:  poker.Strings(e.Board),
			Pot:    e.Pot,
		}
		for _, s := range e.Seats {
			m.Players = append(m.Players, protocol.PlayerUpdate{
				PlayerID: s.Player,
				Stack:    s.Stack,
				Bet:      s.Bet,
				Status:   s.Status.String(),
			})
		}
		return m
	case game.ActionRequested:
		return protocol.ActionRequest{
			HandID:     e.HandID,
			PlayerID:   e.Player,
			Actions:    wireActions(e.Actions),
			ToCall:     e.ToCall,
			MinRaise:   e.MinRaise,
			BigBlind:   e.BigBlind,
			DeadlineMs: deadline,
		}
	case game.HandEnded:
		m := protocol.EndHand{HandID: e.HandID, Board: poker.Strings(e.Board)}
		for _, p := range e.Payoffs {
			m.Payoffs = append(m.Payoffs, protocol.Payoff{PlayerID: p.Player, Chips: p.Chips, Hand: p.Hand})
		}
		for _, s := range e.Shown {
			m.Cards = append(m.Cards, protocol.PlayerCards{PlayerID: s.Player, Cards: poker.Strings(s.Cards)})
		}
		return m
	case game.GameEnded:
		return protocol.EndGame{Winner: e.Winner, Chips: e.Chips}
	}
	return nil
}
