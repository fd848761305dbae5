// Package game implements the freezeout table engine.
//
// A Table is a pure, single-threaded state machine. Every operation returns
// the events it produced and never blocks, so the caller decides how events
// reach players, when timers fire and when results are persisted:
//
//	t := game.NewTable(1, cfg, randutil.New(42))
//	t.Join(alice, "alice")
//	t.Join(bob, "bob")
//	events, err := t.StartHand(nil)
//	...
//	events, err = t.Act(alice, game.Call, 0)
//
// # States
//
//	WaitingForPlayers -> HandInProgress -> HandSettled -> HandInProgress ...
//	                                                   -> GameOver -> WaitingForPlayers
//
// A settled hand must be committed before the next one can start. Commit
// vacates eliminated and departed seats and ends the game when a single
// player holds every chip.
//
// # Architecture
//
//   - BettingRound: validates and applies actions within one street
//   - BuildPots: layers contributions into main and side pots
//   - poker.Evaluate: ranks showdown hands
package game
