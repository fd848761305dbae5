// Package ledger stores player chip balances and the per-table record of
// settled hands.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/lox/freezeout/internal/identity"
)

var (
	ErrInsufficientChips = errors.New("ledger: insufficient chips")
	ErrUnknownPlayer     = errors.New("ledger: unknown player")
	ErrUnbalancedHand    = errors.New("ledger: hand deltas do not sum to zero")
	ErrInvalidAmount     = errors.New("ledger: amount must be positive")
)

// Account is a player's persisted record.
type Account struct {
	PlayerID identity.PlayerID
	Nickname string
	Chips    int64
	Created  time.Time
	Updated  time.Time
}

// Ledger is the chip store used by the table registry. Implementations
// serialize operations on the same player.
type Ledger interface {
	// Account returns the player's account, creating it with initial chips
	// if it does not exist. The nickname is updated on every call.
	Account(ctx context.Context, id identity.PlayerID, nickname string, initial int64) (Account, error)
	Balance(ctx context.Context, id identity.PlayerID) (int64, error)
	// Debit fails with ErrInsufficientChips, leaving the balance unchanged,
	// if the balance is below amount.
	Debit(ctx context.Context, id identity.PlayerID, amount int64) error
	Credit(ctx context.Context, id identity.PlayerID, amount int64) error
	// CommitHand records the stack changes of one settled hand. Either all
	// deltas are recorded or none are; deltas must sum to zero.
	CommitHand(ctx context.Context, tableID int, deltas map[identity.PlayerID]int64) error
}

// TableRecord is the audit trail CommitHand keeps for a table.
type TableRecord struct {
	Hands int64
	Net   map[identity.PlayerID]int64
}
