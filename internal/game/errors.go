package game

import (
	"errors"
	"fmt"
)

var (
	// ErrGameRule matches every *RuleError.
	ErrGameRule = errors.New("game rule violation")
	// ErrPersistence blocks a table whose settled hand could not be committed.
	ErrPersistence = errors.New("hand could not be persisted")

	ErrAlreadySeated  = errors.New("player already seated")
	ErrNotSeated      = errors.New("player not seated")
	ErrTableFull      = errors.New("table full")
	ErrNotAccepting   = errors.New("table not accepting players")
	ErrNotReady       = errors.New("table not ready")
	ErrNothingPending = errors.New("no settled hand to commit")
	ErrInvalidConfig  = errors.New("invalid table config")
)

// RuleError rejects an action without changing any state. The player may
// send a corrected action.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return "illegal action: " + e.Reason }
func (e *RuleError) Unwrap() error { return ErrGameRule }

func ruleErrorf(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}
