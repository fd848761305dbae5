package game

import "fmt"

// Config holds the per-table game parameters.
type Config struct {
	Seats      int
	BuyIn      int64
	SmallBlind int64
	BigBlind   int64

	// BlindDoubleHands doubles the blinds every n hands of a game. Zero keeps
	// them fixed.
	BlindDoubleHands int
	// BlindMaxMultiplier caps the blinds at this multiple of the starting
	// level. Zero means no cap.
	BlindMaxMultiplier int64
}

// DefaultConfig returns the standard freezeout structure.
func DefaultConfig() Config {
	return Config{
		Seats:              3,
		BuyIn:              1_000_000,
		SmallBlind:         10_000,
		BigBlind:           20_000,
		BlindDoubleHands:   4,
		BlindMaxMultiplier: 12,
	}
}

// Validate checks the config is playable.
func (c Config) Validate() error {
	switch {
	case c.Seats < 2 || c.Seats > 6:
		return fmt.Errorf("%w: seats must be between 2 and 6, got %d", ErrInvalidConfig, c.Seats)
	case c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind:
		return fmt.Errorf("%w: blinds %d/%d", ErrInvalidConfig, c.SmallBlind, c.BigBlind)
	case c.BuyIn <= c.BigBlind:
		return fmt.Errorf("%w: buy-in %d must exceed the big blind", ErrInvalidConfig, c.BuyIn)
	case c.BlindDoubleHands < 0 || c.BlindMaxMultiplier < 0:
		return fmt.Errorf("%w: negative blind schedule", ErrInvalidConfig)
	}
	return nil
}

// Blinds returns the small and big blind for the given hand of a game,
// counting from zero.
func (c Config) Blinds(hand int) (small, big int64) {
	mult := int64(1)
	if c.BlindDoubleHands > 0 {
		for range hand / c.BlindDoubleHands {
			mult *= 2
			if c.BlindMaxMultiplier > 0 && mult >= c.BlindMaxMultiplier {
				mult = c.BlindMaxMultiplier
				break
			}
		}
	}
	return c.SmallBlind * mult, c.BigBlind * mult
}
