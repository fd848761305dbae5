package poker

import (
	"fmt"
	"strings"
)

// Card is a single playing card packed as rank*4 + suit.
type Card uint8

// Ranks, deuce low.
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suits.
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard creates a card from a rank (Two..Ace) and suit (Clubs..Spades).
func NewCard(rank, suit uint8) Card {
	return Card(rank*4 + suit)
}

// Rank returns the card rank, Two=0 through Ace=12.
func (c Card) Rank() uint8 {
	return uint8(c) / 4
}

// Suit returns the card suit.
func (c Card) Suit() uint8 {
	return uint8(c) % 4
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c < 52
}

// String returns the two character form, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// ParseCard parses the two character form produced by String.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	r := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	u := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if r < 0 || u < 0 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	return NewCard(uint8(r), uint8(u)), nil
}

// ParseCards parses a list of cards, e.g. "As Kd 7h" or "AsKd7h".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card list %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Strings converts cards to their string form for the wire.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// FromStrings is the inverse of Strings.
func FromStrings(ss []string) ([]Card, error) {
	cards := make([]Card, len(ss))
	for i, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}
