// Package handid generates identifiers for hands and sessions.
package handid

import (
	"encoding/base32"
	"fmt"

	"github.com/google/uuid"
)

// Crockford base32, lower case, as used by TypeID.
var encoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// New returns a time ordered id: a UUIDv7 encoded as 26 base32 characters.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Encode(id)
}

// Encode formats a UUID in the 26 character form.
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Parse decodes an id produced by New.
func Parse(s string) (uuid.UUID, error) {
	if len(s) != 26 {
		return uuid.Nil, fmt.Errorf("handid: must be 26 characters, got %d", len(s))
	}
	b, err := encoding.DecodeString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("handid: %w", err)
	}
	return uuid.FromBytes(b)
}
