// Package identity defines player identities: ed25519 signing keys, the
// player id derived from the public key and mnemonic backed persistence of
// long-term keys.
package identity

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/cosmos/btcutil/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

// PlayerIDSize is the size of a player id in bytes.
const PlayerIDSize = 20

var (
	ErrInvalidPlayerID  = errors.New("identity: invalid player id")
	ErrInvalidPublicKey = errors.New("identity: invalid public key")
	ErrInvalidPhrase    = errors.New("identity: invalid mnemonic phrase")
)

// PlayerID is the BLAKE2b-160 digest of a player's public key.
type PlayerID [PlayerIDSize]byte

// String returns the base58 form of the id.
func (id PlayerID) String() string {
	return base58.Encode(id[:])
}

// Short returns an abbreviated id for logs and displays.
func (id PlayerID) Short() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsZero reports whether id is the zero value.
func (id PlayerID) IsZero() bool {
	return id == PlayerID{}
}

// ParsePlayerID parses the base58 form returned by String.
func ParsePlayerID(s string) (PlayerID, error) {
	var id PlayerID
	b := base58.Decode(s)
	if len(b) != PlayerIDSize {
		return id, fmt.Errorf("%w: %q", ErrInvalidPlayerID, s)
	}
	copy(id[:], b)
	return id, nil
}

// PlayerIDFromBytes copies a raw 20 byte id.
func PlayerIDFromBytes(b []byte) (PlayerID, error) {
	var id PlayerID
	if len(b) != PlayerIDSize {
		return id, fmt.Errorf("%w: %d bytes", ErrInvalidPlayerID, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// VerifyingKey is the public half of a player's identity.
type VerifyingKey struct {
	key ed25519.PublicKey
}

// NewVerifyingKey wraps a 32 byte ed25519 public key.
func NewVerifyingKey(b []byte) (VerifyingKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return VerifyingKey{}, fmt.Errorf("%w: %d bytes", ErrInvalidPublicKey, len(b))
	}
	return VerifyingKey{key: bytes.Clone(b)}, nil
}

// Bytes returns the raw public key.
func (k VerifyingKey) Bytes() []byte {
	return bytes.Clone(k.key)
}

// Verify checks sig over msg.
func (k VerifyingKey) Verify(msg, sig []byte) bool {
	if len(k.key) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(k.key, msg, sig)
}

// PlayerID derives the player id from the key.
func (k VerifyingKey) PlayerID() PlayerID {
	h, _ := blake2b.New(PlayerIDSize, nil)
	h.Write(k.key)
	var id PlayerID
	copy(id[:], h.Sum(nil))
	return id
}

// SigningKey is a player's or the server's long-term private key. The key
// seed is the entropy of a 24 word BIP39 phrase so that it can be written
// down and restored.
type SigningKey struct {
	seed []byte
	priv ed25519.PrivateKey
}

// Generate creates a new random signing key.
func Generate() (*SigningKey, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, fmt.Errorf("identity: generate entropy: %w", err)
	}
	return fromSeed(entropy), nil
}

// FromSeed creates a signing key from a 32 byte seed. Mostly useful in tests.
func FromSeed(seed []byte) (*SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity: seed must be %d bytes", ed25519.SeedSize)
	}
	return fromSeed(seed), nil
}

// FromPhrase restores a signing key from its mnemonic phrase.
func FromPhrase(phrase string) (*SigningKey, error) {
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	if len(entropy) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected 24 words", ErrInvalidPhrase)
	}
	return fromSeed(entropy), nil
}

func fromSeed(seed []byte) *SigningKey {
	return &SigningKey{
		seed: bytes.Clone(seed),
		priv: ed25519.NewKeyFromSeed(seed),
	}
}

// Phrase returns the mnemonic phrase for the key.
func (k *SigningKey) Phrase() string {
	phrase, err := bip39.NewMnemonic(k.seed)
	if err != nil {
		// The seed is always 32 bytes, which is valid entropy.
		panic(err)
	}
	return phrase
}

// Sign signs msg.
func (k *SigningKey) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// VerifyingKey returns the public half of the key.
func (k *SigningKey) VerifyingKey() VerifyingKey {
	return VerifyingKey{key: k.priv.Public().(ed25519.PublicKey)}
}

// PlayerID returns the player id of the key.
func (k *SigningKey) PlayerID() PlayerID {
	return k.VerifyingKey().PlayerID()
}

