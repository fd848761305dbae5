package session

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/flynn/noise"
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
)

const (
	prologue     = "freezeout/1"
	proofContext = "freezeout-noise-static"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashBLAKE2b)

// Transport carries whole messages, e.g. binary websocket messages.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Role selects the side of the handshake.
type Role int

const (
	Initiator Role = iota // client
	Responder             // server
)

// Handshake runs Noise_XX_25519_ChaChaPoly_BLAKE2b over t and binds the
// resulting session to the peer's ed25519 identity.
//
//	-> e
//	<- e, ee, s, es   payload: responder identity proof
//	-> s, se          payload: initiator identity proof
//
// An identity proof is the msgpack array [ed25519 public key, signature]
// where the signature covers "freezeout-noise-static" followed by the
// sender's Noise static public key. The static key is generated per
// connection; the long-term identity is the ed25519 key.
//
// On any failure t is closed and the error wraps ErrHandshakeFailed.
// Cancelling ctx aborts the handshake by closing t.
func Handshake(ctx context.Context, t Transport, key *identity.SigningKey, role Role) (*Session, error) {
	stop := context.AfterFunc(ctx, func() { _ = t.Close() })
	defer stop()

	s, err := handshake(t, key, role)
	if err != nil {
		_ = t.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	return s, nil
}

func handshake(t Transport, key *identity.SigningKey, role Role) (*Session, error) {
	static, err := cipherSuite.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, err
	}
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     role == Initiator,
		Prologue:      []byte(prologue),
		StaticKeypair: static,
	})
	if err != nil {
		return nil, err
	}

	proof := makeProof(key, static.Public)

	var (
		peer       identity.VerifyingKey
		send, recv *noise.CipherState
	)
	switch role {
	case Initiator:
		if err := writeHandshake(t, hs, nil); err != nil {
			return nil, err
		}
		payload, _, _, err := readHandshake(t, hs)
		if err != nil {
			return nil, err
		}
		if peer, err = verifyProof(payload, hs.PeerStatic()); err != nil {
			return nil, err
		}
		msg, cs1, cs2, err := hs.WriteMessage(nil, proof)
		if err != nil {
			return nil, err
		}
		if err := t.WriteMessage(msg); err != nil {
			return nil, err
		}
		send, recv = cs1, cs2
	case Responder:
		if _, _, _, err := readHandshake(t, hs); err != nil {
			return nil, err
		}
		if err := writeHandshake(t, hs, proof); err != nil {
			return nil, err
		}
		payload, cs1, cs2, err := readHandshake(t, hs)
		if err != nil {
			return nil, err
		}
		if peer, err = verifyProof(payload, hs.PeerStatic()); err != nil {
			return nil, err
		}
		send, recv = cs2, cs1
	default:
		return nil, fmt.Errorf("unknown role %d", role)
	}

	if send == nil || recv == nil {
		return nil, fmt.Errorf("handshake incomplete")
	}
	return newSession(key, peer, send.Cipher(), recv.Cipher()), nil
}

func writeHandshake(t Transport, hs *noise.HandshakeState, payload []byte) error {
	msg, _, _, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return err
	}
	return t.WriteMessage(msg)
}

func readHandshake(t Transport, hs *noise.HandshakeState) ([]byte, *noise.CipherState, *noise.CipherState, error) {
	msg, err := t.ReadMessage()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(msg) > protocol.MaxFrameSize {
		return nil, nil, nil, protocol.ErrFrameTooLarge
	}
	return hs.ReadMessage(nil, msg)
}

func proofMessage(static []byte) []byte {
	return append([]byte(proofContext), static...)
}

func makeProof(key *identity.SigningKey, static []byte) []byte {
	b := msgp.AppendArrayHeader(nil, 2)
	b = msgp.AppendBytes(b, key.VerifyingKey().Bytes())
	b = msgp.AppendBytes(b, key.Sign(proofMessage(static)))
	return b
}

func verifyProof(proof, peerStatic []byte) (identity.VerifyingKey, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(proof)
	if err != nil || n != 2 {
		return identity.VerifyingKey{}, fmt.Errorf("malformed identity proof")
	}
	pub, b, err := msgp.ReadBytesZC(b)
	if err != nil {
		return identity.VerifyingKey{}, fmt.Errorf("malformed identity proof: %w", err)
	}
	sig, _, err := msgp.ReadBytesZC(b)
	if err != nil {
		return identity.VerifyingKey{}, fmt.Errorf("malformed identity proof: %w", err)
	}
	vk, err := identity.NewVerifyingKey(pub)
	if err != nil {
		return identity.VerifyingKey{}, err
	}
	if len(peerStatic) == 0 || !vk.Verify(proofMessage(peerStatic), sig) {
		return identity.VerifyingKey{}, fmt.Errorf("identity proof does not match peer static key")
	}
	return vk, nil
}
