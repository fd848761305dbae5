// Package session turns an untrusted message transport into a stream of
// authenticated, ordered and decrypted protocol messages.
//
// Every frame carries a sequence number that doubles as the AEAD nonce and is
// covered, together with the payload, by the sender's ed25519 signature.
// Inbound sequences must strictly increase, so a replayed frame is rejected
// even though it still decrypts and verifies.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/flynn/noise"

	"github.com/lox/freezeout/internal/handid"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
)

// Session is one authenticated connection. Encode is safe for concurrent
// use; Decode is meant to be called from a single reader.
type Session struct {
	id     string
	local  *identity.SigningKey
	peer   identity.VerifyingKey
	peerID identity.PlayerID
	closed atomic.Bool

	sendMu  sync.Mutex
	send    noise.Cipher
	sendSeq uint64

	recvMu  sync.Mutex
	recv    noise.Cipher
	lastSeq uint64
}

func newSession(local *identity.SigningKey, peer identity.VerifyingKey, send, recv noise.Cipher) *Session {
	return &Session{
		id:     handid.New(),
		local:  local,
		peer:   peer,
		peerID: peer.PlayerID(),
		send:   send,
		recv:   recv,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// PeerID is the identity the peer proved during the handshake.
func (s *Session) PeerID() identity.PlayerID { return s.peerID }

// PeerKey is the peer's verifying key.
func (s *Session) PeerKey() identity.VerifyingKey { return s.peer }

// LastAccepted returns the sequence of the last frame Decode accepted.
func (s *Session) LastAccepted() uint64 {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	return s.lastSeq
}

// Close marks the session closed. It does not close the transport.
func (s *Session) Close() {
	s.closed.Store(true)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Encode assigns the next outbound sequence to msg, signs and encrypts it
// and returns the frame bytes to write to the transport.
func (s *Session) Encode(msg protocol.Message) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	payload, err := protocol.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("session: encode %s: %w", msg.Type(), err)
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	seq := s.sendSeq + 1
	signed, err := protocol.SignedPayload{
		Payload:   payload,
		Signature: s.local.Sign(protocol.SigningBytes(seq, payload)),
	}.MarshalMsg(nil)
	if err != nil {
		return nil, fmt.Errorf("session: encode %s: %w", msg.Type(), err)
	}

	frame, err := protocol.Frame{
		Sequence:   seq,
		Ciphertext: s.send.Encrypt(nil, seq, nil, signed),
	}.MarshalMsg(nil)
	if err != nil {
		return nil, fmt.Errorf("session: encode %s: %w", msg.Type(), err)
	}
	s.sendSeq = seq
	return frame, nil
}

// Decode decrypts and authenticates one inbound frame. Any error is fatal to
// the connection: ErrMalformed, ErrDecryptFailed, ErrBadSignature or
// ErrReplayedSequence.
func (s *Session) Decode(data []byte) (protocol.Message, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	s.recvMu.Lock()
	defer s.recvMu.Unlock()

	plain, err := s.recv.Decrypt(nil, frame.Sequence, nil, frame.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: sequence %d", ErrDecryptFailed, frame.Sequence)
	}

	var signed protocol.SignedPayload
	rest, err := signed.UnmarshalMsg(plain)
	if err != nil || len(rest) != 0 {
		return nil, fmt.Errorf("%w: signed payload", ErrMalformed)
	}
	if !s.peer.Verify(protocol.SigningBytes(frame.Sequence, signed.Payload), signed.Signature) {
		return nil, fmt.Errorf("%w: sequence %d", ErrBadSignature, frame.Sequence)
	}
	if frame.Sequence <= s.lastSeq {
		return nil, fmt.Errorf("%w: %d <= %d", ErrReplayedSequence, frame.Sequence, s.lastSeq)
	}

	msg, err := protocol.Unmarshal(signed.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s.lastSeq = frame.Sequence
	return msg, nil
}
