package session

import "errors"

var (
	// Transport errors: the connection is closed and the peer may retry on a new one.
	ErrHandshakeFailed = errors.New("session: handshake failed")
	ErrDecryptFailed   = errors.New("session: decrypt failed")

	// Protocol violations: the connection is dropped.
	ErrBadSignature     = errors.New("session: bad signature")
	ErrReplayedSequence = errors.New("session: replayed sequence")
	ErrMalformed        = errors.New("session: malformed frame")

	ErrSessionClosed = errors.New("session: closed")
)

// IsTransportError reports whether err is a handshake or decryption failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrHandshakeFailed) || errors.Is(err, ErrDecryptFailed)
}

// IsProtocolViolation reports whether err means the peer sent a frame it
// should not have: a bad signature, a replay or garbage.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrReplayedSequence) ||
		errors.Is(err, ErrMalformed)
}
