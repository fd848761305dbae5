package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// MaxFrameSize bounds every websocket message, handshake messages included.
const MaxFrameSize = 16384

var ErrFrameTooLarge = errors.New("protocol: frame too large")

// Frame is the unit on the wire: a sequence number and the encrypted
// SignedPayload. It is encoded as the msgpack array [sequence, ciphertext].
type Frame struct {
	Sequence   uint64
	Ciphertext []byte
}

// MarshalMsg implements msgp.Marshaler
func (z Frame) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint64(b, z.Sequence)
	b = msgp.AppendBytes(b, z.Ciphertext)
	if len(b) > MaxFrameSize {
		return b, ErrFrameTooLarge
	}
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Frame) UnmarshalMsg(b []byte) ([]byte, error) {
	if len(b) > MaxFrameSize {
		return b, ErrFrameTooLarge
	}
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	if n != 2 {
		return b, msgp.ArrayError{Wanted: 2, Got: n}
	}
	if z.Sequence, b, err = msgp.ReadUint64Bytes(b); err != nil {
		return b, msgp.WrapError(err, "sequence")
	}
	if z.Ciphertext, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
		return b, msgp.WrapError(err, "ciphertext")
	}
	return b, nil
}

// SignedPayload is the plaintext of a frame: an encoded Message and the
// sender's signature over SigningBytes(sequence, payload).
type SignedPayload struct {
	Payload   []byte
	Signature []byte
}

// MarshalMsg implements msgp.Marshaler
func (z SignedPayload) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendBytes(b, z.Payload)
	b = msgp.AppendBytes(b, z.Signature)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *SignedPayload) UnmarshalMsg(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	if n != 2 {
		return b, msgp.ArrayError{Wanted: 2, Got: n}
	}
	if z.Payload, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
		return b, msgp.WrapError(err, "payload")
	}
	if z.Signature, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
		return b, msgp.WrapError(err, "signature")
	}
	return b, nil
}

// SigningBytes returns the bytes covered by a frame signature: the big
// endian sequence followed by the payload.
func SigningBytes(seq uint64, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint64(out, seq)
	return append(out, payload...)
}

// DecodeFrame parses a whole websocket message as a Frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	rest, err := f.UnmarshalMsg(data)
	if err != nil {
		return Frame{}, err
	}
	if len(rest) != 0 {
		return Frame{}, fmt.Errorf("protocol: %d trailing bytes after frame", len(rest))
	}
	return f, nil
}
