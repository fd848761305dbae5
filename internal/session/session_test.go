package session

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
)

// pipeConn is one end of an in-memory message transport.
type pipeConn struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

func newPipe() (*pipeConn, *pipeConn) {
	a2b := make(chan []byte, 8)
	b2a := make(chan []byte, 8)
	done := make(chan struct{})
	once := &sync.Once{}
	return &pipeConn{in: b2a, out: a2b, done: done, once: once},
		&pipeConn{in: a2b, out: b2a, done: done, once: once}
}

func (p *pipeConn) ReadMessage() ([]byte, error) {
	select {
	case m := <-p.in:
		return m, nil
	case <-p.done:
		return nil, io.EOF
	}
}

func (p *pipeConn) WriteMessage(b []byte) error {
	select {
	case <-p.done:
		return io.ErrClosedPipe
	default:
	}
	select {
	case p.out <- bytes.Clone(b):
		return nil
	case <-p.done:
		return io.ErrClosedPipe
	}
}

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func testKey(t *testing.T, b byte) *identity.SigningKey {
	t.Helper()
	key, err := identity.FromSeed(bytes.Repeat([]byte{b}, 32))
	require.NoError(t, err)
	return key
}

// connect runs both sides of a handshake and returns the client and server sessions.
func connect(t *testing.T, clientKey, serverKey *identity.SigningKey) (*Session, *Session) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ct, st := newPipe()

	var (
		server    *Session
		serverErr error
		wg        sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		server, serverErr = Handshake(ctx, st, serverKey, Responder)
	}()

	client, err := Handshake(ctx, ct, clientKey, Initiator)
	wg.Wait()
	require.NoError(t, err)
	require.NoError(t, serverErr)
	return client, server
}

func TestHandshakeBindsIdentities(t *testing.T) {
	t.Parallel()

	clientKey, serverKey := testKey(t, 1), testKey(t, 2)
	client, server := connect(t, clientKey, serverKey)

	assert.Equal(t, serverKey.PlayerID(), client.PeerID())
	assert.Equal(t, clientKey.PlayerID(), server.PeerID())
	assert.NotEqual(t, client.ID(), server.ID())
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	for i := 1; i <= 3; i++ {
		frame, err := client.Encode(protocol.ActionResponse{Action: protocol.ActionRaise, Amount: int64(i * 100)})
		require.NoError(t, err)

		msg, err := server.Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, protocol.ActionResponse{Action: protocol.ActionRaise, Amount: int64(i * 100)}, msg)
		assert.Equal(t, uint64(i), server.LastAccepted())
	}

	// And the other direction, with independent sequences.
	frame, err := server.Encode(protocol.ShowAccount{Chips: 5})
	require.NoError(t, err)
	msg, err := client.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, protocol.ShowAccount{Chips: 5}, msg)
	assert.Equal(t, uint64(1), client.LastAccepted())
}

func TestReplayRejected(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	f1, err := client.Encode(protocol.JoinTable{})
	require.NoError(t, err)
	f2, err := client.Encode(protocol.LeaveTable{})
	require.NoError(t, err)

	_, err = server.Decode(f1)
	require.NoError(t, err)

	// Same frame again.
	_, err = server.Decode(f1)
	assert.ErrorIs(t, err, ErrReplayedSequence)
	assert.True(t, IsProtocolViolation(err))

	// A later frame is still accepted, then an earlier one is not.
	_, err = server.Decode(f2)
	require.NoError(t, err)
	_, err = server.Decode(f1)
	assert.ErrorIs(t, err, ErrReplayedSequence)
	assert.Equal(t, uint64(2), server.LastAccepted())
}

func TestSkippedSequencesAreAccepted(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	_, err := client.Encode(protocol.JoinTable{})
	require.NoError(t, err)
	f2, err := client.Encode(protocol.LeaveTable{})
	require.NoError(t, err)

	// Frame 1 was lost; sequences only need to increase.
	msg, err := server.Decode(f2)
	require.NoError(t, err)
	assert.Equal(t, protocol.LeaveTable{}, msg)
}

func TestDecodeTampered(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	data, err := client.Encode(protocol.JoinServer{Nickname: "alice"})
	require.NoError(t, err)

	frame, err := protocol.DecodeFrame(data)
	require.NoError(t, err)
	frame.Ciphertext[0] ^= 0xff
	tampered, err := frame.MarshalMsg(nil)
	require.NoError(t, err)

	_, err = server.Decode(tampered)
	assert.ErrorIs(t, err, ErrDecryptFailed)
	assert.True(t, IsTransportError(err))

	// Moving a frame to another sequence breaks the nonce.
	frame, err = protocol.DecodeFrame(data)
	require.NoError(t, err)
	frame.Sequence = 7
	moved, err := frame.MarshalMsg(nil)
	require.NoError(t, err)
	_, err = server.Decode(moved)
	assert.ErrorIs(t, err, ErrDecryptFailed)

	assert.Equal(t, uint64(0), server.LastAccepted())
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	_, server := connect(t, testKey(t, 1), testKey(t, 2))

	_, err := server.Decode([]byte("not msgpack"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = server.Decode(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeBadSignature(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	// Same transport keys, different signing identity.
	forged := newSession(testKey(t, 3), client.peer, client.send, client.recv)
	data, err := forged.Encode(protocol.ActionResponse{Action: protocol.ActionFold})
	require.NoError(t, err)

	_, err = server.Decode(data)
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.True(t, IsProtocolViolation(err))
}

func TestClosedSession(t *testing.T) {
	t.Parallel()

	client, server := connect(t, testKey(t, 1), testKey(t, 2))

	frame, err := client.Encode(protocol.JoinTable{})
	require.NoError(t, err)

	client.Close()
	assert.True(t, client.Closed())
	_, err = client.Encode(protocol.JoinTable{})
	assert.ErrorIs(t, err, ErrSessionClosed)

	server.Close()
	_, err = server.Decode(frame)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestHandshakeFailsOnGarbage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	peer, st := newPipe()
	require.NoError(t, peer.WriteMessage([]byte("hello, not noise")))

	_, err := Handshake(ctx, st, testKey(t, 2), Responder)
	assert.ErrorIs(t, err, ErrHandshakeFailed)
	assert.True(t, IsTransportError(err))

	// The transport was closed.
	_, err = peer.ReadMessage()
	assert.Error(t, err)
}

func TestHandshakeCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	_, st := newPipe()

	errCh := make(chan error, 1)
	go func() {
		_, err := Handshake(ctx, st, testKey(t, 2), Responder)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrHandshakeFailed)
	case <-time.After(5 * time.Second):
		t.Fatal("handshake did not stop after cancel")
	}
}

func TestVerifyProof(t *testing.T) {
	t.Parallel()

	key := testKey(t, 4)
	static := bytes.Repeat([]byte{9}, 32)
	proof := makeProof(key, static)

	vk, err := verifyProof(proof, static)
	require.NoError(t, err)
	assert.Equal(t, key.PlayerID(), vk.PlayerID())

	_, err = verifyProof(proof, bytes.Repeat([]byte{8}, 32))
	assert.Error(t, err)

	_, err = verifyProof([]byte{0x01}, static)
	assert.Error(t, err)
}
