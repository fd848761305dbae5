package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/session"
)

// wsPair returns the server end of a live websocket connection.
func wsPair(t *testing.T) *websocket.Conn {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(hs.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-conns:
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upgrade")
		return nil
	}
}

func TestSendMarksStalledConnectionDead(t *testing.T) {
	t.Parallel()

	c := &Connection{
		ws:     session.NewWebSocket(wsPair(t), time.Second),
		logger: zerolog.Nop(),
		send:   make(chan protocol.Message, 1),
		done:   make(chan struct{}),
	}

	// Nothing drains the buffer, so only the first message fits.
	c.Send(protocol.LeaveTable{})
	assert.False(t, c.Dead())

	for i := 1; i < maxSendFailures; i++ {
		c.Send(protocol.LeaveTable{})
		assert.False(t, c.Dead(), "failure %d", i)
	}
	c.Send(protocol.LeaveTable{})
	assert.True(t, c.Dead())

	select {
	case <-c.done:
	default:
		t.Fatal("connection was not closed")
	}

	// Later sends are dropped without blocking.
	c.Send(protocol.LeaveTable{})
	assert.Len(t, c.send, 1)
}

func TestSendSuccessResetsFailures(t *testing.T) {
	t.Parallel()

	c := &Connection{
		ws:     session.NewWebSocket(wsPair(t), time.Second),
		logger: zerolog.Nop(),
		send:   make(chan protocol.Message, 1),
		done:   make(chan struct{}),
	}

	c.Send(protocol.LeaveTable{})
	for range maxSendFailures - 1 {
		c.Send(protocol.LeaveTable{})
	}
	<-c.send
	c.Send(protocol.LeaveTable{})
	for range maxSendFailures - 1 {
		c.Send(protocol.LeaveTable{})
	}
	assert.False(t, c.Dead())
}
