package session

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/freezeout/internal/protocol"
)

// ErrTextMessage is returned for a text websocket message; the protocol is
// binary only.
var ErrTextMessage = errors.New("session: unexpected text message")

// WebSocket adapts a websocket connection to a Transport using binary
// messages. Writes are bounded by writeWait. The usual gorilla rule holds:
// one concurrent reader and one concurrent writer.
type WebSocket struct {
	conn      *websocket.Conn
	writeWait time.Duration
}

// NewWebSocket limits inbound messages to protocol.MaxFrameSize.
func NewWebSocket(conn *websocket.Conn, writeWait time.Duration) *WebSocket {
	conn.SetReadLimit(protocol.MaxFrameSize)
	return &WebSocket{conn: conn, writeWait: writeWait}
}

func (w *WebSocket) ReadMessage() ([]byte, error) {
	typ, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if typ != websocket.BinaryMessage {
		return nil, ErrTextMessage
	}
	return data, nil
}

func (w *WebSocket) WriteMessage(data []byte) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

// WritePing sends a websocket ping from the writer goroutine.
func (w *WebSocket) WritePing() error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose sends a normal closure frame.
func (w *WebSocket) WriteClose() error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// KeepAlive extends the read deadline by pongWait now and on every pong.
func (w *WebSocket) KeepAlive(pongWait time.Duration) {
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (w *WebSocket) Close() error {
	return w.conn.Close()
}
