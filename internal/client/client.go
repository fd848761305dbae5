// Package client connects to a freezeout server: it dials the websocket,
// runs the Noise handshake, joins the server and then exchanges typed
// protocol messages.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

var (
	ErrClosed         = errors.New("client: closed")
	ErrSendBufferFull = errors.New("client: send buffer full")
	// ErrServerMismatch means the server proved an identity other than the
	// one the client was told to expect.
	ErrServerMismatch = errors.New("client: unexpected server identity")
	ErrUnexpectedJoin = errors.New("client: server did not confirm join")
)

// Handler is called for every message from the server, on the client's
// read goroutine. Returning an error stops Run.
type Handler interface {
	HandleMessage(ctx context.Context, c *Client, msg protocol.Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c *Client, msg protocol.Message) error

func (f HandlerFunc) HandleMessage(ctx context.Context, c *Client, msg protocol.Message) error {
	return f(ctx, c, msg)
}

// Client is a connected, joined player.
type Client struct {
	ws      *session.WebSocket
	sess    *session.Session
	logger  *log.Logger
	account protocol.ServerJoined

	send      chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once
}

type options struct {
	server   *identity.PlayerID
	insecure bool
}

// Option configures Dial.
type Option func(*options)

// WithServerID pins the server identity; the handshake fails with
// ErrServerMismatch for any other server.
func WithServerID(id identity.PlayerID) Option {
	return func(o *options) { o.server = &id }
}

// WithInsecureTLS skips TLS certificate verification for wss URLs. The
// Noise handshake still authenticates the server.
func WithInsecureTLS() Option {
	return func(o *options) { o.insecure = true }
}

// NormalizeURL turns host:port, http and https URLs into a websocket URL
// ending in /ws.
func NormalizeURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("ws://" + serverURL)
		if err != nil {
			return "", fmt.Errorf("invalid server URL: %w", err)
		}
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Dial connects, authenticates both sides and sends JoinServer. It returns
// once the server has confirmed the account.
func Dial(ctx context.Context, serverURL string, key *identity.SigningKey, nickname string, logger *log.Logger, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	wsURL, err := NormalizeURL(serverURL)
	if err != nil {
		return nil, err
	}
	logger = logger.WithPrefix("client")
	logger.Debug("Connecting to server", "url", wsURL)

	dialer := *websocket.DefaultDialer
	if o.insecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	ws := session.NewWebSocket(conn, writeWait)

	sess, err := session.Handshake(ctx, ws, key, session.Initiator)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	if o.server != nil && sess.PeerID() != *o.server {
		_ = ws.Close()
		return nil, fmt.Errorf("%w: got %s, want %s", ErrServerMismatch, sess.PeerID(), *o.server)
	}

	c := &Client{
		ws:     ws,
		sess:   sess,
		logger: logger,
		send:   make(chan protocol.Message, sendBufferSize),
		done:   make(chan struct{}),
	}
	if err := c.join(ctx, nickname); err != nil {
		c.Close()
		return nil, err
	}
	logger.Info("Connected to server", "server", sess.PeerID().Short(), "nickname", c.account.Nickname, "chips", c.account.Chips)
	return c, nil
}

func (c *Client) join(ctx context.Context, nickname string) error {
	stop := context.AfterFunc(ctx, func() { _ = c.ws.Close() })
	defer stop()

	frame, err := c.sess.Encode(protocol.JoinServer{Nickname: nickname})
	if err != nil {
		return err
	}
	if err := c.ws.WriteMessage(frame); err != nil {
		return err
	}
	c.ws.KeepAlive(pongWait)
	data, err := c.ws.ReadMessage()
	if err != nil {
		return err
	}
	msg, err := c.sess.Decode(data)
	if err != nil {
		return err
	}
	joined, ok := msg.(protocol.ServerJoined)
	if !ok {
		return fmt.Errorf("%w: got %s", ErrUnexpectedJoin, msg.Type())
	}
	c.account = joined
	return nil
}

// Account is the ServerJoined reply: the player's id, nickname and balance.
func (c *Client) Account() protocol.ServerJoined { return c.account }

// PlayerID is the identity this client proved.
func (c *Client) PlayerID() identity.PlayerID { return c.account.PlayerID }

// ServerID is the identity the server proved.
func (c *Client) ServerID() identity.PlayerID { return c.sess.PeerID() }

// Send queues msg for the write pump without blocking.
func (c *Client) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) JoinTable() error  { return c.Send(protocol.JoinTable{}) }
func (c *Client) LeaveTable() error { return c.Send(protocol.LeaveTable{}) }

// Act answers an ActionRequest. Amount is the total bet for bet and raise.
func (c *Client) Act(action protocol.PlayerAction, amount int64) error {
	return c.Send(protocol.ActionResponse{Action: action, Amount: amount})
}

// Close closes the connection. Run returns shortly after.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.sess.Close()
		_ = c.ws.Close()
	})
}

// Run pumps messages until ctx is cancelled, the connection fails or h
// returns an error. A cancelled ctx is not an error.
func (c *Client) Run(ctx context.Context, h Handler) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.writePump(gctx) })
	g.Go(func() error { return c.readPump(gctx, h) })
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-c.done:
		}
		c.Close()
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) readPump(ctx context.Context, h Handler) error {
	c.ws.KeepAlive(pongWait)
	for {
		data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		msg, err := c.sess.Decode(data)
		if err != nil {
			return err
		}
		c.logger.Debug("Received message", "type", msg.Type())
		if err := h.HandleMessage(ctx, c, msg); err != nil {
			return err
		}
	}
}

// writePump encodes at write time so sequence numbers follow write order.
func (c *Client) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			frame, err := c.sess.Encode(msg)
			if err != nil {
				return err
			}
			if err := c.ws.WriteMessage(frame); err != nil {
				return fmt.Errorf("write: %w", err)
			}

		case <-ticker.C:
			if err := c.ws.WritePing(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-c.done:
			return nil

		case <-ctx.Done():
			_ = c.ws.WriteClose()
			return nil
		}
	}
}
