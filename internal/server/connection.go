package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/freezeout/internal/game"
	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Time allowed for the Noise handshake and JoinServer
	handshakeTimeout = 10 * time.Second

	sendBufferSize = 256

	// Consecutive failed enqueues before a connection is considered dead
	maxSendFailures = 3

	maxNicknameLength = 24
)

// ErrProtocolViolation is returned when a peer sends a message it should
// not, e.g. anything but JoinServer first.
var ErrProtocolViolation = errors.New("server: protocol violation")

// Connection is one authenticated client. It implements Peer.
type Connection struct {
	ws       *session.WebSocket
	sess     *session.Session
	registry *Registry
	ledger   ledger.Ledger
	cfg      Config
	logger   zerolog.Logger

	player   identity.PlayerID
	nickname string

	send      chan protocol.Message
	failures  atomic.Int32
	dead      atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, s *Server) *Connection {
	return &Connection{
		ws:       session.NewWebSocket(conn, writeWait),
		registry: s.registry,
		ledger:   s.ledger,
		cfg:      s.cfg,
		logger:   s.logger.With().Str("component", "conn").Str("remote", conn.RemoteAddr().String()).Logger(),
		send:     make(chan protocol.Message, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Send queues msg without blocking. Three consecutive failures mark the
// connection dead and close it.
func (c *Connection) Send(msg protocol.Message) {
	if c.dead.Load() {
		return
	}
	select {
	case c.send <- msg:
		c.failures.Store(0)
		return
	case <-c.done:
	default:
	}
	if c.failures.Add(1) >= maxSendFailures {
		c.logger.Warn().Str("type", string(msg.Type())).Msg("Send buffer full, dropping connection")
		c.dead.Store(true)
		c.Close()
		return
	}
	c.logger.Debug().Str("type", string(msg.Type())).Msg("Send buffer full, message dropped")
}

// Dead reports whether the connection stopped accepting messages.
func (c *Connection) Dead() bool {
	return c.dead.Load()
}

// Close closes the websocket; the pumps exit on their own.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.dead.Store(true)
		close(c.done)
		if c.sess != nil {
			c.sess.Close()
		}
		_ = c.ws.Close()
	})
}

// serve runs the connection to completion: handshake, JoinServer, then the
// message loop. A disconnect leaves the table.
func (c *Connection) serve(ctx context.Context, key *identity.SigningKey) {
	defer c.Close()

	hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	sess, err := session.Handshake(hctx, c.ws, key, session.Responder)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Handshake failed")
		return
	}
	c.sess = sess
	c.player = sess.PeerID()
	c.logger = c.logger.With().Str("player", c.player.String()).Logger()

	if err := c.joinServer(hctx); err != nil {
		c.logger.Warn().Err(err).Msg("Join failed")
		return
	}
	cancel()

	go c.writePump()
	c.readPump(ctx)

	if err := c.registry.Leave(context.Background(), c.player, c); err != nil && !errors.Is(err, game.ErrNotSeated) {
		c.logger.Error().Err(err).Msg("Failed to leave table on disconnect")
	}
	c.logger.Info().Msg("Client disconnected")
}

// joinServer reads the mandatory first message and replies with the
// player's account.
func (c *Connection) joinServer(ctx context.Context) error {
	data, err := c.ws.ReadMessage()
	if err != nil {
		return err
	}
	msg, err := c.sess.Decode(data)
	if err != nil {
		return err
	}
	join, ok := msg.(protocol.JoinServer)
	if !ok {
		return ErrProtocolViolation
	}

	c.nickname = cleanNickname(join.Nickname, c.player)
	acct, err := c.ledger.Account(ctx, c.player, c.nickname, c.cfg.Game.InitialBalance)
	if err != nil {
		return err
	}
	c.logger.Info().Str("nickname", c.nickname).Int64("chips", acct.Chips).Msg("Client joined")
	c.Send(protocol.ServerJoined{PlayerID: c.player, Nickname: c.nickname, Chips: acct.Chips})
	return nil
}

func cleanNickname(s string, id identity.PlayerID) string {
	s = strings.TrimSpace(s)
	if s == "" || !utf8.ValidString(s) {
		return id.Short()
	}
	if r := []rune(s); len(r) > maxNicknameLength {
		s = string(r[:maxNicknameLength])
	}
	return s
}

// readPump handles incoming messages until the connection fails or the
// peer breaks the protocol.
func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()
	c.ws.KeepAlive(pongWait)

	for {
		data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}
		msg, err := c.sess.Decode(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Dropping connection")
			return
		}
		if err := c.handle(ctx, msg); err != nil {
			c.logger.Warn().Err(err).Str("type", string(msg.Type())).Msg("Dropping connection")
			return
		}
	}
}

// writePump encodes and writes queued messages. Encoding here keeps
// outbound sequence numbers in write order.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			frame, err := c.sess.Encode(msg)
			if err != nil {
				c.logger.Error().Err(err).Msg("Failed to encode message")
				return
			}
			if err := c.ws.WriteMessage(frame); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.ws.WritePing(); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.WriteClose()
			return
		}
	}
}

// handle processes one client message. Only a protocol violation is
// returned; everything else is answered on the connection.
func (c *Connection) handle(ctx context.Context, msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.JoinTable:
		_, err := c.registry.Join(ctx, c.player, c.nickname, c)
		switch {
		case err == nil:
		case errors.Is(err, game.ErrAlreadySeated):
			c.Send(protocol.PlayerAlreadyJoined{})
		case errors.Is(err, ledger.ErrInsufficientChips):
			c.Send(protocol.NotEnoughChips{})
		case errors.Is(err, ErrNoTableAvailable):
			c.Send(protocol.NoTablesLeft{})
		default:
			c.logger.Error().Err(err).Msg("Join table failed")
			c.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: "join failed"})
		}

	case protocol.LeaveTable:
		if err := c.registry.Leave(ctx, c.player, c); err != nil {
			c.sendError(err)
		}

	case protocol.ActionResponse:
		action, err := game.ParseAction(string(m.Action))
		if err != nil {
			c.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: err.Error()})
			return nil
		}
		if err := c.registry.Act(ctx, c.player, action, m.Amount); err != nil {
			c.sendError(err)
		}

	case protocol.JoinServer:
		c.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: "already joined"})

	default:
		return ErrProtocolViolation
	}
	return nil
}

func (c *Connection) sendError(err error) {
	var re *game.RuleError
	switch {
	case errors.As(err, &re):
		c.Send(protocol.Error{Code: protocol.CodeGameRule, Message: re.Error()})
	case errors.Is(err, game.ErrNotSeated):
		c.Send(protocol.Error{Code: protocol.CodeNotInTable, Message: "not seated at a table"})
	default:
		c.logger.Error().Err(err).Msg("Request failed")
		c.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: err.Error()})
	}
}
