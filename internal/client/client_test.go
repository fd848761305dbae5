package client

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
	"github.com/lox/freezeout/internal/protocol"
	"github.com/lox/freezeout/internal/server"
)

func startServer(t *testing.T) (string, *identity.SigningKey) {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.Server.Tables = 1
	cfg.Server.Seats = 2
	cfg.Game.BuyIn = 1000
	cfg.Game.SmallBlind = 10
	cfg.Game.BigBlind = 20
	cfg.Game.InitialBalance = 5000
	require.NoError(t, cfg.Validate())

	store, err := ledger.Open(filepath.Join(t.TempDir(), ledger.DBFile))
	require.NoError(t, err)
	key, err := identity.Generate()
	require.NoError(t, err)

	s := server.NewServer(cfg, key, store, zerolog.Nop(), server.WithSeed(7))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Registry().Run(ctx) }()

	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		hs.CloseClientConnections()
		hs.Close()
		cancel()
		<-done
		_ = store.Close()
	})
	return hs.URL, key
}

func testKey(t *testing.T, seed byte) *identity.SigningKey {
	t.Helper()
	key, err := identity.FromSeed(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return key
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:9871", want: "ws://localhost:9871/ws"},
		{in: "http://localhost:9871", want: "ws://localhost:9871/ws"},
		{in: "https://poker.example.com", want: "wss://poker.example.com/ws"},
		{in: "ws://localhost:9871/custom", want: "ws://localhost:9871/custom"},
		{in: "wss://poker.example.com/", want: "wss://poker.example.com/ws"},
		{in: "ftp://poker.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialJoinsServer(t *testing.T) {
	t.Parallel()
	url, serverKey := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := testKey(t, 1)
	c, err := Dial(ctx, url, key, "alice", testLogger(), WithServerID(serverKey.PlayerID()))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, key.PlayerID(), c.PlayerID())
	assert.Equal(t, serverKey.PlayerID(), c.ServerID())
	assert.Equal(t, "alice", c.Account().Nickname)
	assert.Equal(t, int64(5000), c.Account().Chips)
}

func TestDialRejectsUnexpectedServer(t *testing.T) {
	t.Parallel()
	url, _ := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Dial(ctx, url, testKey(t, 1), "alice", testLogger(), WithServerID(testKey(t, 9).PlayerID()))
	assert.ErrorIs(t, err, ErrServerMismatch)
}

func TestSendAfterClose(t *testing.T) {
	t.Parallel()
	url, _ := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, url, testKey(t, 1), "alice", testLogger())
	require.NoError(t, err)
	c.Close()
	assert.ErrorIs(t, c.JoinTable(), ErrClosed)
}

// foldingPlayer joins a table, folds every request and leaves after the
// first hand it sees end.
func foldingPlayer(accounts chan<- int64) HandlerFunc {
	var handEnded bool
	return func(ctx context.Context, c *Client, msg protocol.Message) error {
		switch m := msg.(type) {
		case protocol.ActionRequest:
			if m.PlayerID != c.PlayerID() {
				return nil
			}
			return c.Act(protocol.ActionFold, 0)
		case protocol.EndHand:
			if !handEnded {
				handEnded = true
				return c.LeaveTable()
			}
		case protocol.ShowAccount:
			accounts <- m.Chips
			c.Close()
		}
		return nil
	}
}

func TestRunPlaysAHand(t *testing.T) {
	t.Parallel()
	url, _ := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accounts := make(chan int64, 2)
	errs := make(chan error, 2)
	for i := byte(1); i <= 2; i++ {
		c, err := Dial(ctx, url, testKey(t, i), "player", testLogger())
		require.NoError(t, err)
		require.NoError(t, c.JoinTable())
		go func() { errs <- c.Run(ctx, foldingPlayer(accounts)) }()
	}

	var total int64
	for range 2 {
		select {
		case chips := <-accounts:
			total += chips
		case <-ctx.Done():
			t.Fatal("timed out waiting for accounts")
		}
	}
	assert.Equal(t, int64(10000), total, "chips are conserved across the table")

	for range 2 {
		assert.NoError(t, <-errs)
	}
}
