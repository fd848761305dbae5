package ledger

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/freezeout/internal/identity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), DBFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func pid(b byte) identity.PlayerID {
	var id identity.PlayerID
	copy(id[:], bytes.Repeat([]byte{b}, identity.PlayerIDSize))
	return id
}

func TestAccountCreateAndRename(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	acct, err := s.Account(ctx, pid(1), "alice", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Chips)
	assert.Equal(t, "alice", acct.Nickname)
	assert.False(t, acct.Created.IsZero())

	// Existing accounts keep their balance.
	require.NoError(t, s.Debit(ctx, pid(1), 300))
	acct, err = s.Account(ctx, pid(1), "alice2", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(700), acct.Chips)
	assert.Equal(t, "alice2", acct.Nickname)

	accts, err := s.Accounts()
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "alice2", accts[0].Nickname)
}

func TestDebitCredit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Account(ctx, pid(1), "alice", 500)
	require.NoError(t, err)

	require.NoError(t, s.Debit(ctx, pid(1), 500))
	err = s.Debit(ctx, pid(1), 1)
	assert.ErrorIs(t, err, ErrInsufficientChips)

	bal, err := s.Balance(ctx, pid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)

	require.NoError(t, s.Credit(ctx, pid(1), 250))
	bal, err = s.Balance(ctx, pid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(250), bal)

	assert.ErrorIs(t, s.Credit(ctx, pid(1), 0), ErrInvalidAmount)
	assert.ErrorIs(t, s.Debit(ctx, pid(2), 10), ErrUnknownPlayer)
	_, err = s.Balance(ctx, pid(2))
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestCommitHand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CommitHand(ctx, 3, map[identity.PlayerID]int64{pid(1): 20, pid(2): -10, pid(3): -10}))
	require.NoError(t, s.CommitHand(ctx, 3, map[identity.PlayerID]int64{pid(1): -5, pid(2): 5}))

	rec, err := s.TableRecord(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Hands)
	assert.Equal(t, int64(15), rec.Net[pid(1)])
	assert.Equal(t, int64(-5), rec.Net[pid(2)])
	assert.Equal(t, int64(-10), rec.Net[pid(3)])

	// An unbalanced hand is rejected as a whole.
	err = s.CommitHand(ctx, 3, map[identity.PlayerID]int64{pid(1): 100, pid(2): -10})
	assert.ErrorIs(t, err, ErrUnbalancedHand)

	rec, err = s.TableRecord(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Hands)
	assert.Equal(t, int64(15), rec.Net[pid(1)])

	empty, err := s.TableRecord(9)
	require.NoError(t, err)
	assert.Zero(t, empty.Hands)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Account(ctx, pid(1), "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Account(ctx, pid(1), "alice", 1000)
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Debit(ctx, pid(1), 300) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	bal, err := s.Balance(ctx, pid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
}

func TestReopenKeepsBalances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DBFile)

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Account(ctx, pid(1), "alice", 42)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	bal, err := s.Balance(ctx, pid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal)
}
