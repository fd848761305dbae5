package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/tinylib/msgp/msgp"
	bolt "go.etcd.io/bbolt"

	"github.com/lox/freezeout/internal/identity"
)

// DBFile is the ledger file name inside the data path.
const DBFile = "game.db"

var (
	playersBucket = []byte("players")
	tablesBucket  = []byte("tables")
	handsKey      = []byte("hands")
	netBucket     = []byte("net")
)

// Store is a Ledger backed by a bbolt database.
type Store struct {
	db  *bolt.DB
	now func() time.Time

	mu    sync.Mutex
	locks map[identity.PlayerID]*sync.Mutex
}

var _ Ledger = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{playersBucket, tablesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: init %s: %w", path, err)
	}
	return &Store{
		db:    db,
		now:   time.Now,
		locks: make(map[identity.PlayerID]*sync.Mutex),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// lock serializes operations on the given players. Locks are taken in id
// order so that two multi-player operations cannot deadlock.
func (s *Store) lock(ids ...identity.PlayerID) func() {
	ids = slices.Clone(ids)
	slices.SortFunc(ids, func(a, b identity.PlayerID) int { return bytes.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	s.mu.Lock()
	held := make([]*sync.Mutex, len(ids))
	for i, id := range ids {
		m, ok := s.locks[id]
		if !ok {
			m = &sync.Mutex{}
			s.locks[id] = m
		}
		held[i] = m
	}
	s.mu.Unlock()

	for _, m := range held {
		m.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Account implements Ledger.
func (s *Store) Account(ctx context.Context, id identity.PlayerID, nickname string, initial int64) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	defer s.lock(id)()

	var acct Account
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(playersBucket)
		now := s.now()
		existing, err := getAccount(b, id)
		switch {
		case err == nil:
			acct = existing
			if acct.Nickname == nickname {
				return nil
			}
			acct.Nickname = nickname
		case errors.Is(err, ErrUnknownPlayer):
			acct = Account{PlayerID: id, Nickname: nickname, Chips: initial, Created: now}
		default:
			return err
		}
		acct.Updated = now
		return putAccount(b, acct)
	})
	if err != nil {
		return Account{}, fmt.Errorf("ledger: account %s: %w", id.Short(), err)
	}
	return acct, nil
}

// Balance implements Ledger.
func (s *Store) Balance(ctx context.Context, id identity.PlayerID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer s.lock(id)()

	var chips int64
	err := s.db.View(func(tx *bolt.Tx) error {
		acct, err := getAccount(tx.Bucket(playersBucket), id)
		chips = acct.Chips
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("ledger: balance %s: %w", id.Short(), err)
	}
	return chips, nil
}

// Debit implements Ledger.
func (s *Store) Debit(ctx context.Context, id identity.PlayerID, amount int64) error {
	return s.adjust(ctx, id, -amount, amount)
}

// Credit implements Ledger.
func (s *Store) Credit(ctx context.Context, id identity.PlayerID, amount int64) error {
	return s.adjust(ctx, id, amount, amount)
}

func (s *Store) adjust(ctx context.Context, id identity.PlayerID, delta, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock(id)()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(playersBucket)
		acct, err := getAccount(b, id)
		if err != nil {
			return err
		}
		if acct.Chips+delta < 0 {
			return ErrInsufficientChips
		}
		acct.Chips += delta
		acct.Updated = s.now()
		return putAccount(b, acct)
	})
	if err != nil {
		return fmt.Errorf("ledger: adjust %s by %d: %w", id.Short(), delta, err)
	}
	return nil
}

// CommitHand implements Ledger.
func (s *Store) CommitHand(ctx context.Context, tableID int, deltas map[identity.PlayerID]int64) error {
	var sum int64
	ids := make([]identity.PlayerID, 0, len(deltas))
	for id, d := range deltas {
		sum += d
		ids = append(ids, id)
	}
	if sum != 0 {
		return fmt.Errorf("%w: table %d sum %d", ErrUnbalancedHand, tableID, sum)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock(ids...)()

	err := s.db.Update(func(tx *bolt.Tx) error {
		tb, err := tx.Bucket(tablesBucket).CreateBucketIfNotExists(tableKey(tableID))
		if err != nil {
			return err
		}
		if err := tb.Put(handsKey, encodeInt(decodeInt(tb.Get(handsKey))+1)); err != nil {
			return err
		}
		net, err := tb.CreateBucketIfNotExists(netBucket)
		if err != nil {
			return err
		}
		for id, d := range deltas {
			if err := net.Put(id[:], encodeInt(decodeInt(net.Get(id[:]))+d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger: commit hand for table %d: %w", tableID, err)
	}
	return nil
}

// TableRecord returns the hands committed for a table and each player's net
// result there.
func (s *Store) TableRecord(tableID int) (TableRecord, error) {
	rec := TableRecord{Net: make(map[identity.PlayerID]int64)}
	err := s.db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(tablesBucket).Bucket(tableKey(tableID))
		if tb == nil {
			return nil
		}
		rec.Hands = decodeInt(tb.Get(handsKey))
		net := tb.Bucket(netBucket)
		if net == nil {
			return nil
		}
		return net.ForEach(func(k, v []byte) error {
			id, err := identity.PlayerIDFromBytes(k)
			if err != nil {
				return err
			}
			rec.Net[id] = decodeInt(v)
			return nil
		})
	})
	return rec, err
}

// Accounts lists every account, for tools.
func (s *Store) Accounts() ([]Account, error) {
	var out []Account
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(playersBucket).ForEach(func(k, v []byte) error {
			id, err := identity.PlayerIDFromBytes(k)
			if err != nil {
				return err
			}
			acct, err := decodeAccount(id, v)
			if err != nil {
				return err
			}
			out = append(out, acct)
			return nil
		})
	})
	return out, err
}

func tableKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func encodeInt(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

func decodeInt(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func getAccount(b *bolt.Bucket, id identity.PlayerID) (Account, error) {
	v := b.Get(id[:])
	if v == nil {
		return Account{}, ErrUnknownPlayer
	}
	return decodeAccount(id, v)
}

func putAccount(b *bolt.Bucket, acct Account) error {
	v := msgp.AppendMapHeader(nil, 4)
	v = msgp.AppendString(v, "nickname")
	v = msgp.AppendString(v, acct.Nickname)
	v = msgp.AppendString(v, "chips")
	v = msgp.AppendInt64(v, acct.Chips)
	v = msgp.AppendString(v, "created")
	v = msgp.AppendTime(v, acct.Created)
	v = msgp.AppendString(v, "updated")
	v = msgp.AppendTime(v, acct.Updated)
	return b.Put(acct.PlayerID[:], v)
}

func decodeAccount(id identity.PlayerID, v []byte) (Account, error) {
	acct := Account{PlayerID: id}
	n, v, err := msgp.ReadMapHeaderBytes(v)
	if err != nil {
		return acct, err
	}
	for range n {
		var key []byte
		if key, v, err = msgp.ReadMapKeyZC(v); err != nil {
			return acct, err
		}
		switch string(key) {
		case "nickname":
			acct.Nickname, v, err = msgp.ReadStringBytes(v)
		case "chips":
			acct.Chips, v, err = msgp.ReadInt64Bytes(v)
		case "created":
			acct.Created, v, err = msgp.ReadTimeBytes(v)
		case "updated":
			acct.Updated, v, err = msgp.ReadTimeBytes(v)
		default:
			v, err = msgp.Skip(v)
		}
		if err != nil {
			return acct, fmt.Errorf("decode account %s: %w", id.Short(), err)
		}
	}
	return acct, nil
}
