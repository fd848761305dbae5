package identity

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhraseRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := Generate()
	require.NoError(t, err)

	phrase := key.Phrase()
	assert.Len(t, strings.Fields(phrase), 24)

	restored, err := FromPhrase(phrase)
	require.NoError(t, err)
	assert.Equal(t, key.PlayerID(), restored.PlayerID())
	assert.Equal(t, key.VerifyingKey().Bytes(), restored.VerifyingKey().Bytes())
}

func TestFromPhraseInvalid(t *testing.T) {
	t.Parallel()

	_, err := FromPhrase("not a valid phrase at all")
	assert.ErrorIs(t, err, ErrInvalidPhrase)
}

func TestSignVerify(t *testing.T) {
	t.Parallel()

	key, err := FromSeed(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	msg := []byte("join table")
	sig := key.Sign(msg)

	vk := key.VerifyingKey()
	assert.True(t, vk.Verify(msg, sig))
	assert.False(t, vk.Verify([]byte("join tablf"), sig))

	other, err := FromSeed(bytes.Repeat([]byte{8}, 32))
	require.NoError(t, err)
	assert.False(t, other.VerifyingKey().Verify(msg, sig))
	assert.False(t, VerifyingKey{}.Verify(msg, sig))
}

func TestPlayerID(t *testing.T) {
	t.Parallel()

	key, err := FromSeed(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	id := key.PlayerID()
	assert.False(t, id.IsZero())
	assert.Equal(t, id, key.VerifyingKey().PlayerID())

	parsed, err := ParsePlayerID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.True(t, strings.HasPrefix(id.String(), id.Short()))

	_, err = ParsePlayerID("abc")
	assert.ErrorIs(t, err, ErrInvalidPlayerID)

	vk, err := NewVerifyingKey(key.VerifyingKey().Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, vk.PlayerID())

	_, err = NewVerifyingKey([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestLoadOrCreate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", PhraseFile)

	key, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, key.PlayerID(), again.PlayerID())
}

func TestLoadOrCreateCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), PhraseFile)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, _, err := LoadOrCreate(path)
	assert.ErrorIs(t, err, ErrInvalidPhrase)
}
