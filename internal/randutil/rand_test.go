package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestSeed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(7), Seed(7))
	s := Seed(0)
	assert.Positive(t, s)
}

func TestSplit(t *testing.T) {
	t.Parallel()

	gens := Split(9, 3)
	require.Len(t, gens, 3)
	first := []uint64{gens[0].Uint64(), gens[1].Uint64(), gens[2].Uint64()}
	assert.NotEqual(t, first[0], first[1])
	assert.NotEqual(t, first[1], first[2])

	again := Split(9, 3)
	assert.Equal(t, first[0], again[0].Uint64())
}
