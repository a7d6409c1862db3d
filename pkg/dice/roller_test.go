package dice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	values []int
	next   int
}

func (f *fixedSource) Intn(n int) int {
	v := f.values[f.next%len(f.values)]
	f.next++
	return v % n
}

func TestRoller_Deterministic(t *testing.T) {
	a := NewRoller(42)
	b := NewRoller(42)
	pool := Pool{Ordinary: 6, Modifier: 2, Difficulty: 3}

	for i := 0; i < 20; i++ {
		ra, err := a.Roll(pool, VariantHunger)
		require.NoError(t, err)
		rb, err := b.Roll(pool, VariantHunger)
		require.NoError(t, err)
		assert.Equal(t, ra, rb, "same seed should produce the same roll")
	}
}

func TestRoller_DrawCounts(t *testing.T) {
	r := NewRoller(1)

	faces, err := r.Draw(Pool{Ordinary: 4, Modifier: 3}, VariantDesperation)
	require.NoError(t, err)
	assert.Len(t, faces.Ordinary, 4)
	assert.Len(t, faces.Modifier, 3)
	for _, f := range append(faces.Ordinary, faces.Modifier...) {
		assert.GreaterOrEqual(t, f, 1)
		assert.LessOrEqual(t, f, Sides)
	}

	faces, err = r.Draw(Pool{Ordinary: 2, Modifier: 3}, VariantNone)
	require.NoError(t, err)
	assert.Empty(t, faces.Modifier, "VariantNone forces modifier dice to zero")
}

func TestRoller_FixedSource(t *testing.T) {
	// Intn(10)+1 maps 9 -> 10, 5 -> 6, 0 -> 1
	r := NewRollerFromSource(&fixedSource{values: []int{9, 9, 5, 0}})

	result, err := r.Roll(Pool{Ordinary: 3, Modifier: 1, Difficulty: 5}, VariantDesperation)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Ordinary.CriticalSuccesses)
	assert.Equal(t, 1, result.Ordinary.Successes)
	assert.Equal(t, 1, result.Modifier.CriticalFailures)
	assert.Equal(t, 5, result.TotalSuccesses)
	assert.True(t, result.Flags.CriticalWin)
	assert.True(t, result.Flags.DesperationSuccess)
}

func TestRoller_RejectsNegativeCounts(t *testing.T) {
	r := NewRoller(1)
	for _, p := range []Pool{{Ordinary: -1}, {Modifier: -2}, {Difficulty: -3}} {
		_, err := r.Roll(p, VariantHunger)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Roll(%+v) error = %v, want ErrInvalidArgument", p, err)
		}
	}
}

func TestRoller_RejectsOversizedPool(t *testing.T) {
	r := NewRoller(1)
	for _, p := range []Pool{{Ordinary: MaxPool + 1}, {Ordinary: 1, Modifier: MaxPool + 1}, {Ordinary: 1 << 62}} {
		_, err := r.Roll(p, VariantHunger)
		assert.ErrorIs(t, err, ErrInvalidArgument, "Roll(%+v)", p)
	}

	_, err := r.Roll(Pool{Ordinary: MaxPool}, VariantNone)
	assert.NoError(t, err)
}

func TestNewSeed(t *testing.T) {
	_, err := NewSeed()
	require.NoError(t, err)
}
