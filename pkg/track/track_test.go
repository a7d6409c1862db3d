package track

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		variant Variant
		boxes   int
		want    []State
	}{
		{
			name:    "general draws half then crossed",
			track:   Track{Filled: 5, Half: 2, Crossed: 1},
			variant: General,
			boxes:   5,
			want:    []State{Half, Half, Crossed, Empty, Empty},
		},
		{
			name:    "humanity draws filled then stains",
			track:   Track{Filled: 3, Half: 2},
			variant: Humanity,
			boxes:   6,
			want:    []State{Full, Full, Full, Half, Half, Empty},
		},
		{
			name:    "two tier from zero",
			track:   Track{Filled: 1, Half: 1},
			variant: TwoTier,
			boxes:   3,
			want:    []State{Full, Half, Empty},
		},
		{
			name:    "despair ignores other buckets",
			track:   Track{Filled: 1, Half: 4},
			variant: Despair,
			boxes:   2,
			want:    []State{Full, Empty},
		},
		{
			name:    "truncated to box count",
			track:   Track{Filled: 4, Half: 3},
			variant: Humanity,
			boxes:   5,
			want:    []State{Full, Full, Full, Full, Half},
		},
		{
			name:    "no boxes",
			track:   Track{Half: 2},
			variant: General,
			boxes:   0,
			want:    []State{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.track, tt.variant, tt.boxes)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, v := range []Variant{General, Humanity, TwoTier, Despair} {
		for a := 0; a <= 4; a++ {
			for b := 0; b <= 4-a; b++ {
				var tr Track
				switch v.Kind {
				case KindGeneral:
					tr = Track{Half: a, Crossed: b}
				case KindDespair:
					tr = Track{Filled: a}
				default:
					tr = Track{Filled: a, Half: b}
				}

				states := Decode(tr, v, 4)
				if !IsPacked(states, v) {
					t.Fatalf("%s: Decode(%+v) is not packed: %q", v.Kind, tr, states)
				}
				again := Decode(Encode(states, v), v, 4)
				if !slices.Equal(again, states) {
					t.Errorf("%s: round trip of %q gave %q", v.Kind, states, again)
				}
			}
		}
	}
}

func TestStep_GeneralScenario(t *testing.T) {
	tr := Track{Filled: 2, Half: 1, Crossed: 0}
	states := Decode(tr, General, 5)

	next, updated, applied := Step(states, 3, tr, General)
	require.True(t, applied)
	assert.Equal(t, Half, next[3])
	assert.Equal(t, 2, updated.Half)
	assert.Equal(t, 2, updated.Filled)
	assert.Equal(t, 0, updated.Crossed)
	assert.Equal(t, Empty, states[3], "input row must not be mutated")
}

func TestStep_FourStateCycleReturnsToStart(t *testing.T) {
	v := Variant{Kind: KindGeneral, States: []State{Full, Half, Crossed}}
	start := Track{Filled: 2, Half: 1, Crossed: 0}
	states := []State{Full, Full, Half, Empty, Empty}

	cur, tr := states, start
	seen := []State{}
	for i := 0; i < 4; i++ {
		var applied bool
		cur, tr, applied = Step(cur, 3, tr, v)
		require.True(t, applied)
		seen = append(seen, cur[3])
	}

	assert.Equal(t, []State{Full, Half, Crossed, Empty}, seen)
	assert.Equal(t, start, tr)
	assert.Equal(t, states, cur)
}

func TestStep_GeneralCycleKeepsCapacity(t *testing.T) {
	start := Track{Filled: 5, Half: 1}
	states := Decode(start, General, 5)

	cur, tr := states, start
	seen := []State{}
	for i := 0; i < len(General.Cycle()); i++ {
		var applied bool
		cur, tr, applied = Step(cur, 0, tr, General)
		require.True(t, applied)
		seen = append(seen, cur[0])
	}

	assert.Equal(t, []State{Crossed, Empty, Half}, seen)
	assert.Equal(t, start, tr)
	assert.False(t, General.ShrinksCapacity())
}

func TestStep_NonShrinkingCycle(t *testing.T) {
	for _, v := range []Variant{Humanity, TwoTier} {
		start := Track{Filled: 1}
		states := Decode(start, v, 5)

		cur, tr := states, start
		for i := 0; i < len(v.Cycle()); i++ {
			cur, tr, _ = Step(cur, 1, tr, v)
		}
		assert.Equal(t, start, tr, "%s buckets after full cycle", v.Kind)
		assert.Equal(t, states, cur)
	}
}

func TestStep_ExtendsBucketToClickedBox(t *testing.T) {
	tr := Track{Filled: 1}
	states := Decode(tr, Humanity, 10)

	next, updated, applied := Step(states, 4, tr, Humanity)
	require.True(t, applied)
	assert.Equal(t, Full, next[4])
	// boxes 1..4 all become filled
	assert.Equal(t, 5, updated.Filled)
}

func TestStep_LeavingFullOnGeneralKeepsCapacity(t *testing.T) {
	v := Variant{Kind: KindGeneral, States: []State{Full, Half, Crossed}}
	tr := Track{Filled: 5}
	states := []State{Full, Empty, Empty}

	_, updated, applied := Step(states, 0, tr, v)
	require.True(t, applied)
	assert.Equal(t, Track{Filled: 5, Half: 1}, updated)
}

func TestStep_Despair(t *testing.T) {
	states := Decode(Track{}, Despair, 1)

	next, tr, applied := Step(states, 0, Track{}, Despair)
	require.True(t, applied)
	assert.Equal(t, []State{Full}, next)
	assert.Equal(t, 1, tr.Filled)

	next, tr, _ = Step(next, 0, tr, Despair)
	assert.Equal(t, []State{Empty}, next)
	assert.Equal(t, 0, tr.Filled)
}

func TestStep_StaleIndexIsNoOp(t *testing.T) {
	tr := Track{Half: 1}
	states := Decode(tr, General, 3)

	for _, idx := range []int{-1, 3, 10} {
		next, updated, applied := Step(states, idx, tr, General)
		if applied {
			t.Errorf("Step(%d) applied, want no-op", idx)
		}
		if !slices.Equal(next, states) || updated != tr {
			t.Errorf("Step(%d) changed state: %q %+v", idx, next, updated)
		}
	}
}

func TestStep_UnknownStateIsNoOp(t *testing.T) {
	states := []State{Crossed, Empty}
	tr := Track{Crossed: 1}

	_, updated, applied := Step(states, 0, tr, Humanity)
	assert.False(t, applied)
	assert.Equal(t, tr, updated)
}

func TestStep_ClampsAtZero(t *testing.T) {
	// row and buckets disagree; leaving a half box must not go negative
	states := []State{Half, Empty}
	_, updated, applied := Step(states, 0, Track{}, Humanity)
	require.True(t, applied)
	assert.Equal(t, Track{}, updated)
}

func TestIsPacked(t *testing.T) {
	assert.True(t, IsPacked([]State{Half, Crossed, Empty}, General))
	assert.False(t, IsPacked([]State{Crossed, Half}, General))
	assert.False(t, IsPacked([]State{Full, Empty, Half}, Humanity))
	assert.True(t, IsPacked([]State{}, Despair))
}

func TestParseBinding(t *testing.T) {
	b, err := ParseBinding("-:max,/:superficial,x:aggravated")
	require.NoError(t, err)
	assert.Equal(t, []State{Full, Half, Crossed}, b.States)
	assert.Equal(t, "superficial", b.Fields[Half])
	assert.Equal(t, "-:max,/:superficial,x:aggravated", b.String())

	v := b.Variant(KindGeneral)
	assert.Equal(t, []State{Empty, Full, Half, Crossed}, v.Cycle())

	for _, bad := range []string{"", "-", "-:", "?:value", "/:a,/:b"} {
		_, err := ParseBinding(bad)
		if !errors.Is(err, ErrInvalidBinding) {
			t.Errorf("ParseBinding(%q) error = %v, want ErrInvalidBinding", bad, err)
		}
	}
}
