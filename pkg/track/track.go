// Package track maps compact resource counters to rows of clickable boxes and
// back. A Track stores three bucket counts; a row of States is only ever a
// rendering of it.
package track

import "slices"

// State is the display state of a single box.
type State string

const (
	Empty   State = ""
	Full    State = "-"
	Half    State = "/"
	Crossed State = "x"
)

// Track is the persisted three-bucket counter behind a row of boxes.
type Track struct {
	Filled  int `json:"filled"`
	Half    int `json:"half"`
	Crossed int `json:"crossed"`
}

// Packed is the number of boxes the buckets occupy when laid out contiguously.
func (t Track) Packed() int {
	return t.Filled + t.Half + t.Crossed
}

func (t *Track) bucket(s State) *int {
	switch s {
	case Full:
		return &t.Filled
	case Half:
		return &t.Half
	case Crossed:
		return &t.Crossed
	}
	return nil
}

func (t *Track) clamp() {
	t.Filled = max(t.Filled, 0)
	t.Half = max(t.Half, 0)
	t.Crossed = max(t.Crossed, 0)
}

// Kind is the fill policy of a track.
type Kind string

const (
	// KindGeneral is a damage-style track (health, willpower). Its Filled
	// bucket is the capacity and is never drawn.
	KindGeneral Kind = "general"
	// KindHumanity draws filled boxes then half boxes (humanity and stains).
	KindHumanity Kind = "humanity"
	// KindTwoTier draws filled then half from zero (desperation, danger).
	KindTwoTier Kind = "two_tier"
	// KindDespair has a single non-empty state.
	KindDespair Kind = "despair"
)

// Variant is a fill policy plus the ordered list of non-empty states a box
// cycles through.
type Variant struct {
	Kind   Kind    `json:"kind"`
	States []State `json:"states"`
}

var (
	General  = Variant{Kind: KindGeneral, States: []State{Half, Crossed}}
	Humanity = Variant{Kind: KindHumanity, States: []State{Full, Half}}
	TwoTier  = Variant{Kind: KindTwoTier, States: []State{Full, Half}}
	Despair  = Variant{Kind: KindDespair, States: []State{Full}}
)

// ShrinksCapacity reports whether emptying a box also lowers Filled.
// Only a general cycle that passes through Full grows Filled on the way in,
// so only that cycle gives the box back on the way out.
func (v Variant) ShrinksCapacity() bool {
	return v.Kind == KindGeneral && slices.Contains(v.States, Full)
}

// Cycle is the full wrap-around order a box steps through.
func (v Variant) Cycle() []State {
	return append([]State{Empty}, v.States...)
}

// drawn is the order buckets are laid out in when decoding.
func (v Variant) drawn() []State {
	out := make([]State, 0, len(v.States))
	for _, s := range v.States {
		if s == Full && v.ShrinksCapacity() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Decode renders t as exactly boxes states, packing buckets left to right in
// the variant's order and padding with Empty.
func Decode(t Track, v Variant, boxes int) []State {
	if boxes < 0 {
		boxes = 0
	}
	out := make([]State, 0, boxes)
	for _, s := range v.drawn() {
		n := *t.bucket(s)
		for i := 0; i < n && len(out) < boxes; i++ {
			out = append(out, s)
		}
	}
	for len(out) < boxes {
		out = append(out, Empty)
	}
	return out
}

// Encode counts states into buckets. States outside the variant are ignored.
func Encode(states []State, v Variant) Track {
	var t Track
	for _, s := range states {
		if !slices.Contains(v.States, s) {
			continue
		}
		*t.bucket(s)++
	}
	return t
}

// IsPacked reports whether states are laid out in the variant's drawing order
// with no gaps, which is the only shape Decode produces.
func IsPacked(states []State, v Variant) bool {
	order := v.drawn()
	pos := 0
	for _, s := range states {
		if s == Empty {
			pos = len(order)
			continue
		}
		i := slices.Index(order, s)
		if i < pos {
			return false
		}
		pos = i
	}
	return true
}

// Step advances the box at index one position along the variant's cycle and
// returns the new row and the reconciled track.
//
// A stale index, or a box in a state the variant does not know, leaves both
// values untouched and reports applied=false.
func Step(states []State, index int, t Track, v Variant) (next []State, updated Track, applied bool) {
	if index < 0 || index >= len(states) {
		return states, t, false
	}

	cycle := v.Cycle()
	pos := slices.Index(cycle, states[index])
	if pos < 0 {
		return states, t, false
	}
	old := states[index]
	neu := cycle[(pos+1)%len(cycle)]

	packed := t.Packed()
	updated = t

	if old != Empty {
		if !(old == Full && v.ShrinksCapacity()) {
			*updated.bucket(old)--
		}
		if neu == Empty && v.ShrinksCapacity() {
			updated.Filled--
		}
	}
	if neu != Empty {
		*updated.bucket(neu) += max(index+1-packed, 1)
	}
	updated.clamp()

	next = slices.Clone(states)
	next[index] = neu
	return next, updated, true
}
