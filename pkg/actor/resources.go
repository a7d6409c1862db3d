package actor

import "github.com/jwebster45206/wod-sheets/pkg/track"

// Damage is a health or willpower tracker. Value is derived:
// max - (aggravated + superficial/2).
type Damage struct {
	Max         int     `json:"max"`
	Superficial int     `json:"superficial"`
	Aggravated  int     `json:"aggravated"`
	Value       float64 `json:"value"`
}

// Normalize clamps the damage buckets to the maximum and recomputes Value.
// Overflow is taken from aggravated first; if that is not enough the whole
// track becomes superficial.
func (d *Damage) Normalize() {
	d.Max = max(d.Max, 0)
	d.Superficial = max(d.Superficial, 0)
	d.Aggravated = max(d.Aggravated, 0)

	if d.Aggravated+d.Superficial > d.Max {
		d.Aggravated = d.Max - d.Superficial
		if d.Aggravated <= 0 {
			d.Aggravated = 0
			d.Superficial = d.Max
		}
	}
	d.Value = float64(d.Max) - (float64(d.Aggravated) + float64(d.Superficial)/2)
}

// AdjustMax changes the number of boxes, never below zero.
func (d *Damage) AdjustMax(delta int) {
	d.Max = max(d.Max+delta, 0)
	d.Normalize()
}

// Track exposes the buckets to the box codec. Filled carries the capacity.
func (d Damage) Track() track.Track {
	return track.Track{Filled: d.Max, Half: d.Superficial, Crossed: d.Aggravated}
}

func (d *Damage) ApplyTrack(t track.Track) {
	d.Max, d.Superficial, d.Aggravated = t.Filled, t.Half, t.Crossed
	d.Normalize()
}

// SpendOutcome is the effect of spending one point of willpower.
type SpendOutcome string

const (
	SpendSuperficial SpendOutcome = "superficial"
	SpendUpgrade     SpendOutcome = "upgraded"
	SpendFull        SpendOutcome = "full"
)

// Spend marks one point of willpower damage. With free boxes it adds
// superficial damage; on a full track a superficial box is upgraded to
// aggravated; when everything is already aggravated nothing changes.
func (d *Damage) Spend() SpendOutcome {
	outcome := SpendSuperficial
	switch {
	case d.Aggravated >= d.Max:
		return SpendFull
	case d.Superficial+d.Aggravated < d.Max:
		d.Superficial++
	default:
		d.Superficial--
		d.Aggravated++
		outcome = SpendUpgrade
	}
	d.Normalize()
	return outcome
}

// Humanity is the vampire morality track with stains.
type Humanity struct {
	Value  int `json:"value"`
	Stains int `json:"stains"`
}

func (h Humanity) Track() track.Track {
	return track.Track{Filled: h.Value, Half: h.Stains}
}

func (h *Humanity) ApplyTrack(t track.Track) {
	h.Value, h.Stains = t.Filled, t.Half
}

// Level is a single rating (hunger, rage, despair) with an optional second
// tier of marked boxes used by desperation and danger.
type Level struct {
	Value  int `json:"value"`
	Marked int `json:"marked,omitempty"`
}

func (l Level) Track() track.Track {
	return track.Track{Filled: l.Value, Half: l.Marked}
}

func (l *Level) ApplyTrack(t track.Track) {
	l.Value, l.Marked = t.Filled, t.Half
}
