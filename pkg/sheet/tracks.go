package sheet

import (
	"fmt"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/track"
)

// Track names.
const (
	TrackHealth      = "health"
	TrackWillpower   = "willpower"
	TrackHumanity    = "humanity"
	TrackDespair     = "despair"
	TrackDesperation = "desperation"
	TrackDanger      = "danger"
)

// TrackSpec describes how a resource on the sheet is drawn as boxes.
type TrackSpec struct {
	Name    string
	Binding track.Binding
	Variant track.Variant
	// Derived tracks also persist a recomputed value field.
	Derived bool

	boxes func(*actor.Sheet) int
	get   func(*actor.Sheet) track.Track
	set   func(*actor.Sheet, track.Track)
}

// Boxes is the number of visible boxes for the sheet.
func (ts TrackSpec) Boxes(s *actor.Sheet) int { return ts.boxes(s) }

// Get reads the current counter from the sheet.
func (ts TrackSpec) Get(s *actor.Sheet) track.Track { return ts.get(s) }

// Decode renders the sheet's current counter.
func (ts TrackSpec) Decode(s *actor.Sheet) []track.State {
	return track.Decode(ts.get(s), ts.Variant, ts.boxes(s))
}

// updates lists the persisted fields of the track as they are on s.
func (ts TrackSpec) updates(s *actor.Sheet) []actor.FieldUpdate {
	t := ts.get(s)
	out := make([]actor.FieldUpdate, 0, len(ts.Binding.States)+1)
	for _, st := range ts.Binding.States {
		var v int
		switch st {
		case track.Full:
			v = t.Filled
		case track.Half:
			v = t.Half
		case track.Crossed:
			v = t.Crossed
		}
		out = append(out, actor.FieldUpdate{Path: ts.Name + "." + ts.Binding.Fields[st], Value: v})
	}
	if ts.Derived {
		out = append(out, actor.FieldUpdate{Path: ts.Name + ".value", Value: damageOf(s, ts.Name).Value})
	}
	return out
}

func damageOf(s *actor.Sheet, name string) *actor.Damage {
	if name == TrackWillpower {
		return &s.Willpower
	}
	return &s.Health
}

func mustBinding(s string) track.Binding {
	b, err := track.ParseBinding(s)
	if err != nil {
		panic(fmt.Sprintf("sheet: bad built-in binding %q: %v", s, err))
	}
	return b
}

func damageTrack(name string) TrackSpec {
	return TrackSpec{
		Name:    name,
		Binding: mustBinding("-:max,/:superficial,x:aggravated"),
		Variant: track.General,
		Derived: true,
		boxes:   func(s *actor.Sheet) int { return damageOf(s, name).Max },
		get:     func(s *actor.Sheet) track.Track { return damageOf(s, name).Track() },
		set:     func(s *actor.Sheet, t track.Track) { damageOf(s, name).ApplyTrack(t) },
	}
}

func levelTrack(name, binding string, v track.Variant, boxes int, level func(*actor.Sheet) *actor.Level) TrackSpec {
	return TrackSpec{
		Name:    name,
		Binding: mustBinding(binding),
		Variant: v,
		boxes:   func(*actor.Sheet) int { return boxes },
		get:     func(s *actor.Sheet) track.Track { return level(s).Track() },
		set:     func(s *actor.Sheet, t track.Track) { level(s).ApplyTrack(t) },
	}
}

var trackSpecs = map[string]TrackSpec{
	TrackHealth:    damageTrack(TrackHealth),
	TrackWillpower: damageTrack(TrackWillpower),
	TrackHumanity: {
		Name:    TrackHumanity,
		Binding: mustBinding("-:value,/:stains"),
		Variant: track.Humanity,
		boxes:   func(*actor.Sheet) int { return 10 },
		get:     func(s *actor.Sheet) track.Track { return s.Humanity.Track() },
		set:     func(s *actor.Sheet, t track.Track) { s.Humanity.ApplyTrack(t) },
	},
	TrackDespair: levelTrack(TrackDespair, "-:value", track.Despair, 1,
		func(s *actor.Sheet) *actor.Level { return &s.Despair }),
	TrackDesperation: levelTrack(TrackDesperation, "-:value,/:marked", track.TwoTier, 5,
		func(s *actor.Sheet) *actor.Level { return &s.Desperation }),
	TrackDanger: levelTrack(TrackDanger, "-:value,/:marked", track.TwoTier, 5,
		func(s *actor.Sheet) *actor.Level { return &s.Danger }),
}

// LookupTrack returns the TrackSpec for a named track.
func LookupTrack(name string) (TrackSpec, bool) {
	ts, ok := trackSpecs[name]
	return ts, ok
}
