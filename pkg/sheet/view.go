package sheet

import (
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/labels"
	"github.com/jwebster45206/wod-sheets/pkg/track"
)

// TrackView is a decoded box track.
type TrackView struct {
	Binding string        `json:"binding"`
	Boxes   []track.State `json:"boxes"`
}

// View is everything a client needs to draw a sheet for one session.
type View struct {
	Session     *Session               `json:"session"`
	Sheet       *actor.Sheet           `json:"sheet"`
	Tracks      map[string]TrackView   `json:"tracks"`
	Inventory   Inventory              `json:"inventory"`
	Actions     []Action               `json:"actions"`
	Pools       map[string]int         `json:"pools"`
	Abilities   []string               `json:"abilities"`
	Skills      []string               `json:"skills"`
	Disciplines map[string]actor.Power `json:"disciplines,omitempty"`
	Edges       map[string]actor.Power `json:"edges,omitempty"`
}

// View renders the sheet for a session.
func (c *Controller) View(s *actor.Sheet, sess *Session) (*View, error) {
	b, err := BehaviorFor(s.Type)
	if err != nil {
		return nil, err
	}

	v := &View{
		Session:     sess,
		Sheet:       s,
		Tracks:      make(map[string]TrackView),
		Inventory:   b.PrepareItems(s.Items),
		Actions:     b.Actions(sess.Editable),
		Abilities:   labels.OrderKeys(s.Abilities, actor.AbilityOrder, c.opts.SortAbilities),
		Skills:      labels.OrderKeys(s.Skills, actor.SkillOrder, c.opts.SortAbilities),
		Disciplines: labels.Visible(s.Disciplines),
		Edges:       labels.Visible(s.Edges),
	}
	if s.Type != actor.LineCell {
		v.Pools = s.DerivedPools()
	}
	for _, name := range b.Tracks() {
		ts := trackSpecs[name]
		v.Tracks[name] = TrackView{Binding: ts.Binding.String(), Boxes: ts.Decode(s)}
	}
	return v, nil
}
