package sheet

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/track"
)

// MaxDots is the number of dots on every dot counter.
const MaxDots = 5

// Options are the table-wide settings that change sheet behavior.
type Options struct {
	// AutomatedWillpower applies willpower damage for rolls that spend it.
	AutomatedWillpower bool
	// RageThresholds are compared against the count of critical rage dice.
	RageThresholds []int
	SortAbilities  bool
}

// Controller applies user operations to a sheet. It never mutates the sheet
// it is given; every operation returns the field updates to persist.
type Controller struct {
	roller *dice.Roller
	opts   Options
}

func NewController(roller *dice.Roller, opts Options) *Controller {
	return &Controller{roller: roller, opts: opts}
}

func (c *Controller) allow(s *actor.Sheet, sess *Session, a Action) (Behavior, error) {
	b, err := BehaviorFor(s.Type)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.SheetID != s.ID {
		return nil, fmt.Errorf("%w: session does not belong to sheet", ErrActionNotAllowed)
	}
	if !slices.Contains(b.Actions(sess.Editable), a) {
		return nil, fmt.Errorf("%w: %s on %s sheet", ErrActionNotAllowed, a, s.Type)
	}
	return b, nil
}

func (c *Controller) trackFor(b Behavior, name string) (TrackSpec, error) {
	ts, ok := LookupTrack(name)
	if !ok || !slices.Contains(b.Tracks(), name) {
		return TrackSpec{}, fmt.Errorf("%w: %s", ErrUnknownTrack, name)
	}
	return ts, nil
}

// StepTrack cycles one box of a track. A stale index is not an error; it
// returns no updates and applied=false.
func (c *Controller) StepTrack(s *actor.Sheet, sess *Session, name string, index int) ([]actor.FieldUpdate, bool, error) {
	b, err := c.allow(s, sess, ActionStepTrack)
	if err != nil {
		return nil, false, err
	}
	ts, err := c.trackFor(b, name)
	if err != nil {
		return nil, false, err
	}

	work := s.Clone()
	_, t, applied := track.Step(ts.Decode(work), index, ts.Get(work), ts.Variant)
	if !applied {
		return nil, false, nil
	}
	ts.set(work, t)
	return ts.updates(work), true, nil
}

// ChangeMax adds or removes boxes from a health or willpower track.
func (c *Controller) ChangeMax(s *actor.Sheet, sess *Session, name string, delta int) ([]actor.FieldUpdate, error) {
	b, err := c.allow(s, sess, ActionChangeMax)
	if err != nil {
		return nil, err
	}
	ts, err := c.trackFor(b, name)
	if err != nil {
		return nil, err
	}
	if !ts.Derived {
		return nil, fmt.Errorf("%w: %s has a fixed size", ErrActionNotAllowed, name)
	}
	if sess.Locked {
		return nil, ErrLocked
	}

	work := s.Clone()
	damageOf(work, name).AdjustMax(delta)
	return ts.updates(work), nil
}

// SetDots sets a dot counter to index+1. Hunger stays editable while locked.
func (c *Controller) SetDots(s *actor.Sheet, sess *Session, field string, index int) ([]actor.FieldUpdate, error) {
	path, err := c.dotPath(s, sess, field)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= MaxDots {
		return nil, nil
	}
	return []actor.FieldUpdate{{Path: path, Value: index + 1}}, nil
}

// EmptyDots clears a dot counter.
func (c *Controller) EmptyDots(s *actor.Sheet, sess *Session, field string) ([]actor.FieldUpdate, error) {
	path, err := c.dotPath(s, sess, field)
	if err != nil {
		return nil, err
	}
	return []actor.FieldUpdate{{Path: path, Value: 0}}, nil
}

func (c *Controller) dotPath(s *actor.Sheet, sess *Session, field string) (string, error) {
	if _, err := c.allow(s, sess, ActionSetDots); err != nil {
		return "", err
	}
	field = strings.TrimSuffix(field, ".value")
	if sess.Locked && field != "hunger" {
		return "", ErrLocked
	}

	switch field {
	case "hunger", "rage", "harano", "hauglosk":
		return field + ".value", nil
	}

	group, key, ok := strings.Cut(field, ".")
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	var found bool
	switch group {
	case "abilities":
		_, found = s.Abilities[key]
	case "skills":
		_, found = s.Skills[key]
	case "disciplines":
		_, found = s.Disciplines[key]
	case "edges":
		_, found = s.Edges[key]
	case "items":
		if _, i := s.Item(key); i >= 0 {
			return "items." + strconv.Itoa(i) + ".points", nil
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return field + ".value", nil
}

// ToggleLock flips the session lock.
func (c *Controller) ToggleLock(s *actor.Sheet, sess *Session) (bool, error) {
	if _, err := c.allow(s, sess, ActionToggleLock); err != nil {
		return false, err
	}
	return sess.ToggleLock(), nil
}

// CreateItem adds a new item with per-type defaults.
func (c *Controller) CreateItem(s *actor.Sheet, sess *Session, typ actor.ItemType, data actor.Item) (actor.Item, []actor.FieldUpdate, error) {
	if _, err := c.allow(s, sess, ActionCreateItem); err != nil {
		return actor.Item{}, nil, err
	}
	item, err := actor.NewItem(typ, data)
	if err != nil {
		return actor.Item{}, nil, fmt.Errorf("%w: %v", ErrUnknownField, err)
	}
	items := append(slices.Clone(s.Items), item)
	return item, []actor.FieldUpdate{{Path: "items", Value: items}}, nil
}

// DeleteItem removes an item.
func (c *Controller) DeleteItem(s *actor.Sheet, sess *Session, id string) ([]actor.FieldUpdate, error) {
	if _, err := c.allow(s, sess, ActionDeleteItem); err != nil {
		return nil, err
	}
	_, i := s.Item(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	items := slices.Delete(slices.Clone(s.Items), i, i+1)
	return []actor.FieldUpdate{{Path: "items", Value: items}}, nil
}
