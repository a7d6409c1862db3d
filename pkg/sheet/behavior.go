package sheet

import (
	"fmt"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
)

// Action is a user operation a session may perform.
type Action string

const (
	ActionStepTrack  Action = "step_track"
	ActionChangeMax  Action = "change_max"
	ActionRoll       Action = "roll"
	ActionToggleLock Action = "toggle_lock"
	ActionSetDots    Action = "set_dots"
	ActionCreateItem Action = "create_item"
	ActionDeleteItem Action = "delete_item"
)

// Behavior is the per-game-line part of a sheet.
type Behavior interface {
	Line() actor.GameLine
	DiceVariant() dice.Variant
	// Tracks names the box tracks the sheet shows.
	Tracks() []string
	PrepareItems(items []actor.Item) Inventory
	// Actions lists what a session may do.
	Actions(editable bool) []Action
	// ModifierDice splits a pool of n dice into ordinary and modifier dice.
	ModifierDice(s *actor.Sheet, n int, req RollRequest) (ordinary, modifier int)
}

// BehaviorFor returns the behavior of a game line.
func BehaviorFor(line actor.GameLine) (Behavior, error) {
	switch line {
	case actor.LineVampire:
		return vampire{}, nil
	case actor.LineGhoul:
		return ghoul{}, nil
	case actor.LineHunter:
		return hunter{}, nil
	case actor.LineWerewolf:
		return werewolf{}, nil
	case actor.LineMortal:
		return mortal{}, nil
	case actor.LineCell:
		return cell{}, nil
	}
	return nil, fmt.Errorf("no behavior for game line %q", line)
}

func characterActions(editable bool) []Action {
	// box tracks and max buttons are live on read-only views too
	actions := []Action{ActionStepTrack, ActionChangeMax}
	if editable {
		actions = append(actions, ActionRoll, ActionToggleLock, ActionSetDots, ActionCreateItem, ActionDeleteItem)
	}
	return actions
}

type vampire struct{}

func (vampire) Line() actor.GameLine      { return actor.LineVampire }
func (vampire) DiceVariant() dice.Variant { return dice.VariantHunger }
func (vampire) Tracks() []string          { return []string{TrackHealth, TrackWillpower, TrackHumanity} }
func (vampire) Actions(editable bool) []Action {
	return characterActions(editable)
}
func (vampire) PrepareItems(items []actor.Item) Inventory {
	inv := prepareItems(items)
	inv.groupPowers(items)
	return inv
}
func (vampire) ModifierDice(s *actor.Sheet, n int, _ RollRequest) (int, int) {
	hunger := min(max(s.Hunger.Value, 0), n)
	return n - hunger, hunger
}

// ghoul rolls like a vampire but never with hunger dice.
type ghoul struct{}

func (ghoul) Line() actor.GameLine      { return actor.LineGhoul }
func (ghoul) DiceVariant() dice.Variant { return dice.VariantHunger }
func (ghoul) Tracks() []string          { return []string{TrackHealth, TrackWillpower, TrackHumanity} }
func (ghoul) Actions(editable bool) []Action {
	return characterActions(editable)
}
func (ghoul) PrepareItems(items []actor.Item) Inventory {
	inv := prepareItems(items)
	inv.groupPowers(items)
	return inv
}
func (ghoul) ModifierDice(_ *actor.Sheet, n int, _ RollRequest) (int, int) {
	return n, 0
}

type hunter struct{}

func (hunter) Line() actor.GameLine      { return actor.LineHunter }
func (hunter) DiceVariant() dice.Variant { return dice.VariantDesperation }
func (hunter) Tracks() []string          { return []string{TrackHealth, TrackWillpower, TrackDespair} }
func (hunter) Actions(editable bool) []Action {
	return characterActions(editable)
}
func (hunter) PrepareItems(items []actor.Item) Inventory {
	inv := prepareItems(items)
	inv.groupPerks(items)
	return inv
}

// ModifierDice adds desperation dice on top of the pool, and only while the
// hunter is not in despair.
func (hunter) ModifierDice(s *actor.Sheet, n int, req RollRequest) (int, int) {
	if s.Despair.Value != 0 {
		return n, 0
	}
	return n, max(req.Desperation, 0)
}

type werewolf struct{}

func (werewolf) Line() actor.GameLine      { return actor.LineWerewolf }
func (werewolf) DiceVariant() dice.Variant { return dice.VariantRage }
func (werewolf) Tracks() []string          { return []string{TrackHealth, TrackWillpower} }
func (werewolf) Actions(editable bool) []Action {
	return characterActions(editable)
}
func (werewolf) PrepareItems(items []actor.Item) Inventory {
	return prepareItems(items)
}
func (werewolf) ModifierDice(s *actor.Sheet, n int, _ RollRequest) (int, int) {
	rage := min(max(s.Rage.Value, 0), n)
	return n - rage, rage
}

type mortal struct{}

func (mortal) Line() actor.GameLine      { return actor.LineMortal }
func (mortal) DiceVariant() dice.Variant { return dice.VariantNone }
func (mortal) Tracks() []string          { return []string{TrackHealth, TrackWillpower, TrackHumanity} }
func (mortal) Actions(editable bool) []Action {
	return characterActions(editable)
}
func (mortal) PrepareItems(items []actor.Item) Inventory {
	return prepareItems(items)
}
func (mortal) ModifierDice(_ *actor.Sheet, n int, _ RollRequest) (int, int) {
	return n, 0
}

// cell is a hunter group sheet with desperation and danger instead of
// health and willpower.
type cell struct{}

func (cell) Line() actor.GameLine      { return actor.LineCell }
func (cell) DiceVariant() dice.Variant { return dice.VariantNone }
func (cell) Tracks() []string          { return []string{TrackDesperation, TrackDanger} }
func (cell) Actions(editable bool) []Action {
	if !editable {
		return nil
	}
	return []Action{ActionStepTrack, ActionRoll, ActionToggleLock, ActionSetDots, ActionCreateItem, ActionDeleteItem}
}
func (cell) PrepareItems(items []actor.Item) Inventory {
	return prepareItems(items)
}
func (cell) ModifierDice(_ *actor.Sheet, n int, _ RollRequest) (int, int) {
	return n, 0
}
