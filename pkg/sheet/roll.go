package sheet

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/labels"
)

// MaxHunger caps hunger increases from rouse rolls.
const MaxHunger = 5

// RollRequest describes a roll button press. The pool is built from the
// first of ItemID, Pool, or Ability/Skill that is set, plus Dice and
// Modifier.
type RollRequest struct {
	Label      string `json:"label,omitempty"`
	Ability    string `json:"ability,omitempty"`
	Skill      string `json:"skill,omitempty"`
	Pool       string `json:"pool,omitempty"` // frenzy, willpower, remorse, harano, hauglosk
	ItemID     string `json:"item_id,omitempty"`
	Dice       int    `json:"dice,omitempty"`
	Modifier   int    `json:"modifier,omitempty"`
	Difficulty int    `json:"difficulty,omitempty"`
	// Desperation is the number of desperation dice a hunter adds.
	Desperation       int  `json:"desperation,omitempty"`
	SubtractWillpower bool `json:"subtract_willpower,omitempty"`
	IncreaseHunger    bool `json:"increase_hunger,omitempty"`
	ConsumeRage       bool `json:"consume_rage,omitempty"`
	Async             bool `json:"async,omitempty"`
}

// RollOutcome is a resolved roll plus the resource changes it caused.
type RollOutcome struct {
	Label   string              `json:"label"`
	Pool    dice.Pool           `json:"pool"`
	Result  dice.Result         `json:"result"`
	Notices []string            `json:"notices,omitempty"`
	Updates []actor.FieldUpdate `json:"updates,omitempty"`
	// RageThresholds lists the thresholds the critical rage dice reached.
	RageThresholds []int `json:"rage_thresholds,omitempty"`
}

// Message turns the outcome into a roll log entry.
func (o *RollOutcome) Message(s *actor.Sheet) chat.Message {
	notices := append(chat.Headlines(&o.Result), o.Notices...)
	return chat.NewMessage(s.ID, s.Name, o.Label, &o.Result, notices...)
}

// Roll resolves a roll for the sheet and applies its side effects.
func (c *Controller) Roll(s *actor.Sheet, sess *Session, req RollRequest) (*RollOutcome, error) {
	b, err := c.allow(s, sess, ActionRoll)
	if err != nil {
		return nil, err
	}
	if req.Difficulty < 0 {
		return nil, fmt.Errorf("%w: difficulty %d is negative", ErrInvalidRoll, req.Difficulty)
	}
	for _, v := range []int{req.Dice, req.Modifier, req.Desperation} {
		if v > dice.MaxPool || v < -dice.MaxPool {
			return nil, fmt.Errorf("%w: dice count %d is out of range", ErrInvalidRoll, v)
		}
	}

	n, label, err := c.poolSize(s, req)
	if err != nil {
		return nil, err
	}
	if req.Label != "" {
		label = req.Label
	}

	ordinary, modifier := b.ModifierDice(s, n, req)
	pool := dice.Pool{Ordinary: ordinary, Modifier: modifier, Difficulty: req.Difficulty}

	result, err := c.roller.Roll(pool, b.DiceVariant())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoll, err)
	}

	out := &RollOutcome{Label: label, Pool: pool, Result: result}
	work := s.Clone()

	if req.SubtractWillpower && c.opts.AutomatedWillpower && s.Type != actor.LineCell {
		if work.Willpower.Spend() == actor.SpendFull {
			out.Notices = append(out.Notices, chat.KeyWillpowerFull)
		} else {
			out.Updates = append(out.Updates, trackSpecs[TrackWillpower].updates(work)...)
		}
	}

	if req.IncreaseHunger && s.Type == actor.LineVampire && result.TotalSuccesses == 0 && work.Hunger.Value < MaxHunger {
		work.Hunger.Value++
		out.Updates = append(out.Updates, actor.FieldUpdate{Path: "hunger.value", Value: work.Hunger.Value})
		out.Notices = append(out.Notices, chat.KeyHungerIncreased)
	}

	if req.ConsumeRage && s.Type == actor.LineWerewolf {
		crits := result.Modifier.CriticalSuccesses
		for _, t := range c.opts.RageThresholds {
			if crits >= t {
				out.RageThresholds = append(out.RageThresholds, t)
			}
		}
		if len(out.RageThresholds) > 0 {
			work.Rage.Value = max(work.Rage.Value-len(out.RageThresholds), 0)
			out.Updates = append(out.Updates, actor.FieldUpdate{Path: "rage.value", Value: work.Rage.Value})
			out.Notices = append(out.Notices, chat.KeyRageConsumed)
		}
	}

	return out, nil
}

// poolSize returns the number of dice and a default label for the request.
func (c *Controller) poolSize(s *actor.Sheet, req RollRequest) (int, string, error) {
	var (
		n     int
		parts []string
	)

	switch {
	case req.ItemID != "":
		item, _ := s.Item(req.ItemID)
		if item == nil {
			return 0, "", fmt.Errorf("%w: %s", ErrUnknownItem, req.ItemID)
		}
		total, err := itemPool(s, item, req)
		if err != nil {
			return 0, "", err
		}
		n = total
		parts = append(parts, item.Name)

	case req.Pool != "":
		total, ok := s.DerivedPool(req.Pool)
		if !ok {
			return 0, "", fmt.Errorf("%w: unknown pool %q", ErrInvalidRoll, req.Pool)
		}
		n = total
		parts = append(parts, labels.Localize(labels.FeatureLabel(req.Pool)))

	case req.Ability != "" || req.Skill != "":
		total, err := s.Pool(req.Ability, req.Skill)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrInvalidRoll, err)
		}
		n = total
		if req.Ability != "" {
			parts = append(parts, traitLabel(s.Abilities, req.Ability))
		}
		if req.Skill != "" {
			parts = append(parts, traitLabel(s.Skills, req.Skill))
		}

	case req.Dice <= 0:
		return 0, "", fmt.Errorf("%w: no dice pool", ErrInvalidRoll)
	}

	n = max(n+req.Dice+req.Modifier, 0)
	return n, strings.Join(parts, " + "), nil
}

// itemPool sizes a custom roll or specialty. A custom roll without a first
// trait is a specialty roll: the skill plus one die, with the ability picked
// at roll time.
func itemPool(s *actor.Sheet, item *actor.Item, req RollRequest) (int, error) {
	switch item.Type {
	case actor.ItemCustomRoll:
		if item.Dice1 != "" {
			total, err := s.Pool(item.Dice1, item.Dice2)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidRoll, err)
			}
			return total, nil
		}
		return specialtyPool(s, item.Dice2, req.Ability)
	case actor.ItemSpecialty:
		return specialtyPool(s, item.Skill, req.Ability)
	}
	return 0, fmt.Errorf("%w: item %s is not rollable", ErrInvalidRoll, item.ID)
}

func specialtyPool(s *actor.Sheet, skill, ability string) (int, error) {
	total, err := s.Pool(ability, skill)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRoll, err)
	}
	return total + 1, nil
}

func traitLabel(traits map[string]actor.Trait, key string) string {
	key = strings.ToLower(key)
	if t, ok := traits[key]; ok && t.Name != "" {
		return labels.Localize(t.Name)
	}
	return labels.Localize(labels.SkillLabel(key))
}
