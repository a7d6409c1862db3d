package actor

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
)

// ErrUnknownTrait is returned when a pool names an ability or skill the
// sheet does not have.
var ErrUnknownTrait = errors.New("unknown trait")

// GameLine selects sheet behavior: which trackers exist and which modifier
// dice a roll uses.
type GameLine string

const (
	LineVampire  GameLine = "vampire"
	LineGhoul    GameLine = "ghoul"
	LineHunter   GameLine = "hunter"
	LineWerewolf GameLine = "werewolf"
	LineMortal   GameLine = "mortal"
	LineCell     GameLine = "cell"
)

// GameLines lists every supported line.
var GameLines = []GameLine{LineVampire, LineGhoul, LineHunter, LineWerewolf, LineMortal, LineCell}

func ParseGameLine(s string) (GameLine, error) {
	for _, l := range GameLines {
		if string(l) == strings.ToLower(s) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown game line %q", s)
}

// Canonical ability and skill ordering used when alphabetical sorting is off.
var (
	AbilityOrder = []string{
		"strength", "dexterity", "stamina",
		"charisma", "manipulation", "composure",
		"intelligence", "wits", "resolve",
	}
	SkillOrder = []string{
		"athletics", "brawl", "craft", "drive", "firearms", "larceny", "melee", "stealth", "survival",
		"animal ken", "etiquette", "insight", "intimidation", "leadership", "performance", "persuasion", "streetwise", "subterfuge",
		"academics", "awareness", "finance", "investigation", "medicine", "occult", "politics", "science", "technology",
	}
)

// Trait is a named dot rating.
type Trait struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Power is a discipline or edge rating.
type Power struct {
	Value   int  `json:"value"`
	Visible bool `json:"visible"`
}

func (p Power) IsVisible() bool { return p.Visible }

// Sheet is the persisted character record.
type Sheet struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Type     GameLine  `json:"type"`
	Template string    `json:"template,omitempty"`

	Abilities map[string]Trait `json:"abilities,omitempty"`
	Skills    map[string]Trait `json:"skills,omitempty"`

	Health      Damage   `json:"health"`
	Willpower   Damage   `json:"willpower"`
	Humanity    Humanity `json:"humanity"`
	Hunger      Level    `json:"hunger"`
	Rage        Level    `json:"rage"`
	Harano      Level    `json:"harano"`
	Hauglosk    Level    `json:"hauglosk"`
	Despair     Level    `json:"despair"`
	Desperation Level    `json:"desperation"`
	Danger      Level    `json:"danger"`

	Disciplines map[string]Power `json:"disciplines,omitempty"`
	Edges       map[string]Power `json:"edges,omitempty"`

	Headers    map[string]string `json:"headers,omitempty"` // tenets, touchstones, bane, creedfields
	Biography  string            `json:"biography,omitempty"`
	Appearance string            `json:"appearance,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Equipment  string            `json:"equipment,omitempty"`

	Items []Item `json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attributes flattens abilities and skills into one lookup map.
func (s *Sheet) Attributes() map[string]int {
	attrs := make(map[string]int, len(s.Abilities)+len(s.Skills))
	for k, t := range s.Abilities {
		attrs[k] = t.Value
	}
	for k, t := range s.Skills {
		attrs[k] = t.Value
	}
	return attrs
}

// Actor builds a d20 actor carrying the sheet's ratings as attributes and
// its health as hit points.
func (s *Sheet) Actor() (*d20.Actor, error) {
	// d20 rejects non-positive hit points
	hp := max(s.Health.Max, 1)

	a, err := d20.NewActor(s.ID.String()).
		WithHP(hp).
		WithAttributes(s.Attributes()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	current := int(s.Health.Value)
	if current > 0 && current < hp {
		if err := a.SetHP(current); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return a, nil
}

// Pool sums the named ability and skill. An empty name contributes nothing.
func (s *Sheet) Pool(ability, skill string) (int, error) {
	a, err := s.Actor()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, key := range []string{ability, skill} {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		v, ok := a.Attribute(key)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownTrait, key)
		}
		total += v
	}
	return total, nil
}

// Item returns the item with the given ID and its index.
func (s *Sheet) Item(id string) (*Item, int) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of the sheet.
func (s *Sheet) Clone() *Sheet {
	c := *s
	c.Abilities = maps.Clone(s.Abilities)
	c.Skills = maps.Clone(s.Skills)
	c.Disciplines = maps.Clone(s.Disciplines)
	c.Edges = maps.Clone(s.Edges)
	c.Headers = maps.Clone(s.Headers)
	c.Items = append([]Item(nil), s.Items...)
	return &c
}
