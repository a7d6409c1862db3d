package actor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating limits checked by Validate.
const (
	MaxRating   = 5
	MaxHumanity = 10
)

// Validate reports every problem with the sheet's values at once.
func (s *Sheet) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := ParseGameLine(string(s.Type)); err != nil {
		add("type: %v", err)
	}

	for group, traits := range map[string]map[string]Trait{"abilities": s.Abilities, "skills": s.Skills} {
		for k, t := range traits {
			if k != strings.ToLower(k) {
				add("%s.%s: key must be lowercase", group, k)
			}
			if t.Value < 0 || t.Value > MaxRating {
				add("%s.%s: value %d outside 0..%d", group, k, t.Value, MaxRating)
			}
		}
	}
	for group, powers := range map[string]map[string]Power{"disciplines": s.Disciplines, "edges": s.Edges} {
		for k, p := range powers {
			if p.Value < 0 || p.Value > MaxRating {
				add("%s.%s: value %d outside 0..%d", group, k, p.Value, MaxRating)
			}
		}
	}

	for name, d := range map[string]Damage{"health": s.Health, "willpower": s.Willpower} {
		if d.Max < 0 || d.Superficial < 0 || d.Aggravated < 0 {
			add("%s: negative counter", name)
		}
		if d.Superficial+d.Aggravated > d.Max {
			add("%s: %d damage exceeds max %d", name, d.Superficial+d.Aggravated, d.Max)
		}
	}

	if s.Humanity.Value < 0 || s.Humanity.Stains < 0 || s.Humanity.Value+s.Humanity.Stains > MaxHumanity {
		add("humanity: value %d with %d stains outside 0..%d", s.Humanity.Value, s.Humanity.Stains, MaxHumanity)
	}

	for name, l := range map[string]Level{"hunger": s.Hunger, "rage": s.Rage, "harano": s.Harano, "hauglosk": s.Hauglosk} {
		if l.Value < 0 || l.Value > MaxRating {
			add("%s: value %d outside 0..%d", name, l.Value, MaxRating)
		}
	}
	if s.Despair.Value < 0 || s.Despair.Value > 1 {
		add("despair: value %d outside 0..1", s.Despair.Value)
	}
	for name, l := range map[string]Level{"desperation": s.Desperation, "danger": s.Danger} {
		if l.Value < 0 || l.Marked < 0 || l.Value+l.Marked > MaxRating {
			add("%s: %d+%d outside 0..%d", name, l.Value, l.Marked, MaxRating)
		}
	}

	seen := make(map[string]bool, len(s.Items))
	for i, item := range s.Items {
		if item.ID == "" {
			add("items.%d: missing id", i)
		} else if seen[item.ID] {
			add("items.%d: duplicate id %s", i, item.ID)
		}
		seen[item.ID] = true
		if !itemTypes[item.Type] {
			add("items.%d: unknown type %q", i, item.Type)
		}
	}

	return errors.Join(errs...)
}

// FromTemplate builds a new sheet from a template. Derived values are
// recomputed and the template's timestamps are dropped.
func FromTemplate(tmpl *Sheet, name string) (*Sheet, error) {
	s := tmpl.Clone()
	s.ID = uuid.New()
	if name != "" {
		s.Name = name
	}
	if s.Name == "" {
		s.Name = "Unnamed"
	}
	s.Health.Normalize()
	s.Willpower.Normalize()
	for i := range s.Items {
		if s.Items[i].ID == "" {
			s.Items[i].ID = uuid.New().String()
		}
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", tmpl.Template, err)
	}
	return s, nil
}
