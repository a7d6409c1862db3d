// Package labels builds localization keys and display strings for sheet
// fields, powers and items.
package labels

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prefix is prepended to every localization key.
const Prefix = "WOD5E."

// Capitalize upper-cases the first letter of s and leaves the rest alone.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	first, rest := s[:1], s[1:]
	return strings.ToUpper(first) + rest
}

// FeatureLabel returns the key for a single-word field, e.g. "merit" -> "WOD5E.Merit".
func FeatureLabel(s string) string {
	return Prefix + Capitalize(s)
}

// SkillLabel returns the key for a possibly multi-word skill name,
// e.g. "animal ken" -> "WOD5E.AnimalKen".
func SkillLabel(s string) string {
	title := cases.Title(language.English, cases.NoLower)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = title.String(w)
	}
	return Prefix + strings.Join(words, "")
}

var disciplines = map[string]string{
	"animalism":  "WOD5E.Animalism",
	"auspex":     "WOD5E.Auspex",
	"celerity":   "WOD5E.Celerity",
	"dominate":   "WOD5E.Dominate",
	"fortitude":  "WOD5E.Fortitude",
	"obfuscate":  "WOD5E.Obfuscate",
	"potence":    "WOD5E.Potence",
	"presence":   "WOD5E.Presence",
	"protean":    "WOD5E.Protean",
	"sorcery":    "WOD5E.BloodSorcery",
	"oblivion":   "WOD5E.Oblivion",
	"alchemy":    "WOD5E.ThinBloodAlchemy",
	"rituals":    "WOD5E.Rituals",
	"ceremonies": "WOD5E.Ceremonies",
}

var edges = map[string]string{
	"arsenal":            "WOD5E.Arsenal",
	"ordnance":           "WOD5E.Ordnance",
	"library":            "WOD5E.Library",
	"improvisedgear":     "WOD5E.ImprovisedGear",
	"globalaccess":       "WOD5E.GlobalAccess",
	"dronejockey":        "WOD5E.DroneJockey",
	"beastwhisperer":     "WOD5E.BeastWhisperer",
	"sensetheunnatural":  "WOD5E.SenseTheUnnatural",
	"repeltheunnatural":  "WOD5E.RepelTheUnnatural",
	"thwarttheunnatural": "WOD5E.ThwartTheUnnatural",
	"artifact":           "WOD5E.Artifact",
}

// DisciplineLabel returns the key for a discipline. When rolling, rituals use
// blood sorcery and ceremonies use oblivion.
func DisciplineLabel(key string, roll bool) string {
	if roll {
		switch key {
		case "rituals":
			key = "sorcery"
		case "ceremonies":
			key = "oblivion"
		}
	}
	return disciplines[key]
}

// Disciplines lists every known discipline key in sorted order.
func Disciplines() []string {
	return slices.Sorted(maps.Keys(disciplines))
}

// EdgeLabel returns the key for a hunter edge, or "" if unknown.
func EdgeLabel(key string) string {
	return edges[key]
}

// Edges lists every known edge key in sorted order.
func Edges() []string {
	return slices.Sorted(maps.Keys(edges))
}

// Visibler is implemented by sheet entries that can be hidden.
type Visibler interface {
	IsVisible() bool
}

// Visible returns the subset of m whose values are visible.
func Visible[V Visibler](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		if v.IsVisible() {
			out[k] = v
		}
	}
	return out
}

// OrderKeys returns the keys of m. When alphabetical is false the canonical
// order is used, followed by any remaining keys sorted.
func OrderKeys[V any](m map[string]V, canonical []string, alphabetical bool) []string {
	if alphabetical {
		return slices.Sorted(maps.Keys(m))
	}
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range canonical {
		if _, ok := m[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
