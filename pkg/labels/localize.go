package labels

import (
	"strings"
	"unicode"
)

var english = map[string]string{
	"WOD5E.CriticalSuccess":            "Critical Success!",
	"WOD5E.MessyCritical":              "Messy Critical!",
	"WOD5E.Success":                    "Success",
	"WOD5E.Fail":                       "Fail",
	"WOD5E.Successes":                  "Successes",
	"WOD5E.DesperationSuccess":         "Desperation Success!",
	"WOD5E.DespairFailure":             "Despair!",
	"WOD5E.PossibleDesperationFailure": "Possible Desperation Failure",
	"WOD5E.WillpowerFull":              "Willpower damage is already full!",
	"WOD5E.HungerIncreased":            "Hunger increased",
	"WOD5E.RageConsumed":               "Rage consumed",
	"WOD5E.Difficulty":                 "Difficulty",
	"WOD5E.Willpower":                  "Willpower",
	"WOD5E.Frenzy":                     "Frenzy",
	"WOD5E.Remorse":                    "Remorse",
	"WOD5E.Harano":                     "Harano",
	"WOD5E.Hauglosk":                   "Hauglosk",
	"WOD5E.BloodSorcery":               "Blood Sorcery",
	"WOD5E.ThinBloodAlchemy":           "Thin-Blood Alchemy",
}

// Localize returns the English text for key. Unknown keys are rendered by
// splitting the camel-cased suffix into words.
func Localize(key string) string {
	if s, ok := english[key]; ok {
		return s
	}
	name, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return key
	}

	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
