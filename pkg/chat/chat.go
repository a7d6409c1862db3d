package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/labels"
)

// Narrative headline keys shown above a roll.
const (
	KeyCriticalSuccess    = "WOD5E.CriticalSuccess"
	KeyMessyCritical      = "WOD5E.MessyCritical"
	KeyDesperationSuccess = "WOD5E.DesperationSuccess"
	KeyDespairFailure     = "WOD5E.DespairFailure"
	KeyPossibleDespair    = "WOD5E.PossibleDesperationFailure"
	KeyWillpowerFull      = "WOD5E.WillpowerFull"
	KeyHungerIncreased    = "WOD5E.HungerIncreased"
	KeyRageConsumed       = "WOD5E.RageConsumed"
	KeySuccess            = "WOD5E.Success"
	KeyFail               = "WOD5E.Fail"
	KeySuccesses          = "WOD5E.Successes"
)

// Message is one entry in a sheet's roll log.
type Message struct {
	ID        uuid.UUID    `json:"id"`
	SheetID   uuid.UUID    `json:"sheet_id"`
	Speaker   string       `json:"speaker"`
	Label     string       `json:"label"`
	Result    *dice.Result `json:"result,omitempty"`
	Notices   []string     `json:"notices,omitempty"` // localization keys
	CreatedAt time.Time    `json:"created_at"`
}

// NewMessage builds a log entry for a resolved roll.
func NewMessage(sheetID uuid.UUID, speaker, label string, result *dice.Result, notices ...string) Message {
	return Message{
		ID:        uuid.New(),
		SheetID:   sheetID,
		Speaker:   speaker,
		Label:     label,
		Result:    result,
		Notices:   notices,
		CreatedAt: time.Now(),
	}
}

// Headlines returns the narrative keys for a result, in display order.
func Headlines(r *dice.Result) []string {
	if r == nil {
		return nil
	}
	var out []string
	if r.Flags.MessyCritical {
		out = append(out, KeyMessyCritical)
	} else if r.Flags.CriticalWin {
		out = append(out, KeyCriticalSuccess)
	}
	switch {
	case r.Flags.DesperationSuccess:
		out = append(out, KeyDesperationSuccess)
	case r.Flags.DespairFailure:
		out = append(out, KeyDespairFailure)
	case r.Flags.PossibleDespair:
		out = append(out, KeyPossibleDespair)
	}
	return out
}

// Format renders a message as plain text, one line per element.
func Format(m Message) string {
	var sb strings.Builder
	if m.Speaker != "" {
		sb.WriteString(m.Speaker + ": ")
	}
	sb.WriteString(strings.ToUpper(m.Label))
	sb.WriteString("\n")

	if r := m.Result; r != nil {
		for _, key := range Headlines(r) {
			sb.WriteString(labels.Localize(key) + "\n")
		}

		sb.WriteString(fmt.Sprintf("%s: %d", labels.Localize(KeySuccesses), r.TotalSuccesses))
		if r.Passed != nil {
			outcome := KeyFail
			if *r.Passed {
				outcome = KeySuccess
			}
			sb.WriteString(fmt.Sprintf(" (%s)", labels.Localize(outcome)))
		}
		sb.WriteString("\n")
		sb.WriteString(FormatDice(r))
		sb.WriteString("\n")
	}

	headlines := Headlines(m.Result)
	for _, n := range m.Notices {
		if slices.Contains(headlines, n) {
			continue
		}
		sb.WriteString(labels.Localize(n) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDice lists faces grouped by kind, e.g. "[10 10 7 3 2] | [1 10]".
func FormatDice(r *dice.Result) string {
	var ord, mod []string
	for _, d := range r.Dice {
		face := fmt.Sprint(d.Face)
		if d.Kind == dice.KindModifier {
			mod = append(mod, face)
		} else {
			ord = append(ord, face)
		}
	}
	out := "[" + strings.Join(ord, " ") + "]"
	if r.Variant != dice.VariantNone {
		out += " | [" + strings.Join(mod, " ") + "]"
	}
	return out
}
