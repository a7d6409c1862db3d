package actor

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FieldUpdate sets one deep-keyed field of a sheet document, for example
// {"health.superficial", 2} or {"items.3.points", 4}.
type FieldUpdate struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// ApplyUpdates writes each update into a JSON sheet document in order.
func ApplyUpdates(doc []byte, updates ...FieldUpdate) ([]byte, error) {
	var err error
	for _, u := range updates {
		doc, err = sjson.SetBytes(doc, u.Path, u.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", u.Path, err)
		}
	}
	return doc, nil
}

// Apply writes updates into the sheet by round-tripping it through JSON.
func (s *Sheet) Apply(updates ...FieldUpdate) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal sheet: %w", err)
	}
	doc, err = ApplyUpdates(doc, updates...)
	if err != nil {
		return err
	}
	var next Sheet
	if err := json.Unmarshal(doc, &next); err != nil {
		return fmt.Errorf("failed to unmarshal sheet: %w", err)
	}
	*s = next
	return nil
}

// FieldInt reads an integer field from a sheet document.
func FieldInt(doc []byte, path string) (int, bool) {
	r := gjson.GetBytes(doc, path)
	if !r.Exists() {
		return 0, false
	}
	return int(r.Int()), true
}

// Summary is the listing view of a stored sheet.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Summarize extracts the listing fields without decoding the whole sheet.
func Summarize(doc []byte) Summary {
	r := gjson.GetManyBytes(doc, "id", "name", "type")
	return Summary{ID: r[0].String(), Name: r[1].String(), Type: r[2].String()}
}
