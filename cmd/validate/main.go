package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/labels"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <template.json>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &TemplateValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// TemplateValidator checks a sheet template file beyond what the sheet's
// own Validate covers: file naming, strict JSON, and known power keys.
type TemplateValidator struct {
	errors []string
}

func (v *TemplateValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("template file must have .json extension: %s", baseName)
	}
	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidTemplateFilename(nameWithoutExt) {
		return fmt.Errorf("template filename '%s' must be lowercase snake_case", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	s, err := decodeStrict(data)
	if err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateTemplate(s, nameWithoutExt)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func decodeStrict(data []byte) (*actor.Sheet, error) {
	var s actor.Sheet
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (v *TemplateValidator) validateTemplate(s *actor.Sheet, name string) {
	if s.Template != "" && s.Template != name {
		v.addError(fmt.Sprintf("template field '%s' does not match filename '%s'", s.Template, name))
	}

	if _, err := sheet.BehaviorFor(s.Type); err != nil {
		v.addError(err.Error())
	}

	s.Health.Normalize()
	s.Willpower.Normalize()
	if err := s.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			v.addError(line)
		}
	}

	for key := range s.Disciplines {
		if labels.DisciplineLabel(key, false) == "" {
			v.addError(fmt.Sprintf("unknown discipline '%s'", key))
		}
	}
	for key := range s.Edges {
		if labels.EdgeLabel(key) == "" {
			v.addError(fmt.Sprintf("unknown edge '%s'", key))
		}
	}
	for i, item := range s.Items {
		if item.ID != "" && !isValidID(item.ID) {
			v.addError(fmt.Sprintf("items.%d id '%s' should be lowercase snake_case", i, item.ID))
		}
	}
}

func (v *TemplateValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidTemplateFilename(name string) bool {
	// Allow 'x.' prefix for experimental templates
	return isValidID(strings.TrimPrefix(name, "x."))
}
