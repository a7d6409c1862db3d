package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}
	return path
}

func TestValidateFile_ShippedTemplates(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "data", "templates", "*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected shipped templates")
	}
	for _, f := range files {
		v := &TemplateValidator{}
		if err := v.validateFile(f); err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
}

func TestValidateFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		want     string
	}{
		{"extension", "mortal.txt", `{}`, ".json extension"},
		{"filename case", "My-Mortal.json", `{"type":"mortal"}`, "snake_case"},
		{"unknown field", "mortal.json", `{"type":"mortal","hitpoints":3}`, "strict JSON"},
		{"template mismatch", "mortal.json", `{"type":"mortal","template":"vampire"}`, "does not match"},
		{"bad line", "mortal.json", `{"type":"mummy"}`, "mummy"},
		{"bad rating", "mortal.json", `{"type":"mortal","skills":{"occult":{"name":"x","value":7}}}`, "skills.occult"},
		{"unknown discipline", "vampire.json", `{"type":"vampire","disciplines":{"thaumaturgy":{"value":1}}}`, "thaumaturgy"},
		{"unknown edge", "hunter.json", `{"type":"hunter","edges":{"laser":{"value":1}}}`, "laser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &TemplateValidator{}
			err := v.validateFile(writeTemplate(t, tt.filename, tt.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
