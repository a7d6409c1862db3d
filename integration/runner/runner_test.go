package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

func TestMatchPaths(t *testing.T) {
	doc := []byte(`{"health":{"max":5,"superficial":1,"value":4.5},"name":"Lucia","items":[{"id":"a"}]}`)

	if err := matchPaths("sheet", doc, map[string]any{
		"health.superficial": 1,
		"health.value":       4.5,
		"name":               "Lucia",
		"items.#":            1,
	}); err != nil {
		t.Errorf("matchPaths() unexpected error: %v", err)
	}

	err := matchPaths("sheet", doc, map[string]any{"health.max": 6, "hunger.value": 1})
	if err == nil {
		t.Fatal("expected mismatch")
	}
	for _, want := range []string{"health.max = 5, want 6", "hunger.value missing"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestStepRequest(t *testing.T) {
	sid := uuid.New()
	method, path, _, err := stepRequest(sid, TestStep{Action: ActionStep, Track: "health", Index: 2})
	if err != nil || method != http.MethodPost || path != "/v1/sessions/"+sid.String()+"/tracks/health/step" {
		t.Errorf("stepRequest() = %s %s, %v", method, path, err)
	}
	if _, _, _, err := stepRequest(sid, TestStep{Action: ActionRoll}); err == nil {
		t.Error("expected error for roll without request")
	}
	if _, _, _, err := stepRequest(sid, TestStep{Action: "dance"}); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, v any) {
		data, _ := json.Marshal(v)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.json", TestSuite{Name: "a", Template: "vampire"})
	write("b.json", TestSuite{Name: "b", Template: "hunter"})
	write("all.json", TestSuite{Name: "all", Cases: []string{"a.json", "b.json"}})

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(dir, "all.json"), dir)
	if err != nil {
		t.Fatalf("LoadTestSuiteWithExpansion() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Name != "a" || jobs[1].Name != "b" {
		t.Errorf("jobs = %+v", jobs)
	}
}

// fakeAPI serves just enough of the sheets API for one step.
func fakeAPI(t *testing.T, sheetID, sessionID uuid.UUID) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sheets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": sheetID})
	})
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sheet.Session{ID: sessionID, SheetID: sheetID})
	})
	mux.HandleFunc("POST /v1/sessions/{sid}/tracks/health/step", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"applied":true}`))
	})
	mux.HandleFunc("GET /v1/sheets/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"health":{"superficial":1}}`))
	})
	mux.HandleFunc("DELETE /v1/sheets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSuite(t *testing.T) {
	sheetID, sessionID := uuid.New(), uuid.New()
	srv := fakeAPI(t, sheetID, sessionID)

	r := NewRunner(srv.URL)
	res, err := r.RunSuite(context.Background(), TestSuite{
		Name:     "step",
		Template: "vampire",
		Steps: []TestStep{
			{Name: "hit", Action: ActionStep, Track: "health", Expect: Expectations{
				Response: map[string]any{"applied": true},
				Sheet:    map[string]any{"health.superficial": 1},
			}},
			{Name: "wrong", Action: ActionStep, Track: "health", Expect: Expectations{
				Sheet: map[string]any{"health.superficial": 2},
			}},
		},
	})
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}
	if res.SheetID != sheetID || res.SessionID != sessionID {
		t.Errorf("ids = %s/%s", res.SheetID, res.SessionID)
	}
	if len(res.Results) != 2 || !res.Results[0].Success || res.Results[1].Success {
		t.Errorf("results = %+v", res.Results)
	}
	if res.Passed() {
		t.Error("suite with a failing step should not pass")
	}
}
