package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running sheets API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite creates a sheet from the suite's template, opens a session on it
// and executes each step.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}
	fail := func(err error) (TestRunResult, error) {
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	body, status, err := r.call(ctx, http.MethodPost, "/v1/sheets", map[string]string{"template": suite.Template, "name": suite.Name})
	if err != nil {
		return fail(fmt.Errorf("failed to create sheet: %w", err))
	}
	if status != http.StatusCreated || json.Unmarshal(body, &created) != nil {
		return fail(fmt.Errorf("failed to create sheet: status %d: %s", status, body))
	}
	result.SheetID = created.ID
	defer r.cleanup(result.SheetID)

	editable := suite.Editable == nil || *suite.Editable
	body, status, err = r.call(ctx, http.MethodPost, "/v1/sessions", map[string]any{"sheet_id": created.ID, "editable": editable})
	if err != nil || status != http.StatusCreated {
		return fail(fmt.Errorf("failed to open session: status %d: %v %s", status, err, body))
	}
	result.SessionID, err = uuid.Parse(gjson.GetBytes(body, "id").String())
	if err != nil {
		return fail(fmt.Errorf("failed to parse session id: %w", err))
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, result.SheetID, result.SessionID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if !stepResult.Success {
			r.Logger("      FAIL: %v", stepResult.Error)
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, sheetID, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	res := TestResult{StepName: step.Name}
	finish := func(err error) TestResult {
		res.Error = err
		res.Success = err == nil
		res.Duration = time.Since(start)
		return res
	}

	method, path, payload, err := stepRequest(sessionID, step)
	if err != nil {
		return finish(err)
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	body, status, err := r.call(stepCtx, method, path, payload)
	if err != nil {
		return finish(err)
	}
	res.Response = string(body)

	want := http.StatusOK
	if step.Action == ActionRoll && step.Roll != nil && step.Roll.Async {
		want = http.StatusAccepted
	}
	if step.Expect.Status != nil {
		want = *step.Expect.Status
	}
	if status != want {
		return finish(fmt.Errorf("status %d, want %d: %s", status, want, body))
	}

	if err := matchPaths("response", body, step.Expect.Response); err != nil {
		return finish(err)
	}

	if step.Expect.LogEntries != nil {
		if status == http.StatusAccepted {
			err = WaitForLogEntries(stepCtx, r, sheetID, *step.Expect.LogEntries)
		} else {
			err = r.checkLogEntries(stepCtx, sheetID, *step.Expect.LogEntries)
		}
		if err != nil {
			return finish(err)
		}
	}

	if len(step.Expect.Sheet) > 0 {
		sheetBody, status, err := r.call(stepCtx, http.MethodGet, "/v1/sheets/"+sheetID.String(), nil)
		if err != nil || status != http.StatusOK {
			return finish(fmt.Errorf("failed to read sheet: status %d: %v", status, err))
		}
		if err := matchPaths("sheet", sheetBody, step.Expect.Sheet); err != nil {
			return finish(err)
		}
	}
	return finish(nil)
}

// stepRequest maps a step onto its API call.
func stepRequest(sessionID uuid.UUID, step TestStep) (method, path string, payload any, err error) {
	base := "/v1/sessions/" + sessionID.String()
	switch step.Action {
	case ActionStep:
		return http.MethodPost, base + "/tracks/" + step.Track + "/step", map[string]int{"index": step.Index}, nil
	case ActionMax:
		return http.MethodPost, base + "/tracks/" + step.Track + "/max", map[string]int{"delta": step.Delta}, nil
	case ActionDots:
		return http.MethodPost, base + "/dots/" + step.Field, map[string]any{"index": step.Index, "empty": step.Empty}, nil
	case ActionLock:
		return http.MethodPost, base + "/lock", nil, nil
	case ActionView:
		return http.MethodGet, base, nil, nil
	case ActionRoll:
		if step.Roll == nil {
			return "", "", nil, fmt.Errorf("roll step %q has no roll", step.Name)
		}
		return http.MethodPost, base + "/rolls", step.Roll, nil
	}
	return "", "", nil, fmt.Errorf("unknown action %q", step.Action)
}

// matchPaths compares gjson paths in doc against expected values by their
// JSON encoding.
func matchPaths(what string, doc []byte, want map[string]any) error {
	var problems []string
	for path, expected := range want {
		got := gjson.GetBytes(doc, path)
		if !got.Exists() {
			problems = append(problems, fmt.Sprintf("%s.%s missing", what, path))
			continue
		}
		exp, err := json.Marshal(expected)
		if err != nil {
			return err
		}
		if !sameJSON(got, gjson.ParseBytes(exp)) {
			problems = append(problems, fmt.Sprintf("%s.%s = %s, want %s", what, path, got.Raw, exp))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func sameJSON(a, b gjson.Result) bool {
	if a.Type == gjson.Number && b.Type == gjson.Number {
		return a.Float() == b.Float()
	}
	if a.IsObject() || a.IsArray() {
		var x, y any
		if json.Unmarshal([]byte(a.Raw), &x) != nil || json.Unmarshal([]byte(b.Raw), &y) != nil {
			return false
		}
		xb, _ := json.Marshal(x)
		yb, _ := json.Marshal(y)
		return bytes.Equal(xb, yb)
	}
	return a.Type == b.Type && a.String() == b.String()
}

func (r *Runner) checkLogEntries(ctx context.Context, sheetID uuid.UUID, want int) error {
	n, err := r.logLength(ctx, sheetID)
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("log has %d entries, want %d", n, want)
	}
	return nil
}

func (r *Runner) logLength(ctx context.Context, sheetID uuid.UUID) (int, error) {
	body, status, err := r.call(ctx, http.MethodGet, "/v1/sheets/"+sheetID.String()+"/log", nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("log endpoint returned %d: %s", status, body)
	}
	return len(gjson.ParseBytes(body).Array()), nil
}

func (r *Runner) cleanup(sheetID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := r.call(ctx, http.MethodDelete, "/v1/sheets/"+sheetID.String(), nil); err != nil {
		r.Logger("      cleanup failed: %v", err)
	}
}

func (r *Runner) call(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
