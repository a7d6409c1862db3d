package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// Step actions
const (
	ActionStep = "step"
	ActionMax  = "max"
	ActionDots = "dots"
	ActionLock = "lock"
	ActionRoll = "roll"
	ActionView = "view"
)

// TestSuite defines a complete integration test case
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `json:"name"`
	Template string     `json:"template,omitempty"` // Used for regular tests
	Editable *bool      `json:"editable,omitempty"` // Defaults to true
	Steps    []TestStep `json:"steps,omitempty"`
	Cases    []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single sheet action and its expected outcomes
type TestStep struct {
	Name   string             `json:"name,omitempty"`
	Action string             `json:"action"`
	Track  string             `json:"track,omitempty"`
	Field  string             `json:"field,omitempty"`
	Index  int                `json:"index,omitempty"`
	Delta  int                `json:"delta,omitempty"`
	Empty  bool               `json:"empty,omitempty"`
	Roll   *sheet.RollRequest `json:"roll,omitempty"`
	Expect Expectations       `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status *int `json:"status,omitempty"`
	// Sheet maps gjson paths on the stored sheet to expected values,
	// e.g. {"health.superficial": 1}
	Sheet map[string]any `json:"sheet,omitempty"`
	// Response maps gjson paths on the step's response body to expected values
	Response map[string]any `json:"response,omitempty"`
	// LogEntries is the expected roll log length after the step
	LogEntries *int `json:"log_entries,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Response string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	SheetID   uuid.UUID
	SessionID uuid.UUID
	Duration  time.Duration
	Error     error
}

// Passed reports whether every step succeeded.
func (r TestRunResult) Passed() bool {
	if r.Error != nil {
		return false
	}
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}
