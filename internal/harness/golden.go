package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden file payload for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// RunWithGolden executes a scenario, fails the test on any assertion
// error, and compares the trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		t.Fatalf("running scenario %s: %v", s.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", s.Name, msg)
	}

	AssertGolden(t, s.Name, result)
}

// AssertGolden compares an already-computed result's trace against a
// golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	traceJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		t.Fatalf("marshaling trace: %v", err)
	}
	traceJSON = append(traceJSON, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
}
