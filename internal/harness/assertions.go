package harness

import (
	"fmt"
	"strings"
)

// Assertion validates the recorded trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count,
	// final_state.
	Type string `yaml:"type"`

	// Step filters snapshots by producing action (trace_contains,
	// trace_count).
	Step string `yaml:"step,omitempty"`

	// State filters snapshots by machine state (trace_contains,
	// trace_count).
	State string `yaml:"state,omitempty"`

	// Slide filters snapshots by slide index (trace_contains).
	Slide *int `yaml:"slide,omitempty"`

	// States is the expected state order (trace_order). Matched as a
	// subsequence of the trace, not an exact run.
	States []string `yaml:"states,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect contains expected final snapshot fields (final_state).
	// Subset match - only specified fields are validated. Keys: state,
	// slide, at_ms, pending_timers, progress.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Validate checks the assertion is well-formed for its type.
func (a *Assertion) Validate() error {
	switch a.Type {
	case AssertTraceContains:
		if a.Step == "" && a.State == "" && a.Slide == nil {
			return fmt.Errorf("trace_contains needs at least one of step, state, slide")
		}
	case AssertTraceOrder:
		if len(a.States) < 2 {
			return fmt.Errorf("trace_order needs at least two states")
		}
	case AssertTraceCount:
		if a.Step == "" && a.State == "" {
			return fmt.Errorf("trace_count needs step or state")
		}
		if a.Count < 0 {
			return fmt.Errorf("trace_count needs count >= 0")
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("final_state needs expect fields")
		}
		for key := range a.Expect {
			switch key {
			case "state", "slide", "at_ms", "pending_timers", "progress":
			default:
				return fmt.Errorf("final_state: unknown field %q", key)
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// checkAssertions applies every assertion to the result, collecting
// failures rather than stopping at the first.
func checkAssertions(s *Scenario, result *Result) {
	for i, a := range s.Assertions {
		if msg := a.check(result); msg != "" {
			result.AddError(fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}
}

// check returns an empty string on success, otherwise the failure text.
func (a *Assertion) check(result *Result) string {
	switch a.Type {
	case AssertTraceContains:
		for _, ev := range result.Trace {
			if a.matches(ev) {
				return ""
			}
		}
		return fmt.Sprintf("no snapshot matches %s", a.describe())
	case AssertTraceOrder:
		next := 0
		for _, ev := range result.Trace {
			if next < len(a.States) && ev.State == a.States[next] {
				next++
			}
		}
		if next < len(a.States) {
			return fmt.Sprintf("states %v not found in order; stalled at %q", a.States, a.States[next])
		}
		return ""
	case AssertTraceCount:
		n := 0
		for _, ev := range result.Trace {
			if a.matches(ev) {
				n++
			}
		}
		if n != a.Count {
			return fmt.Sprintf("%s matched %d snapshot(s), want %d", a.describe(), n, a.Count)
		}
		return ""
	case AssertFinalState:
		final := result.Final()
		if final == nil {
			return "trace is empty"
		}
		return checkFinalState(a.Expect, final)
	}
	return fmt.Sprintf("unknown assertion type %q", a.Type)
}

func (a *Assertion) matches(ev TraceEvent) bool {
	if a.Step != "" && ev.Step != a.Step {
		return false
	}
	if a.State != "" && ev.State != a.State {
		return false
	}
	if a.Slide != nil && ev.Slide != *a.Slide {
		return false
	}
	return true
}

func (a *Assertion) describe() string {
	var parts []string
	if a.Step != "" {
		parts = append(parts, fmt.Sprintf("step=%s", a.Step))
	}
	if a.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", a.State))
	}
	if a.Slide != nil {
		parts = append(parts, fmt.Sprintf("slide=%d", *a.Slide))
	}
	return strings.Join(parts, " ")
}

func checkFinalState(expect map[string]interface{}, final *TraceEvent) string {
	var failures []string
	for key, want := range expect {
		var got interface{}
		switch key {
		case "state":
			got = final.State
		case "slide":
			got = final.Slide
		case "at_ms":
			got = final.At
		case "pending_timers":
			got = final.Pending
		case "progress":
			got = final.Progress
		}
		if !looseEqual(want, got) {
			failures = append(failures, fmt.Sprintf("%s: got %v, want %v", key, got, want))
		}
	}
	return strings.Join(failures, "; ")
}

// looseEqual compares YAML-decoded values against snapshot fields,
// bridging int/int64/float64 representation differences.
func looseEqual(want, got interface{}) bool {
	if wf, ok := toFloat(want); ok {
		gf, ok := toFloat(got)
		return ok && wf == gf
	}
	return want == got
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
