package harness

// TraceEvent is a snapshot of the playback machine taken after one
// scenario step.
type TraceEvent struct {
	// Step is the action that produced this snapshot.
	Step string `json:"step"`

	// Ms is the elapse amount, set only for elapse steps.
	Ms int64 `json:"ms,omitempty"`

	// At is the virtual clock in milliseconds after the step.
	At int64 `json:"at_ms"`

	// State is the machine state: idle, playing, or paused.
	State string `json:"state"`

	// Slide is the current 0-based slide index.
	Slide int `json:"slide"`

	// Progress is the current slide's bar fraction, rounded to 3 decimals.
	Progress float64 `json:"progress"`

	// Pending counts armed advance timers. The invariant is at most one.
	Pending int `json:"pending_timers"`

	// Notice carries a user-facing notice raised during the step,
	// currently only the audio-blocked message.
	Notice string `json:"notice,omitempty"`

	// Err records a step failure, e.g. opening a story with no slides.
	Err string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step applied and every
	// assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one snapshot per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Final returns the last snapshot, or nil for an empty trace.
func (r *Result) Final() *TraceEvent {
	if len(r.Trace) == 0 {
		return nil
	}
	return &r.Trace[len(r.Trace)-1]
}
