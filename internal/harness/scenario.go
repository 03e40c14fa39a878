package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted playback session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Slides describes the story being played.
	Slides []SlideSpec `yaml:"slides"`

	// Loop controls end-of-story behavior: wrap to the first slide (the
	// default) or close the session.
	Loop *bool `yaml:"loop,omitempty"`

	// Audio attaches a fake audio track to the session.
	Audio bool `yaml:"audio,omitempty"`

	// AudioBlocked scripts the audio track to refuse Play, the way a
	// browser autoplay policy would.
	AudioBlocked bool `yaml:"audio_blocked,omitempty"`

	// Steps is the viewer gesture script.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SlideSpec describes one slide of the scripted story.
type SlideSpec struct {
	// DurationMs overrides the display time. Zero means the default.
	DurationMs int64 `yaml:"duration_ms,omitempty"`
}

// Step is one viewer gesture.
type Step struct {
	// Action is one of: open, elapse, press, release, tap_next, tap_prev,
	// close.
	Action string `yaml:"action"`

	// Ms is the virtual time to advance. Required for elapse, forbidden
	// otherwise.
	Ms int64 `yaml:"ms,omitempty"`
}

// Step action constants.
const (
	StepOpen    = "open"
	StepElapse  = "elapse"
	StepPress   = "press"
	StepRelease = "release"
	StepTapNext = "tap_next"
	StepTapPrev = "tap_prev"
	StepClose   = "close"
)

var validActions = map[string]bool{
	StepOpen:    true,
	StepElapse:  true,
	StepPress:   true,
	StepRelease: true,
	StepTapNext: true,
	StepTapPrev: true,
	StepClose:   true,
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios loads every .yaml file in dir, sorted by filename so test
// order is stable.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scanning scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks structural requirements before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, slide := range s.Slides {
		if slide.DurationMs < 0 {
			return fmt.Errorf("slide %d: negative duration", i)
		}
	}
	for i, step := range s.Steps {
		if !validActions[step.Action] {
			return fmt.Errorf("step %d: unknown action %q", i, step.Action)
		}
		if step.Action == StepElapse && step.Ms <= 0 {
			return fmt.Errorf("step %d: elapse requires ms > 0", i)
		}
		if step.Action != StepElapse && step.Ms != 0 {
			return fmt.Errorf("step %d: ms is only valid on elapse", i)
		}
	}
	if s.AudioBlocked && !s.Audio {
		return fmt.Errorf("audio_blocked requires audio")
	}
	for i, a := range s.Assertions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

// LoopEnabled resolves the loop default.
func (s *Scenario) LoopEnabled() bool {
	if s.Loop == nil {
		return true
	}
	return *s.Loop
}
