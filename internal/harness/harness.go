package harness

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hooray-app/hooray/internal/player"
	"github.com/hooray-app/hooray/internal/story"
	"github.com/hooray-app/hooray/internal/testutil"
)

// Run executes a scenario and returns the recorded trace with assertion
// results. An error is returned only for malformed scenarios; playback
// outcomes, including a failed open, land in the trace instead.
func Run(s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	timers := testutil.NewManualTimers()
	opts := []player.Option{player.WithLoop(s.LoopEnabled())}

	var audio *testutil.FakeAudio
	if s.Audio {
		audio = testutil.NewFakeAudio()
		if s.AudioBlocked {
			audio.PlayErr = errors.New("autoplay blocked")
		}
		opts = append(opts, player.WithAudio(audio))
	}

	var notice string
	opts = append(opts, player.WithNotifier(func(msg string) {
		notice = msg
	}))

	p := player.New(buildSlides(s.Slides), timers, opts...)

	result := NewResult()
	for _, step := range s.Steps {
		notice = ""
		var stepErr error

		switch step.Action {
		case StepOpen:
			stepErr = p.Open()
		case StepElapse:
			timers.Advance(time.Duration(step.Ms) * time.Millisecond)
		case StepPress:
			p.Pause()
		case StepRelease:
			p.Resume()
		case StepTapNext:
			p.TapNext()
		case StepTapPrev:
			p.TapPrev()
		case StepClose:
			p.Close()
		}

		result.Trace = append(result.Trace, snapshot(step, p, timers, notice, stepErr))
	}

	checkAssertions(s, result)
	return result, nil
}

// buildSlides converts slide specs into a playable story.
func buildSlides(specs []SlideSpec) []story.Slide {
	slides := make([]story.Slide, len(specs))
	for i, spec := range specs {
		slides[i] = story.Slide{
			ID:         fmt.Sprintf("s%d", i+1),
			Text:       fmt.Sprintf("Slide %d", i+1),
			DurationMs: spec.DurationMs,
		}
	}
	return slides
}

func snapshot(step Step, p *player.Player, timers *testutil.ManualTimers, notice string, err error) TraceEvent {
	ev := TraceEvent{
		Step:    step.Action,
		Ms:      step.Ms,
		At:      timers.Now().Milliseconds(),
		State:   p.State().String(),
		Slide:   p.Index(),
		Pending: timers.PendingTimers(),
		Notice:  notice,
	}
	if bars := p.Progress(); len(bars) > 0 {
		ev.Progress = math.Round(bars[ev.Slide]*1000) / 1000
	}
	if err != nil {
		ev.Err = err.Error()
	}
	return ev
}
