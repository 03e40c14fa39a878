package testutil

import (
	"sync"
	"time"

	"github.com/hooray-app/hooray/internal/player"
)

// ManualTimers implements player.Timers on a virtual clock that moves only
// when the test calls Advance. Interpolation frames and timer completions
// fire deterministically in virtual-time order: all due frames first, then
// all due completions, both outside the driver's lock so callbacks may
// re-enter the driver (e.g. the player arming the next slide's timer).
type ManualTimers struct {
	mu      sync.Mutex
	now     time.Duration
	timers  []*manualTimer
	interps []*manualInterpolation
}

// NewManualTimers creates a driver at virtual time zero.
func NewManualTimers() *ManualTimers {
	return &ManualTimers{}
}

type manualTimer struct {
	deadline   time.Duration
	onComplete func()
	canceled   bool
	fired      bool
}

// StartTimer schedules onComplete at now+d in virtual time.
func (m *ManualTimers) StartTimer(d time.Duration, onComplete func()) player.Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{deadline: m.now + d, onComplete: onComplete}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.canceled = true
	}
}

// StartInterpolation begins a 0→1 animation over d in virtual time.
func (m *ManualTimers) StartInterpolation(d time.Duration, onFrame func(float64)) player.Interpolation {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := &manualInterpolation{driver: m, duration: d, onFrame: onFrame}
	m.interps = append(m.interps, in)
	return in
}

// Advance moves virtual time forward by d and fires everything that came
// due, in order: interpolation frames (one frame per running animation at
// the new instant), then completed timers. Advancing in several small
// steps yields finer-grained frames than one big step, exactly like a real
// frame loop.
func (m *ManualTimers) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d

	type frame struct {
		fn   func(float64)
		frac float64
	}
	var frames []frame
	for _, in := range m.interps {
		if in.stopped || in.paused {
			continue
		}
		in.elapsed += d
		if in.elapsed >= in.duration {
			in.elapsed = in.duration
			in.stopped = true
		}
		frames = append(frames, frame{in.onFrame, in.fraction()})
	}

	var due []func()
	for _, t := range m.timers {
		if t.fired || t.canceled || t.deadline > m.now {
			continue
		}
		t.fired = true
		due = append(due, t.onComplete)
	}
	m.mu.Unlock()

	for _, f := range frames {
		f.fn(f.frac)
	}
	for _, fn := range due {
		fn()
	}
}

// Now reports the current virtual instant, for assertions.
func (m *ManualTimers) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// PendingTimers counts armed, unfired, uncanceled timers. Useful for
// asserting the one-active-timer invariant.
func (m *ManualTimers) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.canceled {
			n++
		}
	}
	return n
}

// manualInterpolation accumulates virtual elapsed time. Pause freezes the
// fraction; Resume lets the next Advance continue from it.
type manualInterpolation struct {
	driver   *ManualTimers
	duration time.Duration
	onFrame  func(float64)
	elapsed  time.Duration
	paused   bool
	stopped  bool
}

func (in *manualInterpolation) Pause() {
	in.driver.mu.Lock()
	defer in.driver.mu.Unlock()
	in.paused = true
}

func (in *manualInterpolation) Resume() {
	in.driver.mu.Lock()
	defer in.driver.mu.Unlock()
	in.paused = false
}

func (in *manualInterpolation) Stop() {
	in.driver.mu.Lock()
	defer in.driver.mu.Unlock()
	in.stopped = true
}

func (in *manualInterpolation) Progress() float64 {
	in.driver.mu.Lock()
	defer in.driver.mu.Unlock()
	return in.fraction()
}

func (in *manualInterpolation) fraction() float64 {
	if in.duration <= 0 {
		return 1
	}
	return float64(in.elapsed) / float64(in.duration)
}
