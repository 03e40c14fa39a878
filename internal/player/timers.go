package player

import (
	"sync"
	"time"
)

// Cancel stops a pending timer. Calling it after the timer fired, or more
// than once, is harmless.
type Cancel func()

// Interpolation is a pausable, cancelable 0→1 progress animation.
// Progress reports the completed fraction; pausing freezes it in place and
// resuming continues from the frozen fraction over the remaining time.
type Interpolation interface {
	Pause()
	Resume()
	Stop()
	Progress() float64
}

// Timers abstracts the host's delay and animation primitives so the state
// machine can run against real timers or a stepped test driver.
//
// Contract: implementations must NOT invoke onComplete or onFrame
// synchronously from within StartTimer/StartInterpolation - callbacks fire
// later, from a timer goroutine or an explicit test step. The Player
// re-enters its own lock from these callbacks and relies on this.
type Timers interface {
	StartTimer(d time.Duration, onComplete func()) Cancel
	StartInterpolation(d time.Duration, onFrame func(progress float64)) Interpolation
}

// DefaultFrameInterval is the frame period for real interpolations,
// roughly 60 fps.
const DefaultFrameInterval = 16 * time.Millisecond

// RealTimers implements Timers on the runtime clock.
type RealTimers struct {
	// FrameInterval overrides the interpolation frame period when positive.
	FrameInterval time.Duration
}

func (rt RealTimers) StartTimer(d time.Duration, onComplete func()) Cancel {
	t := time.AfterFunc(d, onComplete)
	return func() { t.Stop() }
}

func (rt RealTimers) StartInterpolation(d time.Duration, onFrame func(float64)) Interpolation {
	interval := rt.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	in := &realInterpolation{
		duration: d,
		interval: interval,
		onFrame:  onFrame,
		wake:     make(chan struct{}, 1),
	}
	go in.run()
	return in
}

// realInterpolation accumulates elapsed time on a frame ticker. Pausing
// stops accumulation without resetting it, so a resumed animation finishes
// over exactly the remaining time.
type realInterpolation struct {
	duration time.Duration
	interval time.Duration
	onFrame  func(float64)

	mu      sync.Mutex
	elapsed time.Duration
	paused  bool
	stopped bool
	wake    chan struct{}
}

func (in *realInterpolation) run() {
	ticker := time.NewTicker(in.interval)
	defer ticker.Stop()
	for {
		<-ticker.C

		in.mu.Lock()
		if in.stopped {
			in.mu.Unlock()
			return
		}
		if in.paused {
			in.mu.Unlock()
			// Block until resumed or stopped; the ticker keeps running but
			// frames are cheap to skip.
			<-in.wake
			continue
		}
		in.elapsed += in.interval
		if in.elapsed > in.duration {
			in.elapsed = in.duration
		}
		done := in.elapsed >= in.duration
		if done {
			in.stopped = true
		}
		frac := in.fractionLocked()
		onFrame := in.onFrame
		in.mu.Unlock()

		onFrame(frac)
		if done {
			return
		}
	}
}

func (in *realInterpolation) Pause() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.paused = true
}

func (in *realInterpolation) Resume() {
	in.mu.Lock()
	if !in.paused {
		in.mu.Unlock()
		return
	}
	in.paused = false
	in.mu.Unlock()
	select {
	case in.wake <- struct{}{}:
	default:
	}
}

func (in *realInterpolation) Stop() {
	in.mu.Lock()
	in.stopped = true
	in.mu.Unlock()
	select {
	case in.wake <- struct{}{}:
	default:
	}
}

func (in *realInterpolation) Progress() float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.fractionLocked()
}

func (in *realInterpolation) fractionLocked() float64 {
	if in.duration <= 0 {
		return 1
	}
	return float64(in.elapsed) / float64(in.duration)
}
