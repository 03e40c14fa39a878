package testutil

import (
	"sync"
	"time"
)

// FakeAudio records every call made against the player's audio interface
// and can be scripted to fail Play, mimicking a browser autoplay block.
type FakeAudio struct {
	mu sync.Mutex

	// PlayErr, when non-nil, is returned by every Play call.
	PlayErr error

	playCalls  int
	pauseCalls int
	seeks      []time.Duration
	playing    bool
}

// NewFakeAudio creates a silent, succeeding audio fake.
func NewFakeAudio() *FakeAudio {
	return &FakeAudio{}
}

func (a *FakeAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playCalls++
	if a.PlayErr != nil {
		return a.PlayErr
	}
	a.playing = true
	return nil
}

func (a *FakeAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauseCalls++
	a.playing = false
}

func (a *FakeAudio) Seek(offset time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seeks = append(a.seeks, offset)
}

// PlayCalls reports how many times Play was attempted, including failures.
func (a *FakeAudio) PlayCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playCalls
}

// PauseCalls reports how many times Pause was called.
func (a *FakeAudio) PauseCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pauseCalls
}

// Seeks returns every seek offset in call order.
func (a *FakeAudio) Seeks() []time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]time.Duration, len(a.seeks))
	copy(out, a.seeks)
	return out
}

// Playing reports whether the last successful Play is still in effect.
func (a *FakeAudio) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}
