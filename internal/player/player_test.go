package player_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooray-app/hooray/internal/player"
	"github.com/hooray-app/hooray/internal/story"
	"github.com/hooray-app/hooray/internal/testutil"
)

func threeSlides() []story.Slide {
	return []story.Slide{
		{ID: "s0", Text: "first", DurationMs: 5000},
		{ID: "s1", Text: "second", DurationMs: 5000},
		{ID: "s2", Text: "third", DurationMs: 5000},
	}
}

func TestOpen_EmptyStoryRefusesToOpen(t *testing.T) {
	p := player.New(nil, testutil.NewManualTimers())
	err := p.Open()
	require.ErrorIs(t, err, player.ErrNoSlides)
	assert.Equal(t, player.StateIdle, p.State())
}

func TestOpen_StartsAtSlideZeroWithAudio(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	p := player.New(threeSlides(), timers, player.WithAudio(audio))

	require.NoError(t, p.Open())
	assert.Equal(t, player.StatePlaying, p.State())
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, []float64{0, 0, 0}, p.Progress())
	assert.Equal(t, []time.Duration{0}, audio.Seeks())
	assert.True(t, audio.Playing())
}

func TestTickComplete_AdvancesThroughSlides(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(5 * time.Second)
	assert.Equal(t, 1, p.Index())
	// Completed slide's bar is pinned at 100%.
	assert.Equal(t, 1.0, p.Progress()[0])

	timers.Advance(5 * time.Second)
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, player.StatePlaying, p.State())
}

func TestTickComplete_LoopRestartsProgressAndAudio(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	p := player.New(threeSlides(), timers, player.WithAudio(audio))
	require.NoError(t, p.Open())

	// Run out all three slides.
	timers.Advance(5 * time.Second)
	timers.Advance(5 * time.Second)
	timers.Advance(5 * time.Second)

	assert.Equal(t, 0, p.Index())
	assert.Equal(t, player.StatePlaying, p.State())
	assert.Equal(t, []float64{0, 0, 0}, p.Progress())
	// One seek from Open, one from the loop restart.
	assert.Equal(t, []time.Duration{0, 0}, audio.Seeks())
}

func TestTickComplete_NoLoopClosesAtEnd(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers, player.WithLoop(false))
	require.NoError(t, p.Open())

	timers.Advance(5 * time.Second)
	timers.Advance(5 * time.Second)
	timers.Advance(5 * time.Second)

	assert.Equal(t, player.StateIdle, p.State())
}

func TestPauseResume_RoundTripKeepsRemaining(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	p := player.New(threeSlides(), timers, player.WithAudio(audio))
	require.NoError(t, p.Open())

	timers.Advance(2 * time.Second)
	p.Pause()
	assert.Equal(t, player.StatePaused, p.State())
	assert.Equal(t, 3*time.Second, p.Remaining())
	assert.False(t, audio.Playing())

	// Frozen: nothing advances while paused.
	timers.Advance(time.Minute)
	assert.Equal(t, 0, p.Index())
	assert.InDelta(t, 0.4, p.Progress()[0], 1e-9)

	p.Resume()
	assert.Equal(t, player.StatePlaying, p.State())
	assert.True(t, audio.Playing())

	// Exactly the remaining 3s completes the slide - not the full 5s.
	timers.Advance(3 * time.Second)
	assert.Equal(t, 1, p.Index())
}

func TestPause_WhilePausedIsNoOp(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(time.Second)
	p.Pause()
	remaining := p.Remaining()
	p.Pause()
	assert.Equal(t, remaining, p.Remaining())
	assert.Equal(t, player.StatePaused, p.State())
}

func TestResume_WhilePlayingIsNoOp(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	p.Resume()
	assert.Equal(t, player.StatePlaying, p.State())
	// The original advance timer still fires on schedule.
	timers.Advance(5 * time.Second)
	assert.Equal(t, 1, p.Index())
}

func TestTapNext_AdvancesAndPinsVacatedBar(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(time.Second)
	p.TapNext()
	assert.Equal(t, 1, p.Index())
	got := p.Progress()
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 0.0, got[1])

	// The new slide gets a full duration, not the old slide's leftover.
	timers.Advance(4 * time.Second)
	assert.Equal(t, 1, p.Index())
	timers.Advance(time.Second)
	assert.Equal(t, 2, p.Index())
}

func TestTapNext_AtLastSlideCloses(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	p := player.New(threeSlides(), timers, player.WithAudio(audio))
	require.NoError(t, p.Open())

	p.TapNext()
	p.TapNext()
	require.Equal(t, 2, p.Index())

	p.TapNext()
	assert.Equal(t, player.StateIdle, p.State())
	assert.False(t, audio.Playing())

	// Closed player ignores stale timers entirely.
	timers.Advance(time.Minute)
	assert.Equal(t, player.StateIdle, p.State())
}

func TestTapPrev_AtIndexZeroIsNoOp(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(time.Second)
	before := p.Progress()
	p.TapPrev()
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, player.StatePlaying, p.State())
	assert.Equal(t, before, p.Progress())
}

func TestTapPrev_StepsBackAndZerosBars(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(5 * time.Second)
	timers.Advance(time.Second) // partway into slide 1
	require.Equal(t, 1, p.Index())

	p.TapPrev()
	assert.Equal(t, 0, p.Index())
	got := p.Progress()
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 0.0, got[1])
}

func TestSingleActiveTimerInvariant(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())
	assert.Equal(t, 1, timers.PendingTimers())

	p.TapNext()
	assert.Equal(t, 1, timers.PendingTimers())

	p.Pause()
	assert.Equal(t, 0, timers.PendingTimers())

	p.Resume()
	assert.Equal(t, 1, timers.PendingTimers())

	p.Close()
	assert.Equal(t, 0, timers.PendingTimers())
}

func TestAudioBlock_NotifiesAndKeepsAdvancing(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	audio.PlayErr = errors.New("NotAllowedError: play() blocked by autoplay policy")

	var notices []string
	p := player.New(threeSlides(), timers,
		player.WithAudio(audio),
		player.WithNotifier(func(msg string) { notices = append(notices, msg) }),
	)
	require.NoError(t, p.Open())

	require.Len(t, notices, 1)
	assert.False(t, audio.Playing())

	// Visual advancement is independent of audio state.
	timers.Advance(5 * time.Second)
	assert.Equal(t, 1, p.Index())
	assert.Equal(t, player.StatePlaying, p.State())
}

func TestPerSlideDurationOverride(t *testing.T) {
	timers := testutil.NewManualTimers()
	slides := []story.Slide{
		{ID: "quick", DurationMs: 1000},
		{ID: "default"}, // falls back to 5000ms
	}
	p := player.New(slides, timers)
	require.NoError(t, p.Open())

	timers.Advance(time.Second)
	assert.Equal(t, 1, p.Index())

	timers.Advance(4 * time.Second)
	assert.Equal(t, 1, p.Index())
	timers.Advance(time.Second)
	// Looped back to the start after the default-length slide.
	assert.Equal(t, 0, p.Index())
}

func TestReopen_ResetsToSlideZero(t *testing.T) {
	timers := testutil.NewManualTimers()
	p := player.New(threeSlides(), timers)
	require.NoError(t, p.Open())

	timers.Advance(5 * time.Second)
	timers.Advance(time.Second)
	require.Equal(t, 1, p.Index())

	require.NoError(t, p.Open())
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, []float64{0, 0, 0}, p.Progress())
	assert.Equal(t, 1, timers.PendingTimers())
}

func TestClose_FromPausedStopsEverything(t *testing.T) {
	timers := testutil.NewManualTimers()
	audio := testutil.NewFakeAudio()
	p := player.New(threeSlides(), timers, player.WithAudio(audio))
	require.NoError(t, p.Open())

	timers.Advance(time.Second)
	p.Pause()
	p.Close()

	assert.Equal(t, player.StateIdle, p.State())
	assert.Equal(t, 0, timers.PendingTimers())
	assert.False(t, audio.Playing())
}
