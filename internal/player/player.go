package player

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/hooray-app/hooray/internal/story"
)

// State identifies where the playback state machine is.
type State int

const (
	// StateIdle means the player is closed. Every session starts and ends here.
	StateIdle State = iota
	// StatePlaying means a slide is on screen with its timer running.
	StatePlaying
	// StatePaused means the viewer is holding the screen; progress is frozen.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ErrNoSlides is returned by Open when the story has nothing to play.
// An empty slide list is a caller precondition, not a recoverable state:
// the player simply refuses to open.
var ErrNoSlides = errors.New("player: story has no slides")

// Audio is the minimal surface of the host audio element. Play failures
// (autoplay policy blocks) are expected and must be swallowed by callers.
type Audio interface {
	Play() error
	Pause()
	Seek(offset time.Duration)
}

// Notifier receives non-fatal user-facing notices, currently only the
// audio-blocked message. Nil notifiers are allowed.
type Notifier func(msg string)

// Option configures a Player at construction.
type Option func(*Player)

// WithAudio attaches an audio track to the session.
func WithAudio(a Audio) Option {
	return func(p *Player) { p.audio = a }
}

// WithNotifier routes non-fatal notices (audio autoplay blocks) to the
// given callback instead of only the log.
func WithNotifier(n Notifier) Option {
	return func(p *Player) { p.notify = n }
}

// WithLoop controls end-of-story behavior on timer advancement: when true
// (the default) the story loops back to the first slide and restarts
// audio; when false the session closes instead.
func WithLoop(loop bool) Option {
	return func(p *Player) { p.loop = loop }
}

// Player is one viewer's playback session. It is ephemeral: created when
// the viewer opens a story, discarded on close, never persisted.
//
// All methods are safe for concurrent use, though in practice a session
// has a single owner and the only concurrency is timer callbacks
// re-entering the machine.
type Player struct {
	slides []story.Slide
	timers Timers
	audio  Audio
	notify Notifier
	loop   bool

	mu          sync.Mutex
	state       State
	index       int
	progress    []float64
	remaining   time.Duration
	cancelTimer Cancel
	interp      Interpolation
	epoch       uint64 // invalidates stale timer callbacks
}

// New builds a player for the given slides. The slide list is copied;
// later edits to the source story do not affect a running session.
func New(slides []story.Slide, timers Timers, opts ...Option) *Player {
	p := &Player{
		slides:   make([]story.Slide, len(slides)),
		timers:   timers,
		loop:     true,
		progress: make([]float64, len(slides)),
	}
	copy(p.slides, slides)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open starts playback from the first slide. Progress bars reset to empty
// and attached audio restarts from the top; a blocked play is reported as
// a notice, never as an error. Opening an already-open player restarts it
// from slide zero.
func (p *Player) Open() error {
	if len(p.slides) == 0 {
		return ErrNoSlides
	}

	p.mu.Lock()
	p.stopDriversLocked()
	p.state = StatePlaying
	p.index = 0
	p.resetProgressLocked()
	p.startSlideLocked(0, p.slides[0].Duration())
	p.mu.Unlock()

	p.restartAudio()
	slog.Debug("player opened", "slides", len(p.slides))
	return nil
}

// Pause freezes the current slide in place: the progress bar stops where
// it is, the advance timer is disarmed, and the remaining display time is
// captured for Resume. Only meaningful while playing; otherwise a no-op.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	d := p.slides[p.index].Duration()
	if p.interp != nil {
		p.interp.Pause()
		elapsed := time.Duration(math.Round(p.interp.Progress() * float64(d)))
		p.remaining = d - elapsed
	} else {
		p.remaining = d
	}
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
	p.epoch++ // a timer that already fired must not advance a paused player
	p.state = StatePaused
	remaining := p.remaining
	p.mu.Unlock()

	if p.audio != nil {
		p.audio.Pause()
	}
	slog.Debug("player paused", "index", p.index, "remaining", remaining)
}

// Resume continues a paused slide: the progress animation picks up from
// its frozen fraction and the advance timer is re-armed for exactly the
// captured remaining time, not the full slide duration. Only meaningful
// while paused; otherwise a no-op.
func (p *Player) Resume() {
	p.mu.Lock()
	if p.state != StatePaused {
		p.mu.Unlock()
		return
	}
	p.state = StatePlaying
	if p.interp != nil {
		p.interp.Resume()
	}
	p.armTimerLocked(p.index, p.remaining)
	p.mu.Unlock()

	p.playAudio()
	slog.Debug("player resumed", "index", p.index)
}

// TapPrev steps back one slide, zeroing the vacated slide's progress bar.
// At the first slide it is a no-op. Valid from playing or paused; the
// session is playing afterwards.
func (p *Player) TapPrev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle || p.index == 0 {
		return
	}
	p.stopDriversLocked()
	p.progress[p.index] = 0
	p.index--
	p.progress[p.index] = 0
	p.state = StatePlaying
	p.startSlideLocked(p.index, p.slides[p.index].Duration())
}

// TapNext steps forward one slide, forcing the vacated slide's bar to
// full. On the last slide it closes the session instead - the end of the
// story closes the viewer rather than advancing out of range.
func (p *Player) TapNext() {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return
	}
	if p.index == len(p.slides)-1 {
		p.mu.Unlock()
		p.Close()
		return
	}
	p.stopDriversLocked()
	p.progress[p.index] = 1
	p.index++
	p.progress[p.index] = 0
	p.state = StatePlaying
	p.startSlideLocked(p.index, p.slides[p.index].Duration())
	p.mu.Unlock()
}

// Close tears the session down from any state: timers and animations are
// canceled, audio pauses, state returns to Idle. Safe to call repeatedly.
func (p *Player) Close() {
	p.mu.Lock()
	p.stopDriversLocked()
	p.state = StateIdle
	p.mu.Unlock()

	if p.audio != nil {
		p.audio.Pause()
	}
	slog.Debug("player closed")
}

// State reports the current machine state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index reports the current 0-based slide position.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Remaining reports the display time captured at the last pause.
func (p *Player) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

// Progress returns a copy of the per-slide progress bar fractions.
func (p *Player) Progress() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.progress))
	copy(out, p.progress)
	return out
}

// startSlideLocked arms the advance timer and progress animation for one
// slide. Callers must hold p.mu and have already stopped the previous
// drivers - the one-timer-one-animation invariant lives here.
func (p *Player) startSlideLocked(index int, d time.Duration) {
	p.remaining = d
	p.interp = p.timers.StartInterpolation(d, func(frac float64) {
		p.mu.Lock()
		defer p.mu.Unlock()
		// Frames for a vacated slide may still be in flight after a tap;
		// only the current slide's bar moves.
		if p.index == index && p.state == StatePlaying {
			p.progress[index] = frac
		}
	})
	p.armTimerLocked(index, d)
}

// armTimerLocked schedules the advance for the given slide. The epoch
// guard drops callbacks from timers that were superseded by a tap, pause,
// or close between firing and acquiring the lock.
func (p *Player) armTimerLocked(index int, d time.Duration) {
	p.epoch++
	epoch := p.epoch
	p.cancelTimer = p.timers.StartTimer(d, func() {
		p.slideComplete(index, epoch)
	})
}

// slideComplete handles tick-complete for a slide: bar to 100%, advance to
// the next index, and on the loop boundary reset every bar and restart
// audio from the top.
func (p *Player) slideComplete(index int, epoch uint64) {
	p.mu.Lock()
	if p.state != StatePlaying || p.epoch != epoch || p.index != index {
		p.mu.Unlock()
		return
	}
	p.progress[index] = 1
	if p.interp != nil {
		p.interp.Stop()
		p.interp = nil
	}

	next := (index + 1) % len(p.slides)
	if next == 0 {
		if !p.loop {
			p.stopDriversLocked()
			p.state = StateIdle
			p.mu.Unlock()
			if p.audio != nil {
				p.audio.Pause()
			}
			slog.Debug("player finished", "slides", len(p.slides))
			return
		}
		p.resetProgressLocked()
	}
	p.index = next
	p.startSlideLocked(next, p.slides[next].Duration())
	p.mu.Unlock()

	if next == 0 {
		p.restartAudio()
	}
}

func (p *Player) stopDriversLocked() {
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
	if p.interp != nil {
		p.interp.Stop()
		p.interp = nil
	}
	p.epoch++
}

func (p *Player) resetProgressLocked() {
	for i := range p.progress {
		p.progress[i] = 0
	}
}

// restartAudio seeks to the top and plays, best-effort.
func (p *Player) restartAudio() {
	if p.audio == nil {
		return
	}
	p.audio.Seek(0)
	p.playAudio()
}

// playAudio starts audio playback, converting failures into a notice.
// Autoplay policy blocks are an expected browser behavior; the story keeps
// advancing on its visual timer with or without sound.
func (p *Player) playAudio() {
	if p.audio == nil {
		return
	}
	if err := p.audio.Play(); err != nil {
		slog.Warn("audio playback blocked", "error", err)
		if p.notify != nil {
			p.notify("Tap the speaker to enable sound")
		}
	}
}
