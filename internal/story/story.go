// Package story defines the celebration story model: an ordered list of
// slides with visual theming, stickers, and an optional music track.
package story

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultSlideDuration is how long a slide stays on screen when it does
// not carry an explicit duration.
const DefaultSlideDuration = 5000 * time.Millisecond

// Transition names the visual effect used when a slide enters.
type Transition string

const (
	TransitionFade  Transition = "fade"
	TransitionSlide Transition = "slide"
	TransitionZoom  Transition = "zoom"
	TransitionFlip  Transition = "flip"
)

// Sticker is a decorative emoji pinned to a slide. Positions are percent
// offsets into the slide viewport, 0..100 on each axis.
type Sticker struct {
	Emoji    string  `json:"emoji"`
	XPercent float64 `json:"x_percent"`
	YPercent float64 `json:"y_percent"`
}

// Slide is one screen of a story. The ID is stable across reorders so the
// editor can re-locate the focused slide after a drag operation.
type Slide struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	PhotoURL string `json:"photo_url,omitempty"`

	FontFamily string `json:"font_family,omitempty"`
	TextColor  string `json:"text_color,omitempty"`
	TextAlign  string `json:"text_align,omitempty"`

	BackgroundStart string `json:"background_start,omitempty"`
	BackgroundEnd   string `json:"background_end,omitempty"`
	GlowColor       string `json:"glow_color,omitempty"`

	Transition Transition `json:"transition,omitempty"`

	// DurationMs overrides the default display duration when positive.
	DurationMs int64 `json:"duration_ms,omitempty"`

	Stickers []Sticker `json:"stickers,omitempty"`
}

// Duration resolves the slide's display duration, falling back to
// DefaultSlideDuration when no positive override is set.
func (s Slide) Duration() time.Duration {
	if s.DurationMs > 0 {
		return time.Duration(s.DurationMs) * time.Millisecond
	}
	return DefaultSlideDuration
}

// Story is a shareable multi-slide narrative tied to an event.
type Story struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	EventID  string `json:"event_id,omitempty"`
	MusicURL string `json:"music_url,omitempty"`
	AutoPlay bool   `json:"auto_play"`

	// Published gates public viewing; flipping it is payment-gated in the
	// surrounding flow.
	Published bool `json:"published"`

	Slides []Slide `json:"slides"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSlideID mints a stable identifier for a freshly created slide.
// UUIDv7 keeps editor-created slides roughly time-sortable for debugging.
func NewSlideID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Validate checks the structural invariants a story must satisfy before it
// can be published or played.
func (st Story) Validate() error {
	if len(st.Slides) == 0 {
		return fmt.Errorf("story %s: at least one slide is required", st.ID)
	}
	seen := make(map[string]bool, len(st.Slides))
	for i, sl := range st.Slides {
		if sl.ID == "" {
			return fmt.Errorf("story %s: slide %d has no id", st.ID, i)
		}
		if seen[sl.ID] {
			return fmt.Errorf("story %s: duplicate slide id %s", st.ID, sl.ID)
		}
		seen[sl.ID] = true
		for j, stk := range sl.Stickers {
			if stk.XPercent < 0 || stk.XPercent > 100 || stk.YPercent < 0 || stk.YPercent > 100 {
				return fmt.Errorf("story %s: slide %s sticker %d out of bounds (%.1f, %.1f)",
					st.ID, sl.ID, j, stk.XPercent, stk.YPercent)
			}
		}
	}
	return nil
}

// Reorder rearranges the story's slides to match the given ID sequence.
// Every current slide ID must appear exactly once; anything else (unknown,
// missing, or duplicate IDs) rejects the whole reorder so a dropped drag
// event can never lose a slide.
func (st *Story) Reorder(order []string) error {
	if len(order) != len(st.Slides) {
		return fmt.Errorf("reorder: got %d ids, story has %d slides", len(order), len(st.Slides))
	}
	byID := make(map[string]Slide, len(st.Slides))
	for _, sl := range st.Slides {
		byID[sl.ID] = sl
	}
	next := make([]Slide, 0, len(order))
	for _, id := range order {
		sl, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder: unknown or duplicate slide id %s", id)
		}
		delete(byID, id)
		next = append(next, sl)
	}
	st.Slides = next
	return nil
}
