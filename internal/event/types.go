package event

import "time"

// Kind classifies how an event's availability window behaves.
type Kind string

const (
	// KindOneTime is a single-occurrence campaign with a fixed window.
	KindOneTime Kind = "one-time"
	// KindRecurring is an annual campaign; after its window closes it is
	// rolled forward by one year by the sweep.
	KindRecurring Kind = "recurring"
	// KindEvergreen has no expiry; once launched it stays eligible.
	KindEvergreen Kind = "evergreen"
)

// Status is the authoritative lifecycle gate set by administrators or the
// periodic sweep. It is independent of the computed time windows: an event
// whose window is open but whose status is not StatusActive is never shown.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
)

// DefaultTier is the priority assumed for events that carry no explicit
// tier. Tier 1 is the highest priority, 4 the lowest.
const DefaultTier = 4

// Event is a time-boxed or evergreen campaign driving which creation flow
// and theme a visitor sees.
type Event struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`

	// Tier is the editorial priority rank, 1 (highest) through 4 (lowest).
	// Zero means unset and ranks as DefaultTier.
	Tier int `json:"tier,omitempty"`

	// Date is the nominal celebration instant (the holiday itself).
	Date time.Time `json:"date"`
	// LaunchDate is when creation becomes available.
	LaunchDate time.Time `json:"launch_date"`
	// EndDate is when creation closes. Ignored for KindEvergreen.
	EndDate time.Time `json:"end_date"`

	// ThemeID references the default visual theme asset for this event.
	ThemeID string `json:"theme_id,omitempty"`
}

// EffectiveTier returns the event's tier with the unset-value defaulting
// applied. Values outside 1..4 also collapse to DefaultTier rather than
// being rejected; malformed input is normalized, never an error.
func (e Event) EffectiveTier() int {
	if e.Tier < 1 || e.Tier > DefaultTier {
		return DefaultTier
	}
	return e.Tier
}

// Timed reports whether the event competes on date proximity. Evergreen
// events have no meaningful celebration date and compete on launch
// freshness instead.
func (e Event) Timed() bool {
	return e.Kind != KindEvergreen
}

// Eligible reports whether the event may be displayed at the given instant:
// status is active, the launch window has opened, and the event has not
// expired (evergreen events never expire).
func (e Event) Eligible(now time.Time) bool {
	if e.Status != StatusActive {
		return false
	}
	if e.LaunchDate.After(now) {
		return false
	}
	if e.Kind == KindEvergreen {
		return true
	}
	return !e.EndDate.Before(now)
}

// Upcoming reports whether the event belongs in the "coming soon" section:
// either its status says so explicitly or its launch window has not opened.
func (e Event) Upcoming(now time.Time) bool {
	return e.Status == StatusUpcoming || e.LaunchDate.After(now)
}

// Clock supplies the current instant to ranking and sweep code. Production
// wiring uses SystemClock; tests use a fixed clock so results are
// reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
