package event

import (
	"sort"
	"time"
)

// SectionCap is the maximum number of events shown per library section.
const SectionCap = 3

// RolloverInterval is the fixed increment applied when a recurring event is
// rolled forward. Calendar-naive: exactly 365 days regardless of leap
// years; the drift is accepted.
const RolloverInterval = 365 * 24 * time.Hour

// Sections partitions the non-spotlight events for the homepage library.
// Empty sections are valid and returned as empty (non-nil) slices.
type Sections struct {
	PopularNow []Event `json:"popular_now"`
	Evergreen  []Event `json:"evergreen"`
	ComingSoon []Event `json:"coming_soon"`
}

// Less is the spotlight comparator. It reports whether a should rank above
// b at the given instant.
//
// Precedence: tier first, always. Date proximity is consulted ONLY when the
// tied events are both timed; a timed event tied with an evergreen one
// competes on launch freshness like any other non-timed pair. Ties beyond
// these keys are left to the caller's stable sort, which falls back to
// original slice order.
func Less(a, b Event, now time.Time) bool {
	at, bt := a.EffectiveTier(), b.EffectiveTier()
	if at != bt {
		return at < bt
	}
	if a.Timed() && b.Timed() {
		ad := absDuration(a.Date.Sub(now))
		bd := absDuration(b.Date.Sub(now))
		if ad != bd {
			return ad < bd
		}
		return false
	}
	return a.LaunchDate.After(b.LaunchDate)
}

// SelectSpotlight picks the single event for homepage hero placement, or
// nil when no event is eligible (the caller falls back to the default
// view). Pure and deterministic: repeated calls with the same inputs
// return the same event.
func SelectSpotlight(events []Event, now time.Time) *Event {
	eligible := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Eligible(now) {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	// SliceStable preserves original order for ties beyond the comparator
	// keys, which is what makes the selection deterministic.
	sort.SliceStable(eligible, func(i, j int) bool {
		return Less(eligible[i], eligible[j], now)
	})

	top := eligible[0]
	return &top
}

// BuildLibrarySections classifies every event except the spotlight into
// homepage sections. PopularNow and ComingSoon keep original slice order;
// no bucket exceeds SectionCap.
func BuildLibrarySections(events []Event, now time.Time) Sections {
	active := make([]Event, 0, len(events))
	upcoming := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Eligible(now) {
			active = append(active, e)
		} else if e.Upcoming(now) {
			upcoming = append(upcoming, e)
		}
	}

	spotlightID := ""
	if sp := SelectSpotlight(active, now); sp != nil {
		spotlightID = sp.ID
	}

	s := Sections{
		PopularNow: make([]Event, 0, SectionCap),
		Evergreen:  make([]Event, 0, SectionCap),
		ComingSoon: make([]Event, 0, SectionCap),
	}
	for _, e := range active {
		if e.ID == spotlightID {
			continue
		}
		if e.Kind == KindEvergreen {
			if len(s.Evergreen) < SectionCap {
				s.Evergreen = append(s.Evergreen, e)
			}
		} else if len(s.PopularNow) < SectionCap {
			s.PopularNow = append(s.PopularNow, e)
		}
	}
	for _, e := range upcoming {
		if len(s.ComingSoon) == SectionCap {
			break
		}
		s.ComingSoon = append(s.ComingSoon, e)
	}
	return s
}

// AdvanceRecurringEvents rolls forward every recurring event whose window
// has closed: Date, LaunchDate and EndDate each advance by exactly
// RolloverInterval and the status resets to upcoming. Only the changed
// events are returned; the input slice is not mutated. Intended to run
// from the periodic sweep, not per-request.
func AdvanceRecurringEvents(events []Event, now time.Time) []Event {
	var rolled []Event
	for _, e := range events {
		if e.Kind != KindRecurring || e.Status != StatusActive {
			continue
		}
		if !e.EndDate.Before(now) {
			continue
		}
		e.Date = e.Date.Add(RolloverInterval)
		e.LaunchDate = e.LaunchDate.Add(RolloverInterval)
		e.EndDate = e.EndDate.Add(RolloverInterval)
		e.Status = StatusUpcoming
		rolled = append(rolled, e)
	}
	return rolled
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
