// Package event defines the campaign event model and the ranking engine
// that decides which event is spotlighted and how the remaining events are
// grouped into homepage sections.
//
// The ranking functions are pure: given the same event slice and the same
// instant, they return the same result on every call. Callers inject the
// current time (see Clock) rather than reading the wall clock, which keeps
// ranking decisions reproducible in tests and on replayed requests.
//
// Ordering is a total order with explicit tie-break precedence:
//  1. Tier, ascending (1 beats 4; missing tier is treated as 4).
//  2. If both events are timed (not evergreen): distance from the
//     celebration date to now, ascending.
//  3. Otherwise: launch date, descending (most recently launched wins).
//  4. Original slice position (stable sort).
package event
