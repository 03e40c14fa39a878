// Package player implements the story playback state machine.
//
// A Player drives one viewer's session through an ordered slide list:
// Idle → Playing(index) ⇄ Paused(index) → Playing(index+1) → …, looping
// back to the first slide at the end of the story. Slide advancement is
// driven by a cancelable timer; the visual progress bar by a pausable
// interpolation. Both come from the Timers abstraction so the machine runs
// unchanged against real time or a manually stepped test driver.
//
// SINGLE-OWNER MODEL:
// A playback session belongs to exactly one viewer. All state lives behind
// one mutex; timer and frame callbacks re-enter through that mutex, so at
// most one advance timer and one progress interpolation are live at any
// moment - starting a new slide always cancels the previous pair first.
//
// FAILURE SEMANTICS:
// Audio is best-effort. A blocked play() is reported through the notice
// callback and playback continues silently; slide advancement never
// depends on audio state. Invalid transition requests (pausing while
// paused, resuming while playing) are no-ops, not errors.
package player
