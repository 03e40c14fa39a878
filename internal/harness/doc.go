// Package harness provides scenario testing for story playback.
//
// The harness loads YAML scenario files, drives a player through the
// scripted viewer gestures on a virtual clock, and records a snapshot of
// the machine after every step. The resulting trace is validated against
// inline assertions and golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	slides:
//	  - duration_ms: 5000
//	  - duration_ms: 3000
//	loop: true
//	audio: true
//	audio_blocked: false
//	steps:
//	  - action: open
//	  - action: elapse
//	    ms: 2000
//	  - action: press
//	  - action: release
//	  - action: tap_next
//	  - action: tap_prev
//	  - action: close
//	assertions:
//	  - type: final_state
//	    expect: { state: idle, slide: 1 }
//
// # Step Actions
//
//   - open: start playback from the first slide
//   - elapse: advance the virtual clock by ms
//   - press / release: hold-to-pause and its release
//   - tap_next / tap_prev: slide navigation taps
//   - close: tear the session down
//
// # Assertion Types
//
//   - trace_contains: a snapshot with the given fields exists
//   - trace_order: the given states appear in order in the trace
//   - trace_count: snapshots matching a state or step appear exactly N times
//   - final_state: field subset match on the last snapshot
//
// # Deterministic Testing
//
// Scenarios run on testutil.ManualTimers, so interpolation frames and
// advance timers fire in virtual-time order with no real sleeping. A
// trace is identical across runs, which is what makes the golden file
// comparison meaningful.
package harness
