// Package sweep runs the periodic event lifecycle pass: activating
// launched events, ending expired ones, and rolling recurring events
// forward by a year.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
)

// Sweeper applies lifecycle transitions to the event table.
type Sweeper struct {
	store *store.Store
	clock event.Clock
}

// New creates a sweeper over the given store and clock.
func New(s *store.Store, clock event.Clock) *Sweeper {
	return &Sweeper{store: s, clock: clock}
}

// Run executes one sweep pass. Transitions applied, in order:
//
//  1. upcoming events whose launch window has opened (and that have not
//     already expired) become active
//  2. active recurring events whose window closed are rolled forward by
//     one year and reset to upcoming
//  3. remaining active, non-evergreen events whose window closed become
//     ended
//
// Rollover runs before ending so an expired recurring event gets next
// year's window instead of a terminal status.
func (sw *Sweeper) Run(ctx context.Context) error {
	now := sw.clock.Now()
	events, err := sw.store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	activated, ended := 0, 0
	for _, e := range events {
		if e.Status == event.StatusUpcoming && !e.LaunchDate.After(now) {
			if e.Kind == event.KindEvergreen || !e.EndDate.Before(now) {
				if err := sw.store.UpdateEventStatus(ctx, e.Slug, event.StatusActive); err != nil {
					return fmt.Errorf("sweep: activate %s: %w", e.Slug, err)
				}
				activated++
			}
		}
	}

	rolled := event.AdvanceRecurringEvents(events, now)
	if err := sw.store.ApplyRollover(ctx, rolled); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	rolledIDs := make(map[string]bool, len(rolled))
	for _, e := range rolled {
		rolledIDs[e.ID] = true
	}

	for _, e := range events {
		if e.Status != event.StatusActive || e.Kind == event.KindEvergreen || rolledIDs[e.ID] {
			continue
		}
		if e.EndDate.Before(now) {
			if err := sw.store.UpdateEventStatus(ctx, e.Slug, event.StatusEnded); err != nil {
				return fmt.Errorf("sweep: end %s: %w", e.Slug, err)
			}
			ended++
		}
	}

	slog.Info("sweep complete",
		"activated", activated,
		"rolled", len(rolled),
		"ended", ended,
		"total", len(events),
	)
	return nil
}
