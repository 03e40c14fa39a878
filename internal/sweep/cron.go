package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a sweeper on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	sw   *Sweeper
}

// NewScheduler registers the sweeper on the given cron expression
// (standard 5-field syntax, e.g. "*/15 * * * *"). The scheduler is
// returned stopped; call Start.
func NewScheduler(sw *Sweeper, spec string) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := sw.Run(context.Background()); err != nil {
			// Log and wait for the next tick; a transient store error must
			// not kill the schedule.
			slog.Error("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, sw: sw}, nil
}

// Start begins firing sweeps on schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("sweep scheduler started")
}

// Stop ends the schedule and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("sweep scheduler stopped")
}
