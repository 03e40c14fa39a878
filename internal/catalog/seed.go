package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hooray-app/hooray/internal/store"
)

// Seed writes a compiled catalog into the store. Events and assets are
// upserted by their natural keys, so re-running a seed is idempotent and
// picks up edits in place.
func Seed(ctx context.Context, s *store.Store, cat *Catalog) error {
	for _, e := range cat.Events {
		if err := s.UpsertEvent(ctx, e); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for _, a := range cat.Assets {
		if err := s.UpsertAsset(ctx, a); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	slog.Info("catalog seeded", "events", len(cat.Events), "assets", len(cat.Assets))
	return nil
}
