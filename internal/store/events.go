package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hooray-app/hooray/internal/event"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// UpsertEvent inserts an event or, when the slug already exists, replaces
// that event's fields in place. Catalog re-seeds and admin edits both go
// through this path, so slugs are the natural identity.
func (s *Store) UpsertEvent(ctx context.Context, e event.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, slug, title, kind, status, tier, date_ms, launch_ms, end_ms, theme_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			status = excluded.status,
			tier = excluded.tier,
			date_ms = excluded.date_ms,
			launch_ms = excluded.launch_ms,
			end_ms = excluded.end_ms,
			theme_id = excluded.theme_id
	`,
		e.ID,
		e.Slug,
		e.Title,
		string(e.Kind),
		string(e.Status),
		e.Tier,
		toMillis(e.Date),
		toMillis(e.LaunchDate),
		toMillis(e.EndDate),
		e.ThemeID,
	)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.Slug, err)
	}
	return nil
}

// GetEventBySlug returns a single event or ErrNotFound.
func (s *Store) GetEventBySlug(ctx context.Context, slug string) (event.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, title, kind, status, tier, date_ms, launch_ms, end_ms, theme_id
		FROM events
		WHERE slug = ?
	`, slug)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, fmt.Errorf("event %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("get event %s: %w", slug, err)
	}
	return e, nil
}

// ListEvents returns every event in insertion (rowid) order. This order is
// what the ranking engine treats as "original order" for its stable
// tie-breaks and section buckets.
//
// Returns an empty slice (not nil) when the table is empty.
func (s *Store) ListEvents(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, title, kind, status, tier, date_ms, launch_ms, end_ms, theme_id
		FROM events
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// UpdateEventStatus sets the lifecycle gate for one event.
func (s *Store) UpdateEventStatus(ctx context.Context, slug string, status event.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = ? WHERE slug = ?`, string(status), slug)
	if err != nil {
		return fmt.Errorf("update event status %s: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event status %s: rows affected: %w", slug, err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", slug, ErrNotFound)
	}
	return nil
}

// DeleteEvent removes an event. Deleting an absent slug is an error so the
// admin surface can report typos.
func (s *Store) DeleteEvent(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event %s: rows affected: %w", slug, err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", slug, ErrNotFound)
	}
	return nil
}

// ApplyRollover persists the rolled-forward records produced by
// event.AdvanceRecurringEvents in a single transaction, so a crashed sweep
// never leaves a half-rolled year.
func (s *Store) ApplyRollover(ctx context.Context, rolled []event.Event) error {
	if len(rolled) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rollover: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, e := range rolled {
		_, err := tx.ExecContext(ctx, `
			UPDATE events
			SET status = ?, date_ms = ?, launch_ms = ?, end_ms = ?
			WHERE id = ?
		`,
			string(e.Status),
			toMillis(e.Date),
			toMillis(e.LaunchDate),
			toMillis(e.EndDate),
			e.ID,
		)
		if err != nil {
			return fmt.Errorf("rollover: update event %s: %w", e.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rollover: commit: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (event.Event, error) {
	var (
		e                     event.Event
		kind, status          string
		dateMs, launch, endMs int64
	)
	err := sc.Scan(&e.ID, &e.Slug, &e.Title, &kind, &status, &e.Tier, &dateMs, &launch, &endMs, &e.ThemeID)
	if err != nil {
		return event.Event{}, err
	}
	e.Kind = event.Kind(kind)
	e.Status = event.Status(status)
	e.Date = fromMillis(dateMs)
	e.LaunchDate = fromMillis(launch)
	e.EndDate = fromMillis(endMs)
	return e, nil
}
