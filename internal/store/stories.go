package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hooray-app/hooray/internal/story"
)

// CreateStory inserts a new story. The slug must be unique; a duplicate is
// reported as an error rather than silently replaced, because story slugs
// are public share links.
func (s *Store) CreateStory(ctx context.Context, st story.Story) error {
	slides, err := marshalSlides(st.Slides)
	if err != nil {
		return fmt.Errorf("create story %s: %w", st.Slug, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stories (id, slug, title, event_id, music_url, auto_play, published, paid, slides, created_ms, updated_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`,
		st.ID,
		st.Slug,
		st.Title,
		st.EventID,
		st.MusicURL,
		boolToInt(st.AutoPlay),
		boolToInt(st.Published),
		slides,
		toMillis(st.CreatedAt),
		toMillis(st.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create story %s: %w", st.Slug, err)
	}
	return nil
}

// GetStoryBySlug returns a story with its slides, or ErrNotFound.
func (s *Store) GetStoryBySlug(ctx context.Context, slug string) (story.Story, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, title, event_id, music_url, auto_play, published, slides, created_ms, updated_ms
		FROM stories
		WHERE slug = ?
	`, slug)

	var (
		st                  story.Story
		autoPlay, published int
		slides              string
		created, updated    int64
	)
	err := row.Scan(&st.ID, &st.Slug, &st.Title, &st.EventID, &st.MusicURL,
		&autoPlay, &published, &slides, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return story.Story{}, fmt.Errorf("story %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return story.Story{}, fmt.Errorf("get story %s: %w", slug, err)
	}

	if err := json.Unmarshal([]byte(slides), &st.Slides); err != nil {
		return story.Story{}, fmt.Errorf("get story %s: decode slides: %w", slug, err)
	}
	st.AutoPlay = autoPlay != 0
	st.Published = published != 0
	st.CreatedAt = fromMillis(created)
	st.UpdatedAt = fromMillis(updated)
	return st, nil
}

// UpdateStory replaces the mutable fields of an existing story, including
// the whole slide list. The updated timestamp is stamped here.
func (s *Store) UpdateStory(ctx context.Context, st story.Story, now time.Time) error {
	slides, err := marshalSlides(st.Slides)
	if err != nil {
		return fmt.Errorf("update story %s: %w", st.Slug, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE stories
		SET title = ?, event_id = ?, music_url = ?, auto_play = ?, slides = ?, updated_ms = ?
		WHERE slug = ?
	`,
		st.Title,
		st.EventID,
		st.MusicURL,
		boolToInt(st.AutoPlay),
		slides,
		toMillis(now),
		st.Slug,
	)
	if err != nil {
		return fmt.Errorf("update story %s: %w", st.Slug, err)
	}
	return requireRow(res, "story", st.Slug)
}

// MarkPaid records that the publishing fee for a story was settled.
// Called from the payment confirmation path; publishing checks this flag.
func (s *Store) MarkPaid(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE stories SET paid = 1 WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("mark paid %s: %w", slug, err)
	}
	return requireRow(res, "story", slug)
}

// ErrNotPaid is returned by PublishStory when the publishing fee has not
// been settled for the story.
var ErrNotPaid = errors.New("store: story not paid")

// PublishStory flips a story public. Publishing is payment-gated: the
// story must have been marked paid first.
func (s *Store) PublishStory(ctx context.Context, slug string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE stories SET published = 1, updated_ms = ?
		WHERE slug = ? AND paid = 1
	`, toMillis(now), slug)
	if err != nil {
		return fmt.Errorf("publish story %s: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish story %s: rows affected: %w", slug, err)
	}
	if n > 0 {
		return nil
	}

	// Distinguish missing from unpaid for the caller's error response.
	var paid int
	err = s.db.QueryRowContext(ctx, `SELECT paid FROM stories WHERE slug = ?`, slug).Scan(&paid)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("story %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("publish story %s: %w", slug, err)
	}
	return fmt.Errorf("story %s: %w", slug, ErrNotPaid)
}

func marshalSlides(slides []story.Slide) (string, error) {
	if slides == nil {
		slides = []story.Slide{}
	}
	b, err := json.Marshal(slides)
	if err != nil {
		return "", fmt.Errorf("encode slides: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", kind, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
	}
	return nil
}
