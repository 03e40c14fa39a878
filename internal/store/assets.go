package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AssetKind names the admin-managed asset categories.
type AssetKind string

const (
	AssetFont      AssetKind = "font"
	AssetTheme     AssetKind = "theme"
	AssetMusic     AssetKind = "music"
	AssetCharacter AssetKind = "character"
	AssetPattern   AssetKind = "pattern"
)

// ValidAssetKind reports whether k is one of the known categories.
func ValidAssetKind(k AssetKind) bool {
	switch k {
	case AssetFont, AssetTheme, AssetMusic, AssetCharacter, AssetPattern:
		return true
	}
	return false
}

// Asset is a creation-flow building block: a font, color theme, music
// track, character, or background pattern. Meta carries kind-specific
// fields (theme colors, font weights) as a JSON document.
type Asset struct {
	ID   string    `json:"id"`
	Kind AssetKind `json:"kind"`
	Name string    `json:"name"`
	URL  string    `json:"url,omitempty"`
	Meta string    `json:"meta,omitempty"`
}

// Price is a named price point, e.g. the story publishing fee.
type Price struct {
	Code      string    `json:"code"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MailTemplate is an admin-editable notification template. Delivery is
// out of scope; only the template content lives here.
type MailTemplate struct {
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertAsset inserts or replaces an asset keyed by (kind, name).
func (s *Store) UpsertAsset(ctx context.Context, a Asset) error {
	if !ValidAssetKind(a.Kind) {
		return fmt.Errorf("upsert asset %s: unknown kind %q", a.Name, a.Kind)
	}
	meta := a.Meta
	if meta == "" {
		meta = "{}"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, kind, name, url, meta)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, name) DO UPDATE SET
			url = excluded.url,
			meta = excluded.meta
	`, a.ID, string(a.Kind), a.Name, a.URL, meta)
	if err != nil {
		return fmt.Errorf("upsert asset %s/%s: %w", a.Kind, a.Name, err)
	}
	return nil
}

// ListAssets returns every asset of one kind in name order.
// Returns an empty slice (not nil) when none exist.
func (s *Store) ListAssets(ctx context.Context, kind AssetKind) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, url, meta
		FROM assets
		WHERE kind = ?
		ORDER BY name ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query assets %s: %w", kind, err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		var a Asset
		var k string
		if err := rows.Scan(&a.ID, &k, &a.Name, &a.URL, &a.Meta); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.Kind = AssetKind(k)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// DeleteAsset removes one asset by kind and name.
func (s *Store) DeleteAsset(ctx context.Context, kind AssetKind, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assets WHERE kind = ? AND name = ?`, string(kind), name)
	if err != nil {
		return fmt.Errorf("delete asset %s/%s: %w", kind, name, err)
	}
	return requireRow(res, "asset", name)
}

// SetPrice inserts or updates a price point.
func (s *Store) SetPrice(ctx context.Context, p Price, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (code, amount, currency, updated_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			amount = excluded.amount,
			currency = excluded.currency,
			updated_ms = excluded.updated_ms
	`, p.Code, p.Amount, p.Currency, toMillis(now))
	if err != nil {
		return fmt.Errorf("set price %s: %w", p.Code, err)
	}
	return nil
}

// GetPrice returns one price point or ErrNotFound.
func (s *Store) GetPrice(ctx context.Context, code string) (Price, error) {
	var p Price
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT code, amount, currency, updated_ms FROM prices WHERE code = ?
	`, code).Scan(&p.Code, &p.Amount, &p.Currency, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Price{}, fmt.Errorf("price %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return Price{}, fmt.Errorf("get price %s: %w", code, err)
	}
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// UpsertMailTemplate inserts or replaces a mail template by name.
func (s *Store) UpsertMailTemplate(ctx context.Context, t MailTemplate, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mail_templates (name, subject, body, updated_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			subject = excluded.subject,
			body = excluded.body,
			updated_ms = excluded.updated_ms
	`, t.Name, t.Subject, t.Body, toMillis(now))
	if err != nil {
		return fmt.Errorf("upsert mail template %s: %w", t.Name, err)
	}
	return nil
}

// GetMailTemplate returns one template or ErrNotFound.
func (s *Store) GetMailTemplate(ctx context.Context, name string) (MailTemplate, error) {
	var t MailTemplate
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT name, subject, body, updated_ms FROM mail_templates WHERE name = ?
	`, name).Scan(&t.Name, &t.Subject, &t.Body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return MailTemplate{}, fmt.Errorf("mail template %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return MailTemplate{}, fmt.Errorf("get mail template %s: %w", name, err)
	}
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}
