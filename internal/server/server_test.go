package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
	"github.com/hooray-app/hooray/internal/story"
	"github.com/hooray-app/hooray/internal/testutil"
)

const testToken = "sekrit"

func newTestServer(t *testing.T) (*Server, *store.Store, *testutil.FixedClock) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return New(s, clock, testToken), s, clock
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAdminGate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	body := map[string]any{"status": "active"}

	rec := do(t, h, "PUT", "/api/admin/events/x/status", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	rec = do(t, h, "PUT", "/api/admin/events/x/status", body, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "bad token")

	rec = do(t, h, "PUT", "/api/admin/events/x/status", body, testToken)
	assert.Equal(t, http.StatusNotFound, rec.Code, "good token reaches the handler")
}

func TestAdminGateDisabledWhenTokenEmpty(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := New(s, testutil.NewFixedClock(time.Now()), "")
	rec := do(t, srv.Handler(), "DELETE", "/api/admin/events/x", nil, "anything")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	create := map[string]any{
		"slug":   "christmas",
		"title":  "Christmas",
		"kind":   "recurring",
		"tier":   1,
		"date":   "2025-12-25T00:00:00Z",
		"launch": "2025-11-01T00:00:00Z",
		"end":    "2025-12-31T00:00:00Z",
	}
	rec := do(t, h, "POST", "/api/admin/events", create, testToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[event.Event](t, rec)
	assert.Equal(t, "ev-christmas", got.ID)
	assert.Equal(t, event.StatusUpcoming, got.Status, "status defaults to upcoming")

	rec = do(t, h, "GET", "/api/events/christmas", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, "PUT", "/api/admin/events/christmas/status", map[string]any{"status": "active"}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	got = decode[event.Event](t, do(t, h, "GET", "/api/events/christmas", nil, ""))
	assert.Equal(t, event.StatusActive, got.Status)

	rec = do(t, h, "DELETE", "/api/admin/events/christmas", nil, testToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, "GET", "/api/events/christmas", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpsertEventValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing slug", map[string]any{"title": "x", "kind": "one-time"}},
		{"bad kind", map[string]any{"slug": "x", "kind": "weekly"}},
		{"bad status", map[string]any{"slug": "x", "kind": "one-time", "status": "archived"}},
		{"bad tier", map[string]any{"slug": "x", "kind": "one-time", "tier": 9}},
		{"bad date", map[string]any{"slug": "x", "kind": "one-time", "date": "yesterday"}},
		{"timed without date", map[string]any{"slug": "x", "kind": "one-time", "launch": "2025-01-01T00:00:00Z", "end": "2025-02-01T00:00:00Z"}},
		{"unknown field", map[string]any{"slug": "x", "kind": "one-time", "color": "red"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/admin/events", tc.body, testToken)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestEvergreenEventNeedsNoDates(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv.Handler(), "POST", "/api/admin/events", map[string]any{
		"slug":   "just-because",
		"title":  "Just Because",
		"kind":   "evergreen",
		"launch": "2025-01-01T00:00:00Z",
	}, testToken)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHome(t *testing.T) {
	srv, s, clock := newTestServer(t)
	h := srv.Handler()
	ctx := t.Context()

	now := clock.Now()
	require.NoError(t, s.UpsertEvent(ctx, event.Event{
		ID: "ev-birthday", Slug: "birthday", Title: "Birthday",
		Kind: event.KindEvergreen, Status: event.StatusActive, Tier: 1,
		LaunchDate: now.AddDate(0, -1, 0),
	}))
	require.NoError(t, s.UpsertEvent(ctx, event.Event{
		ID: "ev-christmas", Slug: "christmas", Title: "Christmas",
		Kind: event.KindRecurring, Status: event.StatusActive, Tier: 2,
		Date:       now.AddDate(0, 0, 10),
		LaunchDate: now.AddDate(0, -1, 0),
		EndDate:    now.AddDate(0, 0, 17),
	}))
	require.NoError(t, s.UpsertEvent(ctx, event.Event{
		ID: "ev-new-year", Slug: "new-year", Title: "New Year",
		Kind: event.KindRecurring, Status: event.StatusUpcoming, Tier: 1,
		Date:       now.AddDate(0, 3, 0),
		LaunchDate: now.AddDate(0, 2, 0),
		EndDate:    now.AddDate(0, 3, 7),
	}))

	rec := do(t, h, "GET", "/api/home", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[homeResponse](t, rec)
	require.NotNil(t, got.Spotlight)
	assert.Equal(t, "birthday", got.Spotlight.Slug, "tier 1 active event wins the spotlight")
	require.Len(t, got.Sections.PopularNow, 1)
	assert.Equal(t, "christmas", got.Sections.PopularNow[0].Slug)
	assert.Empty(t, got.Sections.Evergreen, "the spotlight is excluded from its section")
	require.Len(t, got.Sections.ComingSoon, 1)
	assert.Equal(t, "new-year", got.Sections.ComingSoon[0].Slug)
}

func TestStoryLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, "POST", "/api/stories", map[string]any{
		"title": "Happy Birthday Mina!",
		"slides": []map[string]any{
			{"text": "Dear Mina"},
			{"text": "Have a great one", "duration_ms": 8000},
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	st := decode[story.Story](t, rec)
	require.Len(t, st.Slides, 2)
	assert.NotEmpty(t, st.Slides[0].ID, "slide IDs are assigned server-side")
	assert.Contains(t, st.Slug, "happy-birthday-mina-")
	assert.False(t, st.Published)

	rec = do(t, h, "GET", "/api/stories/"+st.Slug, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Reorder the slides through an update.
	st.Slides[0], st.Slides[1] = st.Slides[1], st.Slides[0]
	rec = do(t, h, "PUT", "/api/stories/"+st.Slug, map[string]any{
		"title":  st.Title,
		"slides": st.Slides,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[story.Story](t, do(t, h, "GET", "/api/stories/"+st.Slug, nil, ""))
	assert.Equal(t, int64(8000), got.Slides[0].DurationMs)

	// Publishing before payment is refused.
	rec = do(t, h, "POST", "/api/stories/"+st.Slug+"/publish", nil, "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, h, "POST", "/api/admin/stories/"+st.Slug+"/paid", nil, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, "POST", "/api/stories/"+st.Slug+"/publish", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	got = decode[story.Story](t, do(t, h, "GET", "/api/stories/"+st.Slug, nil, ""))
	assert.True(t, got.Published)
}

func TestReorderStory(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, "POST", "/api/stories", map[string]any{
		"title": "Order Test",
		"slides": []map[string]any{
			{"text": "one"},
			{"text": "two"},
			{"text": "three"},
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decode[story.Story](t, rec)

	reversed := []string{st.Slides[2].ID, st.Slides[1].ID, st.Slides[0].ID}
	rec = do(t, h, "PUT", "/api/stories/"+st.Slug+"/order", map[string]any{"order": reversed}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[story.Story](t, rec)
	assert.Equal(t, "three", got.Slides[0].Text)
	assert.Equal(t, "one", got.Slides[2].Text)

	// Dropping a slide ID rejects the whole reorder.
	rec = do(t, h, "PUT", "/api/stories/"+st.Slug+"/order",
		map[string]any{"order": reversed[:2]}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStoryRejectsEmpty(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv.Handler(), "POST", "/api/stories", map[string]any{
		"title":  "Empty",
		"slides": []map[string]any{},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishUnknownStory(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv.Handler(), "POST", "/api/stories/nope/publish", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetsAndPrices(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, "POST", "/api/admin/assets", map[string]any{
		"kind": "theme",
		"name": "confetti",
		"meta": `{"primary":"#ff5a5f"}`,
	}, testToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, "POST", "/api/admin/assets", map[string]any{
		"kind": "hologram",
		"name": "x",
	}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assets := decode[[]store.Asset](t, do(t, h, "GET", "/api/assets/theme", nil, ""))
	require.Len(t, assets, 1)
	assert.Equal(t, "confetti", assets[0].Name)

	rec = do(t, h, "GET", "/api/assets/hologram", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "DELETE", "/api/admin/assets/theme/confetti", nil, testToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, "PUT", "/api/admin/prices/publish-fee", map[string]any{
		"amount": 4900,
	}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	price := decode[store.Price](t, do(t, h, "GET", "/api/prices/publish-fee", nil, ""))
	assert.Equal(t, int64(4900), price.Amount)
	assert.Equal(t, "KRW", price.Currency, "currency defaults")

	rec = do(t, h, "GET", "/api/prices/vip", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMailTemplates(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, "GET", "/api/admin/mail-templates/published", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, "PUT", "/api/admin/mail-templates/published", map[string]any{
		"subject": "Your card is live",
		"body":    "Share it: {{.URL}}",
	}, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	tpl := decode[store.MailTemplate](t, do(t, h, "GET", "/api/admin/mail-templates/published", nil, testToken))
	assert.Equal(t, "Your card is live", tpl.Subject)
}
