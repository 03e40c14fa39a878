package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooray-app/hooray/internal/event"
)

var baseTime = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func sampleEvent(slug string) event.Event {
	return event.Event{
		ID:         "ev-" + slug,
		Slug:       slug,
		Title:      "Event " + slug,
		Kind:       event.KindOneTime,
		Status:     event.StatusActive,
		Tier:       2,
		Date:       baseTime.Add(14 * 24 * time.Hour),
		LaunchDate: baseTime,
		EndDate:    baseTime.Add(21 * 24 * time.Hour),
		ThemeID:    "theme-default",
	}
}

func TestUpsertEvent_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	want := sampleEvent("valentines")
	require.NoError(t, s.UpsertEvent(ctx, want))

	got, err := s.GetEventBySlug(ctx, "valentines")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpsertEvent_SlugConflictUpdatesInPlace(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := sampleEvent("spring")
	require.NoError(t, s.UpsertEvent(ctx, e))

	e.Title = "Spring, renamed"
	e.Tier = 1
	require.NoError(t, s.UpsertEvent(ctx, e))

	got, err := s.GetEventBySlug(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, "Spring, renamed", got.Title)
	assert.Equal(t, 1, got.Tier)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGetEventBySlug_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.GetEventBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEvents_PreservesInsertionOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, slug := range []string{"c-third", "a-first", "b-second"} {
		require.NoError(t, s.UpsertEvent(ctx, sampleEvent(slug)))
	}

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "c-third", events[0].Slug)
	assert.Equal(t, "a-first", events[1].Slug)
	assert.Equal(t, "b-second", events[2].Slug)
}

func TestListEvents_EmptyIsNotNil(t *testing.T) {
	s := newStore(t)
	events, err := s.ListEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestUpdateEventStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEvent(ctx, sampleEvent("launch")))
	require.NoError(t, s.UpdateEventStatus(ctx, "launch", event.StatusEnded))

	got, err := s.GetEventBySlug(ctx, "launch")
	require.NoError(t, err)
	assert.Equal(t, event.StatusEnded, got.Status)

	assert.ErrorIs(t, s.UpdateEventStatus(ctx, "missing", event.StatusActive), ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEvent(ctx, sampleEvent("gone")))
	require.NoError(t, s.DeleteEvent(ctx, "gone"))

	_, err := s.GetEventBySlug(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteEvent(ctx, "gone"), ErrNotFound)
}

func TestApplyRollover_PersistsRolledEvents(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := sampleEvent("lunar")
	e.Kind = event.KindRecurring
	e.EndDate = baseTime.Add(-24 * time.Hour)
	e.Date = baseTime.Add(-10 * 24 * time.Hour)
	require.NoError(t, s.UpsertEvent(ctx, e))

	rolled := event.AdvanceRecurringEvents([]event.Event{e}, baseTime)
	require.Len(t, rolled, 1)
	require.NoError(t, s.ApplyRollover(ctx, rolled))

	got, err := s.GetEventBySlug(ctx, "lunar")
	require.NoError(t, err)
	assert.Equal(t, event.StatusUpcoming, got.Status)
	assert.Equal(t, e.Date.Add(event.RolloverInterval), got.Date)
	assert.Equal(t, e.EndDate.Add(event.RolloverInterval), got.EndDate)
}

func TestApplyRollover_EmptyIsNoOp(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.ApplyRollover(context.Background(), nil))
}
