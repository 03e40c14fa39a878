package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
	"github.com/hooray-app/hooray/internal/story"
)

// homeResponse is the homepage payload: the hero event plus the library
// sections, computed in one pass over the event table.
type homeResponse struct {
	Spotlight *event.Event   `json:"spotlight"`
	Sections  event.Sections `json:"sections"`
}

func (srv *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	events, err := srv.store.ListEvents(r.Context())
	if err != nil {
		serverError(w, "list events", err)
		return
	}
	now := srv.clock.Now()
	writeJSON(w, http.StatusOK, homeResponse{
		Spotlight: event.SelectSpotlight(events, now),
		Sections:  event.BuildLibrarySections(events, now),
	})
}

func (srv *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := srv.store.ListEvents(r.Context())
	if err != nil {
		serverError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (srv *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := srv.store.GetEventBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		serverError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (srv *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	p, err := srv.store.GetPrice(r.Context(), r.PathValue("code"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "price not found")
		return
	}
	if err != nil {
		serverError(w, "get price", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (srv *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	kind := store.AssetKind(r.PathValue("kind"))
	if !store.ValidAssetKind(kind) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown asset kind %q", kind))
		return
	}
	assets, err := srv.store.ListAssets(r.Context(), kind)
	if err != nil {
		serverError(w, "list assets", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// createStoryRequest is the creation-flow payload.
type createStoryRequest struct {
	Title    string        `json:"title"`
	EventID  string        `json:"event_id"`
	MusicURL string        `json:"music_url"`
	AutoPlay bool          `json:"auto_play"`
	Slides   []story.Slide `json:"slides"`
}

func (srv *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var req createStoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := uuid.Must(uuid.NewV7()).String()
	for i := range req.Slides {
		if req.Slides[i].ID == "" {
			req.Slides[i].ID = story.NewSlideID()
		}
	}
	now := srv.clock.Now()
	// The slug gets an ID suffix so identical titles never collide.
	slug := story.Slugify(req.Title) + "-" + id[len(id)-8:]
	st := story.Story{
		ID:        id,
		Slug:      slug,
		Title:     req.Title,
		EventID:   req.EventID,
		MusicURL:  req.MusicURL,
		AutoPlay:  req.AutoPlay,
		Slides:    req.Slides,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := srv.store.CreateStory(r.Context(), st); err != nil {
		serverError(w, "create story", err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (srv *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	st, err := srv.store.GetStoryBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		serverError(w, "get story", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type updateStoryRequest struct {
	Title    string        `json:"title"`
	EventID  string        `json:"event_id"`
	MusicURL string        `json:"music_url"`
	AutoPlay bool          `json:"auto_play"`
	Slides   []story.Slide `json:"slides"`
}

func (srv *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	var req updateStoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := srv.store.GetStoryBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		serverError(w, "get story", err)
		return
	}

	st.Title = req.Title
	st.EventID = req.EventID
	st.MusicURL = req.MusicURL
	st.AutoPlay = req.AutoPlay
	for i := range req.Slides {
		if req.Slides[i].ID == "" {
			req.Slides[i].ID = story.NewSlideID()
		}
	}
	st.Slides = req.Slides
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := srv.store.UpdateStory(r.Context(), st, srv.clock.Now()); err != nil {
		serverError(w, "update story", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type reorderRequest struct {
	Order []string `json:"order"`
}

func (srv *Server) handleReorderStory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := srv.store.GetStoryBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		serverError(w, "get story", err)
		return
	}

	if err := st.Reorder(req.Order); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := srv.store.UpdateStory(r.Context(), st, srv.clock.Now()); err != nil {
		serverError(w, "update story", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (srv *Server) handlePublishStory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	err := srv.store.PublishStory(r.Context(), slug, srv.clock.Now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "story not found")
	case errors.Is(err, store.ErrNotPaid):
		writeError(w, http.StatusPaymentRequired, "publishing fee not settled")
	case err != nil:
		serverError(w, "publish story", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
	}
}

func serverError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
