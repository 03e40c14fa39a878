package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
)

// upsertEventRequest mirrors the event record with RFC 3339 dates, the
// same shapes the catalog compiler accepts.
type upsertEventRequest struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Tier    int    `json:"tier"`
	Date    string `json:"date"`
	Launch  string `json:"launch"`
	End     string `json:"end"`
	ThemeID string `json:"theme_id"`
}

func (srv *Server) handleUpsertEvent(w http.ResponseWriter, r *http.Request) {
	var req upsertEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := srv.store.UpsertEvent(r.Context(), e); err != nil {
		serverError(w, "upsert event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (req upsertEventRequest) toEvent() (event.Event, error) {
	if req.Slug == "" {
		return event.Event{}, errors.New("slug is required")
	}
	kind := event.Kind(req.Kind)
	switch kind {
	case event.KindOneTime, event.KindRecurring, event.KindEvergreen:
	default:
		return event.Event{}, fmt.Errorf("unknown kind %q", req.Kind)
	}
	status := event.Status(req.Status)
	switch status {
	case event.StatusUpcoming, event.StatusActive, event.StatusEnded:
	case "":
		status = event.StatusUpcoming
	default:
		return event.Event{}, fmt.Errorf("unknown status %q", req.Status)
	}
	if req.Tier < 0 || req.Tier > event.DefaultTier {
		return event.Event{}, fmt.Errorf("tier must be 0..%d", event.DefaultTier)
	}

	e := event.Event{
		ID:      "ev-" + req.Slug,
		Slug:    req.Slug,
		Title:   req.Title,
		Kind:    kind,
		Status:  status,
		Tier:    req.Tier,
		ThemeID: req.ThemeID,
	}
	var err error
	if e.Date, err = parseDate(req.Date, kind != event.KindEvergreen, "date"); err != nil {
		return event.Event{}, err
	}
	if e.LaunchDate, err = parseDate(req.Launch, true, "launch"); err != nil {
		return event.Event{}, err
	}
	if e.EndDate, err = parseDate(req.End, kind != event.KindEvergreen, "end"); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func parseDate(s string, required bool, field string) (time.Time, error) {
	if s == "" {
		if required {
			return time.Time{}, fmt.Errorf("%s is required", field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: not an RFC 3339 timestamp: %q", field, s)
	}
	return t.UTC(), nil
}

type statusRequest struct {
	Status string `json:"status"`
}

func (srv *Server) handleUpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status := event.Status(req.Status)
	switch status {
	case event.StatusUpcoming, event.StatusActive, event.StatusEnded:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}
	err := srv.store.UpdateEventStatus(r.Context(), r.PathValue("slug"), status)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		serverError(w, "update event status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (srv *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := srv.store.DeleteEvent(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		serverError(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) handleUpsertAsset(w http.ResponseWriter, r *http.Request) {
	var a store.Asset
	if !decodeBody(w, r, &a) {
		return
	}
	if a.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !store.ValidAssetKind(a.Kind) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown asset kind %q", a.Kind))
		return
	}
	if a.ID == "" {
		a.ID = fmt.Sprintf("as-%s-%s", a.Kind, a.Name)
	}
	if err := srv.store.UpsertAsset(r.Context(), a); err != nil {
		serverError(w, "upsert asset", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (srv *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	kind := store.AssetKind(r.PathValue("kind"))
	err := srv.store.DeleteAsset(r.Context(), kind, r.PathValue("name"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		serverError(w, "delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type priceRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (srv *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "KRW"
	}
	p := store.Price{Code: r.PathValue("code"), Amount: req.Amount, Currency: currency}
	if err := srv.store.SetPrice(r.Context(), p, srv.clock.Now()); err != nil {
		serverError(w, "set price", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type mailTemplateRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (srv *Server) handleGetMailTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := srv.store.GetMailTemplate(r.Context(), r.PathValue("name"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "mail template not found")
		return
	}
	if err != nil {
		serverError(w, "get mail template", err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (srv *Server) handleUpsertMailTemplate(w http.ResponseWriter, r *http.Request) {
	var req mailTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tpl := store.MailTemplate{Name: r.PathValue("name"), Subject: req.Subject, Body: req.Body}
	if err := srv.store.UpsertMailTemplate(r.Context(), tpl, srv.clock.Now()); err != nil {
		serverError(w, "upsert mail template", err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// handleMarkPaid records payment settlement for a story. In production
// this is called by the payment webhook relay; the gateway itself is out
// of scope.
func (srv *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	err := srv.store.MarkPaid(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		serverError(w, "mark paid", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}
