// Package server exposes the public and admin HTTP JSON API.
//
// The public surface covers the homepage (spotlight + library sections),
// story creation, and the story viewer payload. The admin surface manages
// events, assets, prices, and mail templates and is gated by a bearer
// token carried in an explicit Session value - handlers never read
// ambient auth state.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
)

// Server wires the store and clock into HTTP handlers.
type Server struct {
	store      *store.Store
	clock      event.Clock
	adminToken string
}

// New creates a server. An empty adminToken disables the whole admin
// surface; requests to it are rejected rather than silently open.
func New(s *store.Store, clock event.Clock, adminToken string) *Server {
	return &Server{store: s, clock: clock, adminToken: adminToken}
}

// Handler builds the route table.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/home", srv.handleHome)
	mux.HandleFunc("GET /api/events", srv.handleListEvents)
	mux.HandleFunc("GET /api/events/{slug}", srv.handleGetEvent)
	mux.HandleFunc("GET /api/prices/{code}", srv.handleGetPrice)
	mux.HandleFunc("GET /api/assets/{kind}", srv.handleListAssets)

	mux.HandleFunc("POST /api/stories", srv.handleCreateStory)
	mux.HandleFunc("GET /api/stories/{slug}", srv.handleGetStory)
	mux.HandleFunc("PUT /api/stories/{slug}", srv.handleUpdateStory)
	mux.HandleFunc("PUT /api/stories/{slug}/order", srv.handleReorderStory)
	mux.HandleFunc("POST /api/stories/{slug}/publish", srv.handlePublishStory)

	mux.HandleFunc("POST /api/admin/events", srv.admin(srv.handleUpsertEvent))
	mux.HandleFunc("PUT /api/admin/events/{slug}/status", srv.admin(srv.handleUpdateEventStatus))
	mux.HandleFunc("DELETE /api/admin/events/{slug}", srv.admin(srv.handleDeleteEvent))
	mux.HandleFunc("POST /api/admin/assets", srv.admin(srv.handleUpsertAsset))
	mux.HandleFunc("DELETE /api/admin/assets/{kind}/{name}", srv.admin(srv.handleDeleteAsset))
	mux.HandleFunc("PUT /api/admin/prices/{code}", srv.admin(srv.handleSetPrice))
	mux.HandleFunc("GET /api/admin/mail-templates/{name}", srv.admin(srv.handleGetMailTemplate))
	mux.HandleFunc("PUT /api/admin/mail-templates/{name}", srv.admin(srv.handleUpsertMailTemplate))
	mux.HandleFunc("POST /api/admin/stories/{slug}/paid", srv.admin(srv.handleMarkPaid))

	return logRequests(mux)
}

// Session is the per-request auth context, derived once from the request
// and passed explicitly to anything that needs it.
type Session struct {
	Admin bool
}

// sessionFrom derives the session from the Authorization header.
func (srv *Server) sessionFrom(r *http.Request) Session {
	if srv.adminToken == "" {
		return Session{}
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return Session{}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(srv.adminToken)) == 1 {
		return Session{Admin: true}
	}
	return Session{}
}

// admin wraps a handler with the admin gate.
func (srv *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := srv.sessionFrom(r); !sess.Admin {
			writeError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		next(w, r)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		slog.Debug("request handled", "method", r.Method, "path", r.URL.Path)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody parses a JSON request body, rejecting unknown fields so
// client typos surface as 400s instead of silently dropped settings.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
