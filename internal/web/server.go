// Package web is the cross-context messaging surface. UI surfaces
// (popup, new-tab page) reach the background process through it; it
// owns no UI state.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tewodrosm/scripture-notify/internal/background"
	"github.com/tewodrosm/scripture-notify/internal/model"
)

// VerseSource fetches a random verse for the new-tab surface.
type VerseSource interface {
	RandomVerse(ctx context.Context) (model.RandomVerse, error)
}

type Server struct {
	orch   *background.Orchestrator
	verses VerseSource
	router chi.Router
}

func NewServer(orch *background.Orchestrator, verses VerseSource) *Server {
	s := &Server{orch: orch, verses: verses, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*", "chrome-extension://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/message", s.handleMessage)
	s.router.Post("/plan", s.handleCreatePlan)
	s.router.Get("/plan/progress", s.handleProgress)
	s.router.Put("/unit/{unitID}/read", s.handleMarkRead)
	s.router.Get("/random-verse", s.handleRandomVerse)
	s.router.Get("/next-delivery", s.handleNextDelivery)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMessage is the generic message channel. refreshPlan is
// acknowledged only: the progress refetch happens in the UI layer.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message body"})
		return
	}

	status, ok := s.orch.HandleMessage(msg.Action)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action: " + msg.Action})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan body"})
		return
	}

	planID, err := s.orch.CreatePlan(r.Context(), req)
	if err != nil {
		if errors.Is(err, background.ErrQueuedOffline) {
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
			return
		}
		slog.Error("Create plan failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan_id": planID})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.orch.Progress(r.Context())
	if err != nil {
		slog.Error("Progress fetch failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "unitID")
	if err := s.orch.MarkUnitRead(r.Context(), unitID); err != nil {
		slog.Error("Mark-as-read failed", "unit", unitID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleNextDelivery(w http.ResponseWriter, r *http.Request) {
	next := s.orch.NextDelivery()
	writeJSON(w, http.StatusOK, map[string]string{"next": next.Format(time.RFC3339)})
}

func (s *Server) handleRandomVerse(w http.ResponseWriter, r *http.Request) {
	v, err := s.verses.RandomVerse(r.Context())
	if err != nil {
		slog.Error("Random verse fetch failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, v)
}
