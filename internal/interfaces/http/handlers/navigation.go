package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atlas-backend/internal/interfaces/http/dto"
	"atlas-backend/internal/memory"
	"atlas-backend/internal/observability"
	"atlas-backend/internal/session"
	"atlas-backend/pkg/api"
	"atlas-backend/pkg/auth"
)

// NavigationHandler serves the per-user navigation surface: navigate, go
// back, orientation, suggestions, preferences and unmapped signals.
type NavigationHandler struct {
	sessions *session.Registry
	memory   *memory.Service
	metrics  *observability.Collector
	tracer   *observability.TracerProvider
	logger   *zap.Logger
}

// NewNavigationHandler wires the navigation endpoints.
func NewNavigationHandler(sessions *session.Registry, mem *memory.Service, metrics *observability.Collector, tracer *observability.TracerProvider, logger *zap.Logger) *NavigationHandler {
	return &NavigationHandler{
		sessions: sessions,
		memory:   mem,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// Navigate handles POST /api/navigate.
func (h *NavigationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req dto.NavigateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID := auth.UserID(r.Context())
	ctx, span := h.tracer.StartSpan(r.Context(), "engine.Navigate")
	result, err := h.sessions.Engine(userID).Navigate(ctx, req.Input, req.Context)
	span.End()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.metrics.RecordNavigation(result.Success)
	h.metrics.RecordSuggestions(len(result.Suggestions))
	h.metrics.SetActiveSessions(h.sessions.Active())
	api.Success(w, http.StatusOK, result)
}

// GoBack handles POST /api/navigate/back.
func (h *NavigationHandler) GoBack(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	result, err := h.sessions.Engine(userID).GoBack()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordBackNavigation(result.Success)
	api.Success(w, http.StatusOK, result)
}

// Orientation handles GET /api/orientation.
func (h *NavigationHandler) Orientation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	eng := h.sessions.Engine(userID)

	orientation, err := eng.CurrentOrientation()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"location":    eng.Location(),
		"orientation": orientation,
	})
}

// Suggestions handles GET /api/suggestions.
func (h *NavigationHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	eng := h.sessions.Engine(userID)

	suggestions, err := eng.Suggestions()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordSuggestions(len(suggestions))
	api.Success(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

// PreferSource handles POST /api/sources/{id}/prefer.
func (h *NavigationHandler) PreferSource(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.memory.PreferSource(userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "preference recorded"})
}

// RejectSource handles POST /api/sources/{id}/reject.
func (h *NavigationHandler) RejectSource(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.memory.RejectSource(userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "rejection recorded"})
}

// MarkUnmapped handles POST /api/topics/{id}/unmapped.
func (h *NavigationHandler) MarkUnmapped(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familiarity, err := h.sessions.Engine(userID).MarkUnmapped(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"familiarity": familiarity})
}

// AddCorrection handles POST /api/memory/corrections.
func (h *NavigationHandler) AddCorrection(w http.ResponseWriter, r *http.Request) {
	var req dto.CorrectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID := auth.UserID(r.Context())
	if err := h.memory.AddCorrection(userID, memory.Correction{LandmarkID: req.LandmarkID, Note: req.Note}); err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, api.MessageResponse{Message: "correction recorded"})
}

// SaveThread handles PUT /api/memory/threads/{id}.
func (h *NavigationHandler) SaveThread(w http.ResponseWriter, r *http.Request) {
	var req dto.ThreadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID := auth.UserID(r.Context())
	thread := memory.Thread{ID: chi.URLParam(r, "id"), Name: req.Name, TopicIDs: req.TopicIDs}
	if err := h.memory.SaveThread(userID, thread); err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, thread)
}

// GetThread handles GET /api/memory/threads/{id}.
func (h *NavigationHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	thread, err := h.memory.Thread(userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, thread)
}

// SetSessionContext handles PUT /api/memory/context.
func (h *NavigationHandler) SetSessionContext(w http.ResponseWriter, r *http.Request) {
	var req dto.SessionContextRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID := auth.UserID(r.Context())
	if err := h.memory.SetSessionContext(userID, req.Key, req.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "context updated"})
}
