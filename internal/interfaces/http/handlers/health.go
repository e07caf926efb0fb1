package handlers

import (
	"net/http"

	"atlas-backend/internal/graph"
	"atlas-backend/internal/session"
	"atlas-backend/pkg/api"
)

// HealthHandler reports liveness plus basic graph and session stats.
type HealthHandler struct {
	graph    *graph.Store
	sessions *session.Registry
}

// NewHealthHandler wires the health endpoint.
func NewHealthHandler(g *graph.Store, sessions *session.Registry) *HealthHandler {
	return &HealthHandler{graph: g, sessions: sessions}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	topics, landmarks, routes := h.graph.Stats()
	api.Success(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"graph": map[string]int{
			"topics":    topics,
			"landmarks": landmarks,
			"routes":    routes,
		},
		"activeSessions": h.sessions.Active(),
	})
}
