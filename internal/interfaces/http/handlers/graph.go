package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"atlas-backend/internal/collab"
	"atlas-backend/internal/domain/atlas"
	"atlas-backend/internal/graph"
	"atlas-backend/internal/interfaces/http/dto"
	"atlas-backend/pkg/api"
	"atlas-backend/pkg/auth"
)

// GraphHandler serves graph ingestion and the shared annotation board.
type GraphHandler struct {
	graph  *graph.Store
	board  *collab.Board
	logger *zap.Logger
}

// NewGraphHandler wires the graph endpoints.
func NewGraphHandler(g *graph.Store, board *collab.Board, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{graph: g, board: board, logger: logger}
}

// UpsertTopic handles POST /api/graph/topics.
func (h *GraphHandler) UpsertTopic(w http.ResponseWriter, r *http.Request) {
	var req dto.TopicRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	nearby := make([]atlas.NearbyTopic, 0, len(req.NearbyTopics))
	for _, nb := range req.NearbyTopics {
		nearby = append(nearby, atlas.NearbyTopic{TopicID: nb.TopicID, Distance: nb.Distance})
	}

	topic, err := h.graph.UpsertTopic(atlas.Topic{
		ID:                 req.ID,
		Name:               req.Name,
		Description:        req.Description,
		ParentTopics:       req.ParentTopics,
		ChildTopics:        req.ChildTopics,
		NearbyTopics:       nearby,
		CommonUserIntents:  req.CommonUserIntents,
		PreferredLandmarks: req.PreferredLandmarks,
		Familiarity:        req.Familiarity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, topic)
}

// UpsertLandmark handles POST /api/graph/landmarks.
func (h *GraphHandler) UpsertLandmark(w http.ResponseWriter, r *http.Request) {
	var req dto.LandmarkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	landmark, err := h.graph.UpsertLandmark(atlas.Landmark{
		ID:                 req.ID,
		URL:                req.URL,
		Title:              req.Title,
		TopicNeighbourhood: req.TopicNeighbourhood,
		Summary:            req.Summary,
		StructuredFacts:    req.StructuredFacts,
		Provenance:         atlas.Provenance{Source: req.Source, SnapshotDate: req.SnapshotDate},
		ReliabilityScore:   req.ReliabilityScore,
		Content:            req.Content,
		Metadata:           req.Metadata,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, landmark)
}

// UpsertRoute handles POST /api/graph/routes.
func (h *GraphHandler) UpsertRoute(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	route, err := h.graph.UpsertRoute(atlas.Route{
		ID:          req.ID,
		From:        req.From,
		To:          req.To,
		Type:        atlas.RouteType(req.Type),
		Distance:    req.Distance,
		Confidence:  req.Confidence,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, route)
}

// GetTopic handles GET /api/graph/topics/{id}.
func (h *GraphHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	topic, ok := h.graph.Topic(chi.URLParam(r, "id"))
	if !ok {
		api.Error(w, http.StatusNotFound, "topic not found")
		return
	}
	api.Success(w, http.StatusOK, topic)
}

// AddAnnotation handles POST /api/landmarks/{id}/annotations.
func (h *GraphHandler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	var req dto.AnnotationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	landmarkID := chi.URLParam(r, "id")
	if _, ok := h.graph.Landmark(landmarkID); !ok {
		api.Error(w, http.StatusNotFound, "landmark not found")
		return
	}

	annotation, err := h.board.Add(landmarkID, auth.UserID(r.Context()), req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, annotation)
}

// ListAnnotations handles GET /api/landmarks/{id}/annotations.
func (h *GraphHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	annotations := h.board.ForLandmark(chi.URLParam(r, "id"))
	api.Success(w, http.StatusOK, map[string]interface{}{"annotations": annotations})
}

// VoteAnnotation handles POST /api/annotations/{id}/vote.
func (h *GraphHandler) VoteAnnotation(w http.ResponseWriter, r *http.Request) {
	var req dto.VoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	annotation, err := h.board.Vote(chi.URLParam(r, "id"), req.Up)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, annotation)
}
