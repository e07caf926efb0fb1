package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"atlas-backend/internal/collab"
	"atlas-backend/internal/config"
	"atlas-backend/internal/engine"
	"atlas-backend/internal/graph"
	"atlas-backend/internal/interfaces/http/handlers"
	"atlas-backend/internal/memory"
	"atlas-backend/internal/observability"
	"atlas-backend/internal/semantic"
	"atlas-backend/internal/session"
	"atlas-backend/pkg/auth"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		Environment: config.Development,
		Server:      config.Server{RequestTimeout: 5 * time.Second},
		Security:    config.Security{EnableAuth: false, AllowedOrigins: []string{"*"}},
		Metrics:     config.Metrics{Enabled: true, Path: "/metrics"},
	}

	g := graph.NewStore(logger)
	embedder := semantic.NewHashEmbedder()
	matcher := semantic.NewMatcher(embedder, semantic.DefaultThreshold, logger)
	mem := memory.NewService(memory.NewInMemoryStore(logger), logger)
	suggester := engine.NewSuggester(g, mem, logger)
	sessions := session.NewRegistry(func(userID string) *engine.Engine {
		return engine.New(userID, g, embedder, matcher, mem, suggester, logger)
	}, time.Minute, logger)

	metrics := observability.NewCollector()
	tracer, err := observability.InitTracing(config.Tracing{Enabled: false, ServiceName: "test"}, "development")
	require.NoError(t, err)

	return NewRouter(Deps{
		Config:     cfg,
		Navigation: handlers.NewNavigationHandler(sessions, mem, metrics, tracer, logger),
		Graph:      handlers.NewGraphHandler(g, collab.NewBoard(logger), logger),
		Health:     handlers.NewHealthHandler(g, sessions),
		Metrics:    metrics,
		Logger:     logger,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(auth.UserIDHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedGraph(t *testing.T, h http.Handler) {
	t.Helper()
	topics := []map[string]interface{}{
		{"id": "general", "name": "General", "familiarity": 0.5,
			"nearbyTopics": []map[string]interface{}{{"topicId": "nlp", "distance": 1.0}}},
		{"id": "nlp", "name": "Natural Language Processing", "familiarity": 0.6,
			"commonUserIntents": []string{"sentiment analysis"},
			"nearbyTopics":      []map[string]interface{}{{"topicId": "general", "distance": 1.0}}},
	}
	for _, topic := range topics {
		rec := doJSON(t, h, "POST", "/api/graph/topics", "admin", topic)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, "POST", "/api/graph/landmarks", "admin", map[string]interface{}{
		"id": "lm-primer", "title": "NLP Primer", "topicNeighbourhood": "nlp",
		"reliabilityScore": 0.8,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, "POST", "/api/graph/routes", "admin", map[string]interface{}{
		"id": "general-to-nlp", "from": "general", "to": "nlp",
		"type": "related", "distance": 1.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_NavigateEndToEnd(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/navigate", "alice", map[string]interface{}{
		"input": "sentiment analysis",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Success  bool `json:"success"`
		Location struct {
			TopicID string `json:"topicId"`
		} `json:"location"`
		Orientation struct {
			Landmarks []struct {
				ID string `json:"id"`
			} `json:"landmarks"`
		} `json:"orientation"`
		Route []string `json:"route"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.True(t, result.Success)
	assert.Equal(t, "nlp", result.Location.TopicID)
	assert.Equal(t, []string{"general-to-nlp"}, result.Route)
	require.NotEmpty(t, result.Orientation.Landmarks)
	assert.Equal(t, "lm-primer", result.Orientation.Landmarks[0].ID)
}

func TestRouter_NavigateUnmappedArea(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/navigate", "alice", map[string]interface{}{
		"input": "zzz_no_such_topic",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestRouter_NavigateValidation(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, "POST", "/api/navigate", "alice", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GoBackWithoutHistory(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/navigate/back", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRouter_RejectSourceFiltersOrientation(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/sources/lm-primer/reject", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "POST", "/api/navigate", "alice", map[string]interface{}{
		"input": "sentiment analysis",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "lm-primer")

	// Same landmark still visible to a different user.
	rec = doJSON(t, h, "POST", "/api/navigate", "bob", map[string]interface{}{
		"input": "sentiment analysis",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lm-primer")
}

func TestRouter_MarkUnmapped(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/topics/nlp/unmapped", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Familiarity float64 `json:"familiarity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 0.5, result.Familiarity, 1e-9)

	rec = doJSON(t, h, "POST", "/api/topics/ghost/unmapped", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Annotations(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "POST", "/api/landmarks/lm-primer/annotations", "alice", map[string]interface{}{
		"text": "solid starting point",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var annotation struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &annotation))

	rec = doJSON(t, h, "POST", "/api/annotations/"+annotation.ID+"/vote", "bob", map[string]interface{}{"up": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "GET", "/api/landmarks/lm-primer/annotations", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "solid starting point")

	rec = doJSON(t, h, "POST", "/api/landmarks/ghost/annotations", "alice", map[string]interface{}{"text": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MetricsExposed(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_OrientationAndSuggestions(t *testing.T) {
	h := newTestRouter(t)
	seedGraph(t, h)

	rec := doJSON(t, h, "GET", "/api/orientation", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"general"`)

	rec = doJSON(t, h, "GET", "/api/suggestions", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestions":[]`)
}
