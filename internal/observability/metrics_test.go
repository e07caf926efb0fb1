package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_NavigationOutcomes(t *testing.T) {
	c := NewCollector()

	c.RecordNavigation(true)
	c.RecordNavigation(true)
	c.RecordNavigation(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.navigations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.navigations.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.unresolvedIntents))
}

func TestCollector_EmbeddingFailures(t *testing.T) {
	c := NewCollector()

	c.ObserveEmbedding(10*time.Millisecond, nil)
	c.ObserveEmbedding(10*time.Millisecond, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.embeddingFailures))
}

func TestCollector_HandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordNavigation(true)
	c.SetActiveSessions(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "atlas_navigations_total")
	assert.Contains(t, rec.Body.String(), "atlas_active_sessions 3")
}
