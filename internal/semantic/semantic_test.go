package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
	appErrors "atlas-backend/pkg/errors"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "machine learning basics")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "machine learning basics")
	require.NoError(t, err)

	assert.Len(t, a, EmbeddingDim)
	assert.Equal(t, a, b)
}

func TestHashEmbedder_NormalizationInvariance(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	// Case and punctuation are stripped, so these share a token multiset.
	a, _ := e.Embed(ctx, "Machine Learning!")
	b, _ := e.Embed(ctx, "machine learning")
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
}

func TestHashEmbedder_ShortTokensDropped(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	// Every token here is two characters or fewer.
	vec, err := e.Embed(ctx, "a of to it")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashEmbedder_CachedResultIsIsolated(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "graph navigation")
	a[0] = 42

	b, _ := e.Embed(ctx, "graph navigation")
	assert.NotEqual(t, 42.0, b[0], "callers must not be able to poison the cache")
}

func TestCosineSimilarity_Edges(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}), "length mismatch")
	assert.Zero(t, CosineSimilarity([]float64{0, 0}, []float64{1, 0}), "zero magnitude")
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{3, 4}, []float64{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
}

func TestMatcher_FindMatches(t *testing.T) {
	e := NewHashEmbedder()
	m := NewMatcher(e, DefaultThreshold, zap.NewNop())
	ctx := context.Background()

	topics := []*atlas.Topic{
		{ID: "nlp", Name: "Natural Language Processing", Description: "text understanding"},
		{ID: "databases", Name: "Databases", Description: "storage engines indexing transactions"},
	}
	landmarks := []*atlas.Landmark{
		{ID: "l1", Title: "Natural Language Processing", Summary: "text understanding"},
	}

	query, err := e.Embed(ctx, "natural language processing text understanding")
	require.NoError(t, err)

	matches, err := m.FindMatches(ctx, query, topics, landmarks)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.InDelta(t, 1.0, matches[0].Score, 1e-9, "exact token overlap scores highest")
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Score, matches[i-1].Score, "matches sorted best first")
	}
	for _, match := range matches {
		assert.NotEqual(t, "databases", match.ID, "unrelated topic must stay below threshold")
		assert.GreaterOrEqual(t, match.Score, DefaultThreshold)
	}
}

func TestMatcher_SetThreshold(t *testing.T) {
	e := NewHashEmbedder()
	m := NewMatcher(e, DefaultThreshold, zap.NewNop())
	ctx := context.Background()

	topics := []*atlas.Topic{{ID: "nlp", Name: "Natural Language Processing", Description: "text understanding"}}
	query, err := e.Embed(ctx, "natural language")
	require.NoError(t, err)

	matches, err := m.FindMatches(ctx, query, topics, nil)
	require.NoError(t, err)
	assert.Empty(t, matches, "partial overlap stays below the default cutoff")

	m.SetThreshold(0.3)
	assert.InDelta(t, 0.3, m.Threshold(), 1e-9)

	matches, err = m.FindMatches(ctx, query, topics, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	m.SetThreshold(0)
	assert.InDelta(t, 0.3, m.Threshold(), 1e-9, "non-positive values are ignored")
}

func TestMatcher_NoMatchesForUnrelatedQuery(t *testing.T) {
	e := NewHashEmbedder()
	m := NewMatcher(e, DefaultThreshold, zap.NewNop())
	ctx := context.Background()

	query, _ := e.Embed(ctx, "medieval castle architecture")
	matches, err := m.FindMatches(ctx, query,
		[]*atlas.Topic{{ID: "nlp", Name: "Natural Language Processing"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("provider down")
}

func TestBreakerEmbedder_MapsFailuresToUnavailable(t *testing.T) {
	b := NewBreakerEmbedder(failingEmbedder{}, time.Second, nil, zap.NewNop())

	_, err := b.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, appErrors.IsUnavailable(err))
}

func TestBreakerEmbedder_OpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreakerEmbedder(failingEmbedder{}, time.Second, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := b.Embed(ctx, "anything")
		require.Error(t, err)
		assert.True(t, appErrors.IsUnavailable(err))
	}
}

func TestBreakerEmbedder_PassesThroughSuccess(t *testing.T) {
	b := NewBreakerEmbedder(NewHashEmbedder(), time.Second, nil, zap.NewNop())

	vec, err := b.Embed(context.Background(), "machine learning")
	require.NoError(t, err)
	assert.Len(t, vec, EmbeddingDim)
}

type recordingObserver struct {
	calls    int
	failures int
}

func (r *recordingObserver) ObserveEmbedding(_ time.Duration, err error) {
	r.calls++
	if err != nil {
		r.failures++
	}
}

func TestBreakerEmbedder_ReportsObservations(t *testing.T) {
	obs := &recordingObserver{}
	b := NewBreakerEmbedder(NewHashEmbedder(), time.Second, obs, zap.NewNop())

	_, err := b.Embed(context.Background(), "machine learning")
	require.NoError(t, err)
	assert.Equal(t, 1, obs.calls)
	assert.Zero(t, obs.failures)
}

func TestBreakerEmbedder_ReportsFailuresAndRejections(t *testing.T) {
	obs := &recordingObserver{}
	b := NewBreakerEmbedder(failingEmbedder{}, time.Second, obs, zap.NewNop())
	ctx := context.Background()

	// Six attempts: five provider failures trip the breaker, the sixth is
	// rejected while open. All of them must be observed.
	for i := 0; i < 6; i++ {
		_, err := b.Embed(ctx, "anything")
		require.Error(t, err)
	}
	assert.Equal(t, 6, obs.calls)
	assert.Equal(t, 6, obs.failures)
}
