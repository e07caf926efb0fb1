package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
	"atlas-backend/internal/graph"
	"atlas-backend/internal/memory"
)

func newSuggesterFixture(t *testing.T) (*Suggester, *memory.Service) {
	t.Helper()
	logger := zap.NewNop()
	g := graph.NewStore(logger)

	topics := []atlas.Topic{
		{ID: "home", Name: "Home"},
		{ID: "docs", Name: "Documentation"},
		{ID: "pricing", Name: "Pricing"},
		{ID: "blog", Name: "Blog"},
	}
	for _, tp := range topics {
		_, err := g.UpsertTopic(tp)
		require.NoError(t, err)
	}
	routes := []atlas.Route{
		{ID: "home-to-docs", From: "home", To: "docs", Distance: 1},
		{ID: "home-to-pricing", From: "home", To: "pricing", Distance: 1},
		{ID: "home-to-blog", From: "home", To: "blog", Distance: 1},
		{ID: "docs-to-pricing", From: "docs", To: "pricing", Distance: 1},
	}
	for _, r := range routes {
		_, err := g.UpsertRoute(r)
		require.NoError(t, err)
	}

	mem := memory.NewService(memory.NewInMemoryStore(logger), logger)
	return NewSuggester(g, mem, logger), mem
}

// recordLeg appends one travelled path entry with a single route.
func recordLeg(t *testing.T, mem *memory.Service, from, to, routeID string) {
	t.Helper()
	require.NoError(t, mem.RecordPath("alice", memory.PathEntry{
		FromTopicID: from, ToTopicID: to, RouteIDs: []string{routeID},
	}))
}

func TestSuggester_AnalyzePatterns(t *testing.T) {
	s, mem := newSuggesterFixture(t)

	// Four repeats of the "then go to docs" follow-up leg.
	for i := 0; i < 4; i++ {
		recordLeg(t, mem, "docs", "pricing", "docs-to-pricing")
		recordLeg(t, mem, "home", "docs", "home-to-docs")
	}

	counts, err := s.AnalyzePatterns("alice")
	require.NoError(t, err)
	assert.Equal(t, 4, counts["home-to-docs"])
	assert.Equal(t, 3, counts["docs-to-pricing"])
}

func TestSuggester_Suggestions(t *testing.T) {
	s, mem := newSuggesterFixture(t)

	for i := 0; i < 4; i++ {
		recordLeg(t, mem, "docs", "pricing", "docs-to-pricing")
		recordLeg(t, mem, "home", "docs", "home-to-docs")
	}

	got, err := s.Suggestions("alice", "home")
	require.NoError(t, err)
	require.Len(t, got, 1, "only routes repeated more than twice qualify")

	assert.Equal(t, "docs", got[0].TopicID)
	assert.Equal(t, "home-to-docs", got[0].RouteID)
	assert.InDelta(t, 0.4, got[0].Confidence, 1e-9)
	assert.Contains(t, got[0].Reason, "4 times")
}

func TestSuggester_Suggestions_SortedAndCapped(t *testing.T) {
	s, mem := newSuggesterFixture(t)

	// home-to-docs repeats 5 times as a follow-up, home-to-pricing 3 times,
	// home-to-blog only twice (below the bar).
	seed := []struct {
		routeID string
		repeats int
	}{
		{"home-to-docs", 5},
		{"home-to-pricing", 3},
		{"home-to-blog", 2},
	}
	recordLeg(t, mem, "docs", "pricing", "docs-to-pricing")
	for _, sd := range seed {
		for i := 0; i < sd.repeats; i++ {
			recordLeg(t, mem, "blog", "home", "filler")
			recordLeg(t, mem, "home", "docs", sd.routeID)
		}
	}

	got, err := s.Suggestions("alice", "home")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "home-to-docs", got[0].RouteID)
	assert.Equal(t, "home-to-pricing", got[1].RouteID)
	assert.Greater(t, got[0].Confidence, got[1].Confidence)
}

func TestSuggester_ConfidenceCapsAtOne(t *testing.T) {
	s, mem := newSuggesterFixture(t)

	for i := 0; i < 15; i++ {
		recordLeg(t, mem, "docs", "pricing", "docs-to-pricing")
		recordLeg(t, mem, "home", "docs", "home-to-docs")
	}

	got, err := s.Suggestions("alice", "home")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, got[0].Confidence, 1.0)
}

func TestSuggester_EmptyHistory(t *testing.T) {
	s, _ := newSuggesterFixture(t)
	got, err := s.Suggestions("alice", "home")
	require.NoError(t, err)
	assert.Empty(t, got)
}
