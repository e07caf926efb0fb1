package semantic

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
)

// DefaultThreshold is the minimum cosine similarity for a semantic match.
const DefaultThreshold = 0.7

// MatchKind distinguishes what graph entity a match points at.
type MatchKind string

const (
	MatchTopic    MatchKind = "topic"
	MatchLandmark MatchKind = "landmark"
)

// Match is one candidate destination with its similarity score.
type Match struct {
	Kind  MatchKind
	ID    string
	Score float64
}

// Matcher scores a query against topic and landmark text and returns the
// candidates above threshold, best first. The threshold can be adjusted at
// runtime, for instance from a configuration reload.
type Matcher struct {
	embedder Embedder
	logger   *zap.Logger

	mu        sync.RWMutex
	threshold float64
}

// NewMatcher creates a matcher. A non-positive threshold falls back to the
// default.
func NewMatcher(embedder Embedder, threshold float64, logger *zap.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{embedder: embedder, threshold: threshold, logger: logger}
}

// TopicText is the canonical embeddable representation of a topic: its name,
// description and common user intents.
func TopicText(t *atlas.Topic) string {
	parts := []string{t.Name, t.Description}
	parts = append(parts, t.CommonUserIntents...)
	return strings.Join(parts, " ")
}

// LandmarkText is the canonical embeddable representation of a landmark.
func LandmarkText(l *atlas.Landmark) string {
	return l.Title + " " + l.Summary
}

// FindMatches embeds the query and compares it against every topic and
// landmark. Entities scoring below the threshold are dropped; survivors come
// back sorted by score descending.
func (m *Matcher) FindMatches(ctx context.Context, query []float64, topics []*atlas.Topic, landmarks []*atlas.Landmark) ([]Match, error) {
	threshold := m.Threshold()
	matches := make([]Match, 0)

	for _, t := range topics {
		vec, err := m.embedder.Embed(ctx, TopicText(t))
		if err != nil {
			return nil, err
		}
		if score := CosineSimilarity(query, vec); score >= threshold {
			matches = append(matches, Match{Kind: MatchTopic, ID: t.ID, Score: score})
		}
	}
	for _, l := range landmarks {
		vec, err := m.embedder.Embed(ctx, LandmarkText(l))
		if err != nil {
			return nil, err
		}
		if score := CosineSimilarity(query, vec); score >= threshold {
			matches = append(matches, Match{Kind: MatchLandmark, ID: l.ID, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	m.logger.Debug("semantic match pass",
		zap.Int("candidates", len(topics)+len(landmarks)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

// Threshold exposes the configured similarity cutoff.
func (m *Matcher) Threshold() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threshold
}

// SetThreshold replaces the similarity cutoff. Non-positive values are
// ignored.
func (m *Matcher) SetThreshold(v float64) {
	if v <= 0 {
		return
	}
	m.mu.Lock()
	m.threshold = v
	m.mu.Unlock()
}
