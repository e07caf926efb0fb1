package engine

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"atlas-backend/internal/graph"
	"atlas-backend/internal/memory"
)

// Pattern mining tunables. A transition must repeat more than minPatternCount
// times before it is suggested; confidence saturates at ten repeats.
const (
	minPatternCount = 2
	maxSuggestions  = 3
)

// Suggestion proposes a likely next destination from the current location.
type Suggestion struct {
	TopicID    string  `json:"topicId"`
	RouteID    string  `json:"routeId"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Suggester mines a user's travelled-path history for repeated transitions
// and proposes likely next moves. Patterns are recomputed from scratch on
// every call; the history is capped, so the scan stays cheap.
type Suggester struct {
	graph  *graph.Store
	memory *memory.Service
	logger *zap.Logger
}

// NewSuggester creates a suggester over the shared graph and memory layer.
func NewSuggester(g *graph.Store, mem *memory.Service, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{graph: g, memory: mem, logger: logger}
}

// AnalyzePatterns counts repeated two-step transitions in the user's path
// history. For each consecutive pair of entries the key is the route id that
// starts the follow-up leg, so the counts can later be looked up directly by
// outgoing route id.
func (s *Suggester) AnalyzePatterns(userID string) (map[string]int, error) {
	mem, err := s.memory.Memory(userID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	paths := mem.CommonPaths
	for i := 1; i < len(paths); i++ {
		prev, cur := paths[i-1], paths[i]
		if len(prev.RouteIDs) == 0 || len(cur.RouteIDs) == 0 {
			continue
		}
		counts[cur.RouteIDs[0]]++
	}
	return counts, nil
}

// Suggestions proposes up to three next destinations from the current topic:
// outgoing routes whose id shows up as a repeated follow-up leg, ranked by
// how often the pattern recurred.
func (s *Suggester) Suggestions(userID, currentTopicID string) ([]Suggestion, error) {
	patterns, err := s.AnalyzePatterns(userID)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0)
	for _, route := range s.graph.RoutesFrom(currentTopicID) {
		count := patterns[route.ID]
		if count <= minPatternCount {
			continue
		}
		out = append(out, Suggestion{
			TopicID:    route.To,
			RouteID:    route.ID,
			Confidence: math.Min(float64(count)/10.0, 1.0),
			Reason:     fmt.Sprintf("you have taken this route %d times before", count),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}
