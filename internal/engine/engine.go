// Package engine coordinates one user's navigation session: it resolves free
// text into intents, moves the current location through the graph, keeps the
// back-navigation history, and merges personal memory and proactive
// suggestions into every orientation it hands out.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
	"atlas-backend/internal/graph"
	"atlas-backend/internal/memory"
	"atlas-backend/internal/semantic"
)

const (
	// DefaultTopicID is where a session starts before any navigation.
	DefaultTopicID = "general"

	// DefaultLocationConfidence is the confidence of the initial location.
	DefaultLocationConfidence = 0.5

	// DefaultNavigationConfidence applies when an intent carries none.
	DefaultNavigationConfidence = 0.7

	// KeywordFallbackConfidence is the fixed confidence of a substring match.
	KeywordFallbackConfidence = 0.6
)

// UnmappedAreaMessage is shown when no confident destination was found.
// Callers surface it instead of navigating.
const UnmappedAreaMessage = "I don't have that area mapped yet. Try different wording, or explore nearby topics from where you are."

// NoHistoryMessage is shown when there is nothing to go back to.
const NoHistoryMessage = "There is no earlier location to go back to."

// NavigationResult is the outcome of a single facade call.
type NavigationResult struct {
	Success            bool                   `json:"success"`
	Location           *atlas.CurrentLocation `json:"location,omitempty"`
	Orientation        *graph.Orientation     `json:"orientation,omitempty"`
	Route              []string               `json:"route,omitempty"`
	Suggestions        []Suggestion           `json:"suggestions,omitempty"`
	Message            string                 `json:"message,omitempty"`
	CurrentOrientation *graph.Orientation     `json:"currentOrientation,omitempty"`
}

// Engine is the per-user session coordinator. It owns the mutable session
// state (current location and history); the graph, matcher and memory layers
// are shared and internally synchronized.
type Engine struct {
	userID    string
	graph     *graph.Store
	embedder  semantic.Embedder
	matcher   *semantic.Matcher
	memory    *memory.Service
	suggester *Suggester
	logger    *zap.Logger

	mu       sync.Mutex
	location atlas.CurrentLocation
	history  []atlas.RouteHistoryEntry
}

// New creates an engine for one user, located at the default topic until the
// first navigation.
func New(userID string, g *graph.Store, embedder semantic.Embedder, matcher *semantic.Matcher, mem *memory.Service, suggester *Suggester, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		userID:    userID,
		graph:     g,
		embedder:  embedder,
		matcher:   matcher,
		memory:    mem,
		suggester: suggester,
		logger:    logger.With(zap.String("userId", userID)),
		location: atlas.CurrentLocation{
			TopicID:    DefaultTopicID,
			Confidence: DefaultLocationConfidence,
			ArrivedAt:  time.Now(),
		},
	}
}

// ProcessIntent parses free text into a navigation intent. It tries the
// semantic matcher first; when that yields nothing (including when the
// embedding provider is unavailable) it falls back to case-insensitive
// substring matching against topic names, descriptions and common user
// intents at a fixed lower confidence. An unresolved destination comes back
// as the unknown sentinel, never as an error.
func (e *Engine) ProcessIntent(ctx context.Context, input string, extra map[string]interface{}) atlas.NavigationIntent {
	intent := atlas.NavigationIntent{
		ID:                 uuid.NewString(),
		DestinationTopicID: atlas.UnknownDestination,
		Type:               inferIntentType(input),
		Query:              input,
		Context:            extra,
		CreatedAt:          time.Now(),
	}

	topics, landmarks := e.graph.Snapshot()

	embedding, err := e.embedder.Embed(ctx, input)
	if err != nil {
		e.logger.Warn("embedding unavailable, using keyword matching only", zap.Error(err))
	} else {
		intent.Embedding = embedding
		matches, merr := e.matcher.FindMatches(ctx, embedding, topics, landmarks)
		if merr != nil {
			e.logger.Warn("semantic match failed, using keyword matching only", zap.Error(merr))
		} else if len(matches) > 0 {
			best := matches[0]
			switch best.Kind {
			case semantic.MatchTopic:
				intent.DestinationTopicID = best.ID
			case semantic.MatchLandmark:
				for _, lm := range landmarks {
					if lm.ID == best.ID {
						intent.DestinationLandmarkID = lm.ID
						intent.DestinationTopicID = lm.TopicNeighbourhood
						break
					}
				}
			}
			intent.Confidence = best.Score
		}
	}

	if !intent.Resolved() {
		if topicID, ok := keywordMatch(input, topics); ok {
			intent.DestinationTopicID = topicID
			intent.Confidence = KeywordFallbackConfidence
		}
	}
	return intent
}

// keywordMatch scans topics in a stable order and returns the first whose
// name, description or common intents overlap the input as a substring in
// either direction.
func keywordMatch(input string, topics []*atlas.Topic) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(input))
	if query == "" {
		return "", false
	}
	for _, t := range topics {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, query) || strings.Contains(query, name) {
			return t.ID, true
		}
		if desc := strings.ToLower(t.Description); desc != "" && strings.Contains(desc, query) {
			return t.ID, true
		}
		for _, hint := range t.CommonUserIntents {
			h := strings.ToLower(hint)
			if strings.Contains(h, query) || strings.Contains(query, h) {
				return t.ID, true
			}
		}
	}
	return "", false
}

func inferIntentType(input string) atlas.IntentType {
	q := strings.ToLower(input)
	switch {
	case containsAny(q, "learn", "how to", "how do", "tutorial", "explain"):
		return atlas.IntentLearn
	case containsAny(q, "find", "where", "search", "look for"):
		return atlas.IntentFind
	case containsAny(q, "go to", "take me", "navigate", "open"):
		return atlas.IntentNavigate
	default:
		return atlas.IntentExplore
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NavigateTo moves the session to the intent's destination. The travelled
// path is resolved to declared route ids; their usage counters are bumped and
// the journey is recorded in personal memory when any route was actually
// taken. An unreachable destination still gets an orientation, just without
// route detail. A destination topic that is not in the graph at all, such as
// a landmark whose neighbourhood was never loaded, is reported as an unmapped
// area rather than an error, and the session stays where it is.
func (e *Engine) NavigateTo(intent atlas.NavigationIntent) (*NavigationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.graph.Topic(intent.DestinationTopicID); !ok {
		e.logger.Warn("destination topic missing from graph, treating area as unmapped",
			zap.String("topicId", intent.DestinationTopicID),
			zap.String("landmarkId", intent.DestinationLandmarkID))
		current, oerr := e.orientationWithPreferences(e.location)
		if oerr != nil {
			e.logger.Warn("orientation at current location failed", zap.Error(oerr))
		}
		return &NavigationResult{
			Success:            false,
			Message:            UnmappedAreaMessage,
			CurrentOrientation: current,
		}, nil
	}

	fromTopicID := e.location.TopicID

	var routeIDs []string
	if topicPath := e.graph.FindPath(fromTopicID, intent.DestinationTopicID); topicPath != nil {
		routeIDs = e.graph.ResolveRouteIDs(fromTopicID, topicPath)
	}

	confidence := intent.Confidence
	if confidence == 0 {
		confidence = DefaultNavigationConfidence
	}
	newLocation := atlas.CurrentLocation{
		TopicID:    intent.DestinationTopicID,
		LandmarkID: intent.DestinationLandmarkID,
		Path:       routeIDs,
		Confidence: confidence,
		ArrivedAt:  time.Now(),
	}

	orientation, err := e.orientationWithPreferences(newLocation)
	if err != nil {
		return nil, err
	}

	e.graph.RecordRouteUsage(routeIDs)
	if len(routeIDs) > 0 {
		if rerr := e.memory.RecordPath(e.userID, memory.PathEntry{
			FromTopicID: fromTopicID,
			ToTopicID:   intent.DestinationTopicID,
			RouteIDs:    routeIDs,
		}); rerr != nil {
			e.logger.Warn("failed to record travelled path", zap.Error(rerr))
		}
	}

	e.location = newLocation
	e.history = append(e.history, atlas.RouteHistoryEntry{
		Location:  newLocation,
		Intent:    intent,
		Timestamp: time.Now(),
	})
	if len(e.history) > atlas.MaxRouteHistory {
		e.history = e.history[len(e.history)-atlas.MaxRouteHistory:]
	}

	loc := newLocation
	return &NavigationResult{
		Success:     true,
		Location:    &loc,
		Orientation: orientation,
		Route:       routeIDs,
	}, nil
}

// Navigate is the facade: parse, then either move or report the area as
// unmapped with the last known orientation for fallback display.
func (e *Engine) Navigate(ctx context.Context, input string, extra map[string]interface{}) (*NavigationResult, error) {
	intent := e.ProcessIntent(ctx, input, extra)

	if !intent.Resolved() {
		current, _ := e.CurrentOrientation()
		return &NavigationResult{
			Success:            false,
			Message:            UnmappedAreaMessage,
			CurrentOrientation: current,
		}, nil
	}

	result, err := e.NavigateTo(intent)
	if err != nil || !result.Success {
		return result, err
	}

	suggestions, serr := e.suggester.Suggestions(e.userID, result.Location.TopicID)
	if serr != nil {
		e.logger.Warn("suggestion mining failed", zap.Error(serr))
	} else {
		result.Suggestions = suggestions
	}
	return result, nil
}

// GoBack retreats to the previous location. It needs at least two history
// entries: the newest is discarded (it is where we are now) and the one
// before it becomes current. Too little history is a non-success result, not
// an error.
func (e *Engine) GoBack() (*NavigationResult, error) {
	e.mu.Lock()

	if len(e.history) < 2 {
		e.mu.Unlock()
		return &NavigationResult{Success: false, Message: NoHistoryMessage}, nil
	}

	previous := e.history[len(e.history)-2]
	e.history = e.history[:len(e.history)-2]
	e.location = previous.Location
	loc := e.location
	e.mu.Unlock()

	orientation, err := e.orientationWithPreferences(loc)
	if err != nil {
		return nil, err
	}
	return &NavigationResult{
		Success:     true,
		Location:    &loc,
		Orientation: orientation,
	}, nil
}

// Suggestions proposes likely next moves from the current location.
func (e *Engine) Suggestions() ([]Suggestion, error) {
	e.mu.Lock()
	topicID := e.location.TopicID
	e.mu.Unlock()
	return e.suggester.Suggestions(e.userID, topicID)
}

// CurrentOrientation reports the orientation at the session's current
// location with personal preferences applied.
func (e *Engine) CurrentOrientation() (*graph.Orientation, error) {
	e.mu.Lock()
	loc := e.location
	e.mu.Unlock()
	return e.orientationWithPreferences(loc)
}

// Location returns a snapshot of the session's current location.
func (e *Engine) Location() atlas.CurrentLocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.location
}

// MarkUnmapped signals that a topic did not match the user's expectation,
// decaying its familiarity by one step.
func (e *Engine) MarkUnmapped(topicID string) (float64, error) {
	return e.graph.DecayFamiliarity(topicID)
}

func (e *Engine) orientationWithPreferences(loc atlas.CurrentLocation) (*graph.Orientation, error) {
	orientation, err := e.graph.Orientation(loc)
	if err != nil {
		return nil, err
	}
	filtered, merr := e.memory.ApplyPreferences(e.userID, orientation.Landmarks)
	if merr != nil {
		e.logger.Warn("preference filtering failed", zap.Error(merr))
		return orientation, nil
	}
	orientation.Landmarks = filtered
	return orientation, nil
}
