package atlas

import "time"

// UnknownDestination is the sentinel destination for an intent that could not
// be resolved to any topic. It is a first-class outcome, not an error: the
// caller surfaces an "area not mapped" message instead of navigating.
const UnknownDestination = "unknown"

// IntentType captures what the user is trying to do with an input.
type IntentType string

const (
	IntentExplore  IntentType = "explore"
	IntentLearn    IntentType = "learn"
	IntentFind     IntentType = "find"
	IntentNavigate IntentType = "navigate"
)

// NavigationIntent is the parsed result of one user input. Created per input
// and kept only inside the route history.
type NavigationIntent struct {
	ID                    string                 `json:"id"`
	DestinationTopicID    string                 `json:"destinationTopicId"`
	DestinationLandmarkID string                 `json:"destinationLandmarkId,omitempty"`
	Type                  IntentType             `json:"intentType"`
	Query                 string                 `json:"query"`
	Embedding             []float64              `json:"-"`
	Confidence            float64                `json:"confidence"`
	Context               map[string]interface{} `json:"context,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
}

// Resolved reports whether the intent points at a known destination.
func (i NavigationIntent) Resolved() bool {
	return i.DestinationTopicID != "" && i.DestinationTopicID != UnknownDestination
}

// CurrentLocation is the ephemeral per-session position in the graph. It is
// replaced wholesale on every navigation.
type CurrentLocation struct {
	TopicID    string    `json:"topicId"`
	LandmarkID string    `json:"landmarkId,omitempty"`
	Path       []string  `json:"path"` // route ids used to arrive
	Confidence float64   `json:"confidence"`
	ArrivedAt  time.Time `json:"arrivedAt"`
}

// RouteHistoryEntry is an append-only log record used for back-navigation and
// pattern mining.
type RouteHistoryEntry struct {
	Location  CurrentLocation  `json:"location"`
	Intent    NavigationIntent `json:"intent"`
	Timestamp time.Time        `json:"timestamp"`
}

// MaxRouteHistory bounds the per-session history log; the oldest entry is
// evicted first.
const MaxRouteHistory = 100
