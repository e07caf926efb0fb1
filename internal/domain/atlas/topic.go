package atlas

import (
	"strings"

	appErrors "atlas-backend/pkg/errors"
)

// FamiliarityDecayStep is subtracted from a topic's familiarity each time a
// user signals the area does not match what they expected.
const FamiliarityDecayStep = 0.1

// NearbyTopic is an undirected conceptual-proximity reference to another
// topic. Lower distance means conceptually closer.
type NearbyTopic struct {
	TopicID  string  `json:"topicId" yaml:"topicId"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Topic is a conceptual cluster in the navigation graph: a neighbourhood a
// user can stand in, look around from, and travel between.
//
// Familiarity expresses how well-mapped the area is and always stays within
// [0, 1]. Hierarchy (parent/child) and conceptual proximity (nearby) are kept
// as separate relation lists; path search decides which kinds it traverses.
type Topic struct {
	ID                 string        `json:"id" yaml:"id"`
	Name               string        `json:"name" yaml:"name"`
	Description        string        `json:"description" yaml:"description"`
	ParentTopics       []string      `json:"parentTopics" yaml:"parentTopics"`
	ChildTopics        []string      `json:"childTopics" yaml:"childTopics"`
	NearbyTopics       []NearbyTopic `json:"nearbyTopics" yaml:"nearbyTopics"`
	CommonUserIntents  []string      `json:"commonUserIntents" yaml:"commonUserIntents"`
	PreferredLandmarks []string      `json:"preferredLandmarks" yaml:"preferredLandmarks"`
	Familiarity        float64       `json:"familiarity" yaml:"familiarity"`
}

// NewTopic validates and normalizes a topic at the construction boundary.
func NewTopic(t Topic) (*Topic, error) {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return nil, appErrors.NewValidation("topic id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, appErrors.NewValidation("topic name is required")
	}
	for _, nb := range t.NearbyTopics {
		if nb.TopicID == "" {
			return nil, appErrors.NewValidation("nearby topic reference is missing a topic id")
		}
		if nb.Distance <= 0 {
			return nil, appErrors.NewValidation("nearby topic distance must be positive")
		}
	}
	t.Familiarity = clamp01(t.Familiarity)
	return &t, nil
}

// MarkUnmapped decays familiarity by one step, floored at zero, and returns
// the new value.
func (t *Topic) MarkUnmapped() float64 {
	t.Familiarity = clamp01(t.Familiarity - FamiliarityDecayStep)
	return t.Familiarity
}

// IsWellMapped reports whether the area is charted confidently enough that
// orientations in it can be trusted without caveats.
func (t *Topic) IsWellMapped() bool {
	return t.Familiarity > 0.7
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing store-owned state.
func (t *Topic) Clone() *Topic {
	c := *t
	c.ParentTopics = append([]string(nil), t.ParentTopics...)
	c.ChildTopics = append([]string(nil), t.ChildTopics...)
	c.NearbyTopics = append([]NearbyTopic(nil), t.NearbyTopics...)
	c.CommonUserIntents = append([]string(nil), t.CommonUserIntents...)
	c.PreferredLandmarks = append([]string(nil), t.PreferredLandmarks...)
	return &c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
