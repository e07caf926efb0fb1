package atlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopic_Validation(t *testing.T) {
	tests := []struct {
		name    string
		topic   Topic
		wantErr bool
	}{
		{"valid", Topic{ID: "nlp", Name: "Natural Language Processing"}, false},
		{"missing id", Topic{Name: "x"}, true},
		{"missing name", Topic{ID: "x"}, true},
		{"bad nearby distance", Topic{ID: "a", Name: "A", NearbyTopics: []NearbyTopic{{TopicID: "b", Distance: 0}}}, true},
		{"nearby without id", Topic{ID: "a", Name: "A", NearbyTopics: []NearbyTopic{{Distance: 1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopic(tt.topic)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTopic_ClampsFamiliarity(t *testing.T) {
	topic, err := NewTopic(Topic{ID: "a", Name: "A", Familiarity: 1.8})
	require.NoError(t, err)
	assert.Equal(t, 1.0, topic.Familiarity)
}

func TestTopic_MarkUnmapped_FlooredAtZero(t *testing.T) {
	topic, err := NewTopic(Topic{ID: "a", Name: "A", Familiarity: 0.25})
	require.NoError(t, err)

	// Decay repeatedly; familiarity must stay within [0,1].
	for i := 0; i < 10; i++ {
		got := topic.MarkUnmapped()
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
	assert.Equal(t, 0.0, topic.Familiarity)
}

func TestTopic_IsWellMapped(t *testing.T) {
	topic := &Topic{ID: "a", Name: "A", Familiarity: 0.71}
	assert.True(t, topic.IsWellMapped())
	topic.Familiarity = 0.7
	assert.False(t, topic.IsWellMapped())
}

func TestNewLandmark_Validation(t *testing.T) {
	_, err := NewLandmark(Landmark{Title: "t", TopicNeighbourhood: "nlp"})
	assert.Error(t, err)

	_, err = NewLandmark(Landmark{ID: "l1", TopicNeighbourhood: "nlp"})
	assert.Error(t, err)

	lm, err := NewLandmark(Landmark{ID: "l1", Title: "Guide", TopicNeighbourhood: "nlp", ReliabilityScore: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, lm.ReliabilityScore)
	assert.NotNil(t, lm.Metadata)
}

func TestNewRoute_Validation(t *testing.T) {
	_, err := NewRoute(Route{ID: "r", From: "a", To: "a", Distance: 1})
	assert.Error(t, err, "self-loop must be rejected")

	_, err = NewRoute(Route{ID: "r", From: "a", To: "b", Distance: 0})
	assert.Error(t, err, "non-positive distance must be rejected")

	_, err = NewRoute(Route{ID: "r", From: "a", To: "b", Distance: 1, Type: "teleport"})
	assert.Error(t, err, "unknown route type must be rejected")

	r, err := NewRoute(Route{ID: "r", From: "a", To: "b", Distance: 1})
	require.NoError(t, err)
	assert.Equal(t, RouteRelated, r.Type, "type defaults to related")
}

func TestNavigationIntent_Resolved(t *testing.T) {
	assert.False(t, NavigationIntent{DestinationTopicID: UnknownDestination}.Resolved())
	assert.False(t, NavigationIntent{}.Resolved())
	assert.True(t, NavigationIntent{DestinationTopicID: "nlp"}.Resolved())
}
