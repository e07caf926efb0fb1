package atlas

import (
	"strings"
	"time"

	appErrors "atlas-backend/pkg/errors"
)

// Provenance records where a landmark's content came from and when it was
// captured.
type Provenance struct {
	Source       string    `json:"source" yaml:"source"`
	SnapshotDate time.Time `json:"snapshotDate" yaml:"snapshotDate"`
}

// Landmark is an authoritative content unit placed inside a topic
// neighbourhood. Landmarks are created by ingestion and treated as immutable
// by the core except for reliability and metadata updates; deletion is an
// external concern.
type Landmark struct {
	ID                 string                 `json:"id" yaml:"id"`
	URL                string                 `json:"url" yaml:"url"`
	Title              string                 `json:"title" yaml:"title"`
	TopicNeighbourhood string                 `json:"topicNeighbourhood" yaml:"topicNeighbourhood"`
	Summary            string                 `json:"summary" yaml:"summary"`
	StructuredFacts    []string               `json:"structuredFacts" yaml:"structuredFacts"`
	Provenance         Provenance             `json:"provenance" yaml:"provenance"`
	ReliabilityScore   float64                `json:"reliabilityScore" yaml:"reliabilityScore"`
	Content            string                 `json:"content" yaml:"content"`
	Metadata           map[string]interface{} `json:"metadata" yaml:"metadata"`
}

// NewLandmark validates and normalizes a landmark at the construction
// boundary. A landmark whose topic neighbourhood does not resolve to a live
// topic is tolerated but stays orphaned until the topic arrives.
func NewLandmark(l Landmark) (*Landmark, error) {
	l.ID = strings.TrimSpace(l.ID)
	if l.ID == "" {
		return nil, appErrors.NewValidation("landmark id is required")
	}
	if strings.TrimSpace(l.Title) == "" {
		return nil, appErrors.NewValidation("landmark title is required")
	}
	if strings.TrimSpace(l.TopicNeighbourhood) == "" {
		return nil, appErrors.NewValidation("landmark topic neighbourhood is required")
	}
	l.ReliabilityScore = clamp01(l.ReliabilityScore)
	if l.Metadata == nil {
		l.Metadata = make(map[string]interface{})
	}
	return &l, nil
}

// Clone returns a deep copy of the landmark.
func (l *Landmark) Clone() *Landmark {
	c := *l
	c.StructuredFacts = append([]string(nil), l.StructuredFacts...)
	c.Metadata = make(map[string]interface{}, len(l.Metadata))
	for k, v := range l.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
