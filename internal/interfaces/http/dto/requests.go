// Package dto defines the request payloads of the HTTP API, validated at the
// edge before anything reaches the domain.
package dto

import "time"

// NavigateRequest submits free text to the navigation engine.
type NavigateRequest struct {
	Input   string                 `json:"input" validate:"required"`
	Context map[string]interface{} `json:"context"`
}

// TopicRequest ingests or updates a topic.
type TopicRequest struct {
	ID                 string             `json:"id" validate:"required"`
	Name               string             `json:"name" validate:"required"`
	Description        string             `json:"description"`
	ParentTopics       []string           `json:"parentTopics"`
	ChildTopics        []string           `json:"childTopics"`
	NearbyTopics       []NearbyTopicEntry `json:"nearbyTopics" validate:"dive"`
	CommonUserIntents  []string           `json:"commonUserIntents"`
	PreferredLandmarks []string           `json:"preferredLandmarks"`
	Familiarity        float64            `json:"familiarity" validate:"gte=0,lte=1"`
}

// NearbyTopicEntry is one conceptual-proximity reference.
type NearbyTopicEntry struct {
	TopicID  string  `json:"topicId" validate:"required"`
	Distance float64 `json:"distance" validate:"gt=0"`
}

// LandmarkRequest ingests or updates a landmark.
type LandmarkRequest struct {
	ID                 string                 `json:"id" validate:"required"`
	URL                string                 `json:"url"`
	Title              string                 `json:"title" validate:"required"`
	TopicNeighbourhood string                 `json:"topicNeighbourhood" validate:"required"`
	Summary            string                 `json:"summary"`
	StructuredFacts    []string               `json:"structuredFacts"`
	Source             string                 `json:"source"`
	SnapshotDate       time.Time              `json:"snapshotDate"`
	ReliabilityScore   float64                `json:"reliabilityScore" validate:"gte=0,lte=1"`
	Content            string                 `json:"content"`
	Metadata           map[string]interface{} `json:"metadata"`
}

// RouteRequest ingests or updates a route.
type RouteRequest struct {
	ID          string  `json:"id" validate:"required"`
	From        string  `json:"from" validate:"required"`
	To          string  `json:"to" validate:"required"`
	Type        string  `json:"type" validate:"omitempty,oneof=often-used-with prerequisite deeper-explanation alternative-approach related"`
	Distance    float64 `json:"distance" validate:"gt=0"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
	Description string  `json:"description"`
}

// AnnotationRequest attaches a shared note to a landmark.
type AnnotationRequest struct {
	Text string `json:"text" validate:"required"`
}

// VoteRequest votes on an annotation.
type VoteRequest struct {
	Up bool `json:"up"`
}

// CorrectionRequest records a user fix for a landmark.
type CorrectionRequest struct {
	LandmarkID string `json:"landmarkId" validate:"required"`
	Note       string `json:"note" validate:"required"`
}

// ThreadRequest saves a named conversation trail.
type ThreadRequest struct {
	Name     string   `json:"name" validate:"required"`
	TopicIDs []string `json:"topicIds"`
}

// SessionContextRequest sets one key of ambient session state.
type SessionContextRequest struct {
	Key   string      `json:"key" validate:"required"`
	Value interface{} `json:"value"`
}
