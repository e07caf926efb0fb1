// Package memory keeps the per-user overlay on top of the shared graph:
// source preferences, travelled paths, corrections, conversation threads and
// session context. The overlay personalizes what a user sees without ever
// mutating shared topology.
package memory

import "time"

// MaxCommonPaths bounds the per-user travelled-path log; the oldest entry is
// evicted first.
const MaxCommonPaths = 100

// PathEntry is one recorded journey between two topics.
type PathEntry struct {
	FromTopicID string    `json:"fromTopicId"`
	ToTopicID   string    `json:"toTopicId"`
	RouteIDs    []string  `json:"routeIds"`
	TravelledAt time.Time `json:"travelledAt"`
}

// Correction is a user-supplied fix attached to a landmark.
type Correction struct {
	LandmarkID string    `json:"landmarkId"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Thread is a named conversation trail the user can resume later.
type Thread struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TopicIDs  []string  `json:"topicIds"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonalMemory is the full per-user overlay document.
type PersonalMemory struct {
	UserID           string                 `json:"userId"`
	PreferredSources map[string]bool        `json:"preferredSources"`
	RejectedSources  map[string]bool        `json:"rejectedSources"`
	CommonPaths      []PathEntry            `json:"commonPaths"`
	Corrections      []Correction           `json:"corrections"`
	Threads          map[string]*Thread     `json:"threads"`
	SessionContext   map[string]interface{} `json:"sessionContext"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// NewPersonalMemory creates an empty overlay for a user.
func NewPersonalMemory(userID string) *PersonalMemory {
	return &PersonalMemory{
		UserID:           userID,
		PreferredSources: make(map[string]bool),
		RejectedSources:  make(map[string]bool),
		CommonPaths:      make([]PathEntry, 0),
		Corrections:      make([]Correction, 0),
		Threads:          make(map[string]*Thread),
		SessionContext:   make(map[string]interface{}),
	}
}

// normalize repairs nil maps after deserialization so callers never need nil
// checks.
func (m *PersonalMemory) normalize() {
	if m.PreferredSources == nil {
		m.PreferredSources = make(map[string]bool)
	}
	if m.RejectedSources == nil {
		m.RejectedSources = make(map[string]bool)
	}
	if m.Threads == nil {
		m.Threads = make(map[string]*Thread)
	}
	if m.SessionContext == nil {
		m.SessionContext = make(map[string]interface{})
	}
	// A source cannot be both preferred and rejected; rejection wins.
	for src := range m.RejectedSources {
		delete(m.PreferredSources, src)
	}
}
