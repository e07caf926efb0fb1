// Package graph holds the authoritative in-memory navigation graph and its
// derived indices: landmarks grouped by topic neighbourhood and routes grouped
// by source node. All reads hand out clones so callers never alias
// store-owned state; mutation (upserts, usage counters, familiarity decay)
// goes through write-locked methods.
package graph

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
	appErrors "atlas-backend/pkg/errors"
)

// nearbyLimit caps how many nearby topics an orientation carries.
const nearbyLimit = 5

// NearbyTopicInfo pairs a resolved topic with its conceptual distance.
type NearbyTopicInfo struct {
	Topic    *atlas.Topic `json:"topic"`
	Distance float64      `json:"distance"`
}

// Orientation is the "where am I / what's nearby / how confident" bundle the
// engine returns instead of a ranked result list.
type Orientation struct {
	CurrentTopic    *atlas.Topic      `json:"currentTopic"`
	CurrentLandmark *atlas.Landmark   `json:"currentLandmark,omitempty"`
	Landmarks       []*atlas.Landmark `json:"landmarks"`
	NearbyTopics    []NearbyTopicInfo `json:"nearbyTopics"`
	AvailableRoutes []*atlas.Route    `json:"availableRoutes"`
	Confidence      float64           `json:"confidence"`
	IsWellMapped    bool              `json:"isWellMapped"`
}

// Store is the authoritative owner of all landmarks, topics and routes.
type Store struct {
	mu sync.RWMutex

	topics    map[string]*atlas.Topic
	landmarks map[string]*atlas.Landmark
	routes    map[string]*atlas.Route

	landmarksByTopic map[string][]string
	routesBySource   map[string][]string

	logger *zap.Logger
}

// NewStore creates an empty graph store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		topics:           make(map[string]*atlas.Topic),
		landmarks:        make(map[string]*atlas.Landmark),
		routes:           make(map[string]*atlas.Route),
		landmarksByTopic: make(map[string][]string),
		routesBySource:   make(map[string][]string),
		logger:           logger,
	}
}

// UpsertTopic validates and inserts a topic; an existing id is overwritten
// (last write wins).
func (s *Store) UpsertTopic(t atlas.Topic) (*atlas.Topic, error) {
	topic, err := atlas.NewTopic(t)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.topics[topic.ID]; exists {
		s.logger.Debug("overwriting topic", zap.String("topicId", topic.ID))
	}
	s.topics[topic.ID] = topic
	return topic.Clone(), nil
}

// UpsertLandmark validates and inserts a landmark, reindexing its topic
// neighbourhood. An existing id is overwritten (last write wins).
func (s *Store) UpsertLandmark(l atlas.Landmark) (*atlas.Landmark, error) {
	lm, err := atlas.NewLandmark(l)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, exists := s.landmarks[lm.ID]; exists {
		s.removeFromIndex(s.landmarksByTopic, prev.TopicNeighbourhood, prev.ID)
	}
	s.landmarks[lm.ID] = lm
	s.landmarksByTopic[lm.TopicNeighbourhood] = append(s.landmarksByTopic[lm.TopicNeighbourhood], lm.ID)
	return lm.Clone(), nil
}

// UpsertRoute validates and inserts a route, reindexing its source node. An
// existing id is overwritten (last write wins).
func (s *Store) UpsertRoute(r atlas.Route) (*atlas.Route, error) {
	route, err := atlas.NewRoute(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, exists := s.routes[route.ID]; exists {
		s.removeFromIndex(s.routesBySource, prev.From, prev.ID)
	}
	s.routes[route.ID] = route
	s.routesBySource[route.From] = append(s.routesBySource[route.From], route.ID)
	return route.Clone(), nil
}

func (s *Store) removeFromIndex(index map[string][]string, key, id string) {
	ids := index[key]
	for i, existing := range ids {
		if existing == id {
			index[key] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// Topic returns a snapshot of the topic, if present.
func (s *Store) Topic(id string) (*atlas.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Landmark returns a snapshot of the landmark, if present.
func (s *Store) Landmark(id string) (*atlas.Landmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.landmarks[id]
	if !ok {
		return nil, false
	}
	return l.Clone(), true
}

// Route returns a snapshot of the route, if present.
func (s *Store) Route(id string) (*atlas.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// LandmarksInNeighbourhood returns all landmarks indexed under a topic.
// Unknown topic ids yield an empty slice, never an error.
func (s *Store) LandmarksInNeighbourhood(topicID string) []*atlas.Landmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.landmarksByTopic[topicID]
	out := make([]*atlas.Landmark, 0, len(ids))
	for _, id := range ids {
		if lm, ok := s.landmarks[id]; ok {
			out = append(out, lm.Clone())
		}
	}
	return out
}

// RoutesFrom returns all outgoing routes from a node id. Unknown ids yield an
// empty slice.
func (s *Store) RoutesFrom(nodeID string) []*atlas.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routesFromLocked(nodeID)
}

func (s *Store) routesFromLocked(nodeID string) []*atlas.Route {
	ids := s.routesBySource[nodeID]
	out := make([]*atlas.Route, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.routes[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// NearbyTopics resolves a topic's nearby references to live topics, dropping
// ids that do not resolve, sorted ascending by distance.
func (s *Store) NearbyTopics(topicID string) []NearbyTopicInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nearbyTopicsLocked(topicID)
}

func (s *Store) nearbyTopicsLocked(topicID string) []NearbyTopicInfo {
	topic, ok := s.topics[topicID]
	if !ok {
		return nil
	}
	out := make([]NearbyTopicInfo, 0, len(topic.NearbyTopics))
	for _, ref := range topic.NearbyTopics {
		if nb, ok := s.topics[ref.TopicID]; ok {
			out = append(out, NearbyTopicInfo{Topic: nb.Clone(), Distance: ref.Distance})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// FindPath runs a breadth-first search from one topic to another over the
// union of nearby, child and parent relations. It returns the shortest hop
// sequence of topic ids excluding the starting topic (so the destination is
// the last element), an empty slice when from and to are the same topic, and
// nil when the destination is unreachable. Distances are not edge weights
// here; BFS minimizes hop count only.
func (s *Store) FindPath(fromTopicID, toTopicID string) []string {
	if fromTopicID == toTopicID {
		return []string{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.topics[fromTopicID]; !ok {
		return nil
	}
	if _, ok := s.topics[toTopicID]; !ok {
		return nil
	}

	type queueItem struct {
		id   string
		path []string
	}

	visited := map[string]bool{fromTopicID: true}
	queue := []queueItem{{id: fromTopicID, path: nil}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, next := range s.neighboursLocked(item.id) {
			if visited[next] {
				continue
			}
			visited[next] = true

			path := make([]string, len(item.path), len(item.path)+1)
			copy(path, item.path)
			path = append(path, next)

			if next == toTopicID {
				return path
			}
			queue = append(queue, queueItem{id: next, path: path})
		}
	}
	return nil
}

// neighboursLocked returns the traversable neighbour topic ids of a topic:
// nearby, child and parent relations, skipping references that don't resolve.
func (s *Store) neighboursLocked(topicID string) []string {
	topic, ok := s.topics[topicID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(topic.NearbyTopics)+len(topic.ChildTopics)+len(topic.ParentTopics))
	for _, ref := range topic.NearbyTopics {
		if _, ok := s.topics[ref.TopicID]; ok {
			out = append(out, ref.TopicID)
		}
	}
	for _, id := range topic.ChildTopics {
		if _, ok := s.topics[id]; ok {
			out = append(out, id)
		}
	}
	for _, id := range topic.ParentTopics {
		if _, ok := s.topics[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ResolveRouteIDs maps a topic hop sequence (as returned by FindPath) onto
// declared route ids. Hops without a declared route are skipped: navigation
// can proceed without route detail.
func (s *Store) ResolveRouteIDs(fromTopicID string, topicPath []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	routeIDs := make([]string, 0, len(topicPath))
	current := fromTopicID
	for _, next := range topicPath {
		for _, id := range s.routesBySource[current] {
			if r, ok := s.routes[id]; ok && r.To == next {
				routeIDs = append(routeIDs, r.ID)
				break
			}
		}
		current = next
	}
	return routeIDs
}

// RecordRouteUsage increments the usage counter of each route by one.
// Unknown ids are ignored.
func (s *Store) RecordRouteUsage(routeIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range routeIDs {
		if r, ok := s.routes[id]; ok {
			r.UsageCount++
		}
	}
}

// DecayFamiliarity lowers a topic's familiarity by one step, floored at zero,
// and returns the new value.
func (s *Store) DecayFamiliarity(topicID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[topicID]
	if !ok {
		return 0, appErrors.NewNotFound("topic not found: " + topicID)
	}
	return topic.MarkUnmapped(), nil
}

// Orientation assembles the full orientation bundle for a location: the
// current topic, its landmarks sorted by reliability (best first), the five
// conceptually closest nearby topics, outgoing routes sorted by distance, and
// a confidence equal to the topic's familiarity.
func (s *Store) Orientation(loc atlas.CurrentLocation) (*Orientation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topic, ok := s.topics[loc.TopicID]
	if !ok {
		return nil, appErrors.NewNotFound("unknown location: " + loc.TopicID)
	}

	landmarks := make([]*atlas.Landmark, 0)
	for _, id := range s.landmarksByTopic[loc.TopicID] {
		if lm, ok := s.landmarks[id]; ok {
			landmarks = append(landmarks, lm.Clone())
		}
	}
	sort.SliceStable(landmarks, func(i, j int) bool {
		return landmarks[i].ReliabilityScore > landmarks[j].ReliabilityScore
	})

	nearby := s.nearbyTopicsLocked(loc.TopicID)
	if len(nearby) > nearbyLimit {
		nearby = nearby[:nearbyLimit]
	}

	routes := s.routesFromLocked(loc.TopicID)
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Distance < routes[j].Distance
	})

	o := &Orientation{
		CurrentTopic:    topic.Clone(),
		Landmarks:       landmarks,
		NearbyTopics:    nearby,
		AvailableRoutes: routes,
		Confidence:      topic.Familiarity,
		IsWellMapped:    topic.IsWellMapped(),
	}
	if loc.LandmarkID != "" {
		if lm, ok := s.landmarks[loc.LandmarkID]; ok {
			o.CurrentLandmark = lm.Clone()
		}
	}
	return o, nil
}

// Snapshot returns clones of all topics and landmarks, for matching.
func (s *Store) Snapshot() ([]*atlas.Topic, []*atlas.Landmark) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]*atlas.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		topics = append(topics, t.Clone())
	}
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })

	landmarks := make([]*atlas.Landmark, 0, len(s.landmarks))
	for _, l := range s.landmarks {
		landmarks = append(landmarks, l.Clone())
	}
	sort.SliceStable(landmarks, func(i, j int) bool { return landmarks[i].ID < landmarks[j].ID })

	return topics, landmarks
}

// Stats reports entity counts, for health reporting.
func (s *Store) Stats() (topics, landmarks, routes int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics), len(s.landmarks), len(s.routes)
}
