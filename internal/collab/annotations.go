// Package collab lets users attach shared annotations to landmarks and vote
// on them. Consensus is a simple upvote ratio; annotations with broader
// agreement surface first.
package collab

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "atlas-backend/pkg/errors"
)

// Annotation is one shared note on a landmark.
type Annotation struct {
	ID         string    `json:"id"`
	LandmarkID string    `json:"landmarkId"`
	AuthorID   string    `json:"authorId"`
	Text       string    `json:"text"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Consensus is the fraction of votes in favor. With no votes yet it sits at
// one half, neither endorsed nor disputed.
func (a *Annotation) Consensus() float64 {
	total := a.Upvotes + a.Downvotes
	if total == 0 {
		return 0.5
	}
	return float64(a.Upvotes) / float64(total)
}

func (a *Annotation) clone() *Annotation {
	c := *a
	return &c
}

// Board holds all annotations, indexed by landmark.
type Board struct {
	mu         sync.RWMutex
	byID       map[string]*Annotation
	byLandmark map[string][]string
	logger     *zap.Logger
}

// NewBoard creates an empty annotation board.
func NewBoard(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		byID:       make(map[string]*Annotation),
		byLandmark: make(map[string][]string),
		logger:     logger,
	}
}

// Add attaches a new annotation to a landmark.
func (b *Board) Add(landmarkID, authorID, text string) (*Annotation, error) {
	if strings.TrimSpace(landmarkID) == "" {
		return nil, appErrors.NewValidation("landmark id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.NewValidation("annotation text is required")
	}

	a := &Annotation{
		ID:         uuid.NewString(),
		LandmarkID: landmarkID,
		AuthorID:   authorID,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	b.mu.Lock()
	b.byID[a.ID] = a
	b.byLandmark[landmarkID] = append(b.byLandmark[landmarkID], a.ID)
	b.mu.Unlock()

	return a.clone(), nil
}

// Vote records one vote for or against an annotation and returns its updated
// state.
func (b *Board) Vote(annotationID string, up bool) (*Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.byID[annotationID]
	if !ok {
		return nil, appErrors.NewNotFound("annotation not found: " + annotationID)
	}
	if up {
		a.Upvotes++
	} else {
		a.Downvotes++
	}
	return a.clone(), nil
}

// ForLandmark returns a landmark's annotations sorted by consensus, strongest
// agreement first. Unknown landmarks yield an empty slice.
func (b *Board) ForLandmark(landmarkID string) []*Annotation {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := b.byLandmark[landmarkID]
	out := make([]*Annotation, 0, len(ids))
	for _, id := range ids {
		if a, ok := b.byID[id]; ok {
			out = append(out, a.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Consensus() > out[j].Consensus() })
	return out
}
