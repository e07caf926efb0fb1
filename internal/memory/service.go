package memory

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"atlas-backend/internal/domain/atlas"
	appErrors "atlas-backend/pkg/errors"
)

// Service mediates all reads and writes of personal memory. Every mutation
// loads the document, applies the change and saves it back, so the store
// always holds a consistent serialized copy.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a memory service backed by the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Memory returns the user's overlay document.
func (s *Service) Memory(userID string) (*PersonalMemory, error) {
	return s.store.Load(userID)
}

// RecordPath appends a travelled path to the user's log, evicting the oldest
// entry once the log is full.
func (s *Service) RecordPath(userID string, entry PathEntry) error {
	if entry.FromTopicID == "" || entry.ToTopicID == "" {
		return appErrors.NewValidation("path entry requires from and to topic ids")
	}
	if entry.TravelledAt.IsZero() {
		entry.TravelledAt = time.Now()
	}

	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	mem.CommonPaths = append(mem.CommonPaths, entry)
	if len(mem.CommonPaths) > MaxCommonPaths {
		mem.CommonPaths = mem.CommonPaths[len(mem.CommonPaths)-MaxCommonPaths:]
	}
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// PreferSource marks a landmark source as preferred, clearing any standing
// rejection of it.
func (s *Service) PreferSource(userID, source string) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return appErrors.NewValidation("source is required")
	}
	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	delete(mem.RejectedSources, source)
	mem.PreferredSources[source] = true
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// RejectSource marks a landmark source as rejected, clearing any standing
// preference for it.
func (s *Service) RejectSource(userID, source string) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return appErrors.NewValidation("source is required")
	}
	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	delete(mem.PreferredSources, source)
	mem.RejectedSources[source] = true
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// AddCorrection records a user-supplied fix for a landmark.
func (s *Service) AddCorrection(userID string, c Correction) error {
	if c.LandmarkID == "" || strings.TrimSpace(c.Note) == "" {
		return appErrors.NewValidation("correction requires a landmark id and a note")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	mem.Corrections = append(mem.Corrections, c)
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// SaveThread creates or updates a named conversation trail.
func (s *Service) SaveThread(userID string, thread Thread) error {
	if thread.ID == "" {
		return appErrors.NewValidation("thread id is required")
	}
	thread.UpdatedAt = time.Now()
	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	mem.Threads[thread.ID] = &thread
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// Thread returns a saved trail by id.
func (s *Service) Thread(userID, threadID string) (*Thread, error) {
	mem, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	thread, ok := mem.Threads[threadID]
	if !ok {
		return nil, appErrors.NewNotFound("thread not found: " + threadID)
	}
	return thread, nil
}

// SetSessionContext stores one key of ambient session state.
func (s *Service) SetSessionContext(userID, key string, value interface{}) error {
	if key == "" {
		return appErrors.NewValidation("session context key is required")
	}
	mem, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	mem.SessionContext[key] = value
	mem.UpdatedAt = time.Now()
	return s.store.Save(mem)
}

// ApplyPreferences filters and reorders a landmark list through the user's
// preferences: rejected landmarks are dropped, preferred ones float to the
// front, and ties are broken by reliability descending.
func (s *Service) ApplyPreferences(userID string, landmarks []*atlas.Landmark) ([]*atlas.Landmark, error) {
	mem, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	if len(mem.PreferredSources) == 0 && len(mem.RejectedSources) == 0 {
		return landmarks, nil
	}

	kept := make([]*atlas.Landmark, 0, len(landmarks))
	for _, lm := range landmarks {
		if mem.RejectedSources[lm.ID] {
			continue
		}
		kept = append(kept, lm)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		pi := mem.PreferredSources[kept[i].ID]
		pj := mem.PreferredSources[kept[j].ID]
		if pi != pj {
			return pi
		}
		return kept[i].ReliabilityScore > kept[j].ReliabilityScore
	})
	return kept, nil
}
