package memory

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Store persists personal memory documents keyed by user id. Implementations
// hold serialized documents so a corrupt record surfaces at load time, where
// it can be recovered from, rather than poisoning in-process state.
type Store interface {
	Load(userID string) (*PersonalMemory, error)
	Save(mem *PersonalMemory) error
}

// InMemoryStore keeps serialized memory documents in a process-local map.
type InMemoryStore struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	logger *zap.Logger
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(logger *zap.Logger) *InMemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryStore{docs: make(map[string][]byte), logger: logger}
}

// Load returns the user's memory document. A missing record yields a fresh
// empty overlay. A record that fails to deserialize is logged and replaced
// with a fresh overlay instead of failing the request.
func (s *InMemoryStore) Load(userID string) (*PersonalMemory, error) {
	s.mu.RLock()
	raw, ok := s.docs[userID]
	s.mu.RUnlock()

	if !ok {
		return NewPersonalMemory(userID), nil
	}

	var mem PersonalMemory
	if err := json.Unmarshal(raw, &mem); err != nil {
		s.logger.Warn("corrupt personal memory record, starting fresh",
			zap.String("userId", userID),
			zap.Error(err),
		)
		return NewPersonalMemory(userID), nil
	}
	mem.UserID = userID
	mem.normalize()
	return &mem, nil
}

// Save serializes and stores the document, replacing any previous version.
func (s *InMemoryStore) Save(mem *PersonalMemory) error {
	raw, err := json.Marshal(mem)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[mem.UserID] = raw
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a user's stored document with arbitrary bytes. Test
// hook for the recovery path.
func (s *InMemoryStore) Corrupt(userID string, raw []byte) {
	s.mu.Lock()
	s.docs[userID] = raw
	s.mu.Unlock()
}
