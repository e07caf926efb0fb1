// Package session manages per-user engine instances: one engine per active
// user, created on first use and evicted after a period of inactivity.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"atlas-backend/internal/engine"
)

// DefaultIdleTTL is how long a session survives without activity.
const DefaultIdleTTL = 30 * time.Minute

// Factory builds a fresh engine for a user.
type Factory func(userID string) *engine.Engine

type entry struct {
	engine   *engine.Engine
	lastSeen time.Time
}

// Registry hands out per-user engines, creating them lazily and expiring
// idle ones. Eviction drops only session state; graph and personal memory
// live in their own layers and survive.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	idleTTL time.Duration
	logger  *zap.Logger

	now func() time.Time
}

// NewRegistry creates a registry. A non-positive ttl falls back to the
// default.
func NewRegistry(factory Factory, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		idleTTL: idleTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// Engine returns the user's engine, creating it on first use. Every call
// refreshes the idle clock.
func (r *Registry) Engine(userID string) *engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		e = &entry{engine: r.factory(userID)}
		r.entries[userID] = e
		r.logger.Debug("session created", zap.String("userId", userID))
	}
	e.lastSeen = r.now()
	return e.engine
}

// Evict drops a user's session immediately.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// Sweep removes sessions idle past the TTL and reports how many were
// evicted.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for userID, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, userID)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info("idle sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

// Active reports the number of live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps periodically until stop is closed.
func (r *Registry) Run(stop <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-stop:
			return
		}
	}
}
