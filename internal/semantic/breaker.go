package semantic

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "atlas-backend/pkg/errors"
)

// EmbeddingObserver receives the duration and outcome of every embedding
// call, breaker rejections included.
type EmbeddingObserver interface {
	ObserveEmbedding(d time.Duration, err error)
}

// BreakerEmbedder wraps an Embedder with a timeout and a circuit breaker so a
// misbehaving provider degrades fast instead of stalling every intent. When
// the breaker is open or the call fails, callers get an unavailable error and
// are expected to fall back to keyword matching.
type BreakerEmbedder struct {
	inner    Embedder
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	observer EmbeddingObserver
	logger   *zap.Logger
}

// NewBreakerEmbedder wraps inner with a circuit breaker. A non-positive
// timeout defaults to two seconds; a nil observer disables call metrics.
func NewBreakerEmbedder(inner Embedder, timeout time.Duration, observer EmbeddingObserver, logger *zap.Logger) *BreakerEmbedder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        "embedder",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedder breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerEmbedder{
		inner:    inner,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		timeout:  timeout,
		observer: observer,
		logger:   logger,
	}
}

// Embed runs the wrapped embedder under the breaker with a bounded deadline.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	result, err := b.breaker.Execute(func() (interface{}, error) {
		embedCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.inner.Embed(embedCtx, text)
	})
	if b.observer != nil {
		b.observer.ObserveEmbedding(time.Since(start), err)
	}
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, appErrors.NewUnavailable("embedding provider unavailable", err)
		}
		return nil, appErrors.NewUnavailable("embedding failed", err)
	}
	return result.([]float64), nil
}
