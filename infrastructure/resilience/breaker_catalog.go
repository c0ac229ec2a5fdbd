// Package resilience wraps outbound collaborators with failure handling.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"kith-backend/application/ports"
	"kith-backend/domain/core/aggregates"
)

// BreakerCatalog decorates a catalog with a circuit breaker so a failing
// backing store sheds load quickly instead of stacking up slow fetches. A
// tripped breaker surfaces like any other fetch failure: the controller
// keeps the last rendered view and offers a retry.
type BreakerCatalog struct {
	inner   ports.Catalog
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerCatalog wraps a catalog with the stock breaker settings.
func NewBreakerCatalog(inner ports.Catalog, logger *zap.Logger) *BreakerCatalog {
	settings := gobreaker.Settings{
		Name:        "relationship-catalog",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Catalog circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerCatalog{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Snapshot implements ports.Catalog.
func (c *BreakerCatalog) Snapshot(ctx context.Context) (*aggregates.Network, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.inner.Snapshot(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*aggregates.Network), nil
}
