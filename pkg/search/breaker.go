package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker stops calling a provider after consecutive failures, so a blocked
// or rate-limited provider fails fast instead of stalling every company.
type Breaker struct {
	next Searcher
	cb   *gobreaker.CircuitBreaker
	name string
}

// NewBreaker wraps next. It opens after maxFailures consecutive failures and
// probes again after openTimeout.
func NewBreaker(name string, next Searcher, maxFailures uint32, openTimeout time.Duration, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFailures == 0 {
		maxFailures = 1
	}
	return &Breaker{
		next: next,
		name: name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("search circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Search delegates to the wrapped searcher unless the breaker is open.
func (b *Breaker) Search(ctx context.Context, query string) ([]Result, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Provider: b.name, Query: query, Err: err}
		}
		return nil, wrap(b.name, query, err)
	}
	results, _ := out.([]Result)
	return results, nil
}

// State reports the breaker state, for logging.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
