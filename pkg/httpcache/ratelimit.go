package httpcache

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RateLimiter enforces a minimum gap between requests to the same host.
// Requests to different hosts do not wait on each other.
type RateLimiter struct {
	lastRequest sync.Map
	mu          sync.Map
	minDelay    time.Duration
}

// NewRateLimiter creates a limiter with the given per-host gap.
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{minDelay: minDelay}
}

// Wait blocks until a request to rawURL's host may be sent, or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	if r == nil || r.minDelay <= 0 {
		return ctx.Err()
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ctx.Err()
	}
	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < r.minDelay {
				t := time.NewTimer(r.minDelay - elapsed)
				select {
				case <-ctx.Done():
					t.Stop()
					return ctx.Err()
				case <-t.C:
				}
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
	return nil
}
