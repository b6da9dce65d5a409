// Package httpcache provides HTTP fetching with a tiered response cache,
// per-domain pacing, and bounded retries with jittered backoff.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// UserAgent is the default browser User-Agent string.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:146.0) Gecko/20100101 Firefox/146.0"

// maxBody bounds how much of a response body is read.
const maxBody = 4 << 20

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cacher allows external cache implementations, mostly for tests.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache wraps sfcache for HTTP response caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache. An empty dir selects the user cache directory,
// and "-" selects a cache with no persistence.
func New(ttl time.Duration, dir string) (*Cache, error) {
	switch dir {
	case "-":
		return NewNull(), nil
	case "":
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "sitefinder")
	default:
	}
	return NewWithPath(ttl, dir)
}

// NewNull creates a Cache with no persistence (all gets miss, all sets discard).
func NewNull() *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc, ttl: 0}
}

// NewWithPath creates a new Cache with disk persistence at the specified path.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("sitefinder", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a cache key using SHA256 hash.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// HTTPError represents a non-200 HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Policy bounds the retries of a single request.
type Policy struct {
	Attempts  uint
	Delay     time.Duration // first backoff step
	MaxJitter time.Duration
}

// DefaultPolicy is a single retry with a short backoff.
var DefaultPolicy = Policy{Attempts: 2, Delay: 200 * time.Millisecond, MaxJitter: 100 * time.Millisecond}

// Response is a fetched document.
type Response struct {
	URL         string `json:"url"` // final URL after redirects
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	Status      int    `json:"status"`
}

// Client fetches URLs through the cache and the per-domain limiter.
type Client struct {
	http      *http.Client
	cache     Cacher
	limiter   *RateLimiter
	logger    *slog.Logger
	userAgent string
	policy    Policy
	hits      atomic.Int64
	misses    atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache sets the response cache. A nil cache disables caching.
func WithCache(cache Cacher) Option {
	return func(c *Client) { c.cache = cache }
}

// WithRateLimiter shares a per-domain limiter between clients.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithPolicy sets the retry policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		limiter:   NewRateLimiter(0),
		logger:    slog.Default(),
		userAgent: UserAgent,
		policy:    DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.Attempts == 0 {
		c.policy.Attempts = 1
	}
	return c
}

// Stats returns the client's cache statistics.
func (c *Client) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Validator inspects a 200 response before it is cached. A non-nil error
// is returned to the caller and the response is not cached.
type Validator func(*Response) error

// Get fetches a URL with caching and thundering herd prevention.
// Non-200 responses are returned as *HTTPError and cached, so a dead
// site is not hammered again within the TTL. Network errors are not cached.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return c.GetWithValidator(ctx, rawURL, header, nil)
}

// GetWithValidator is Get with a validator run on fresh responses, so that
// block pages served as 200 never reach the cache.
func (c *Client) GetWithValidator(ctx context.Context, rawURL string, header http.Header, validate Validator) (*Response, error) {
	if c.cache == nil {
		c.misses.Add(1)
		resp, err := c.fetch(ctx, rawURL, header)
		if err != nil {
			return nil, err
		}
		if validate != nil {
			if err := validate(resp); err != nil {
				return nil, err
			}
		}
		return resp, nil
	}

	var fetched bool
	data, err := c.cache.GetSet(ctx, URLToKey(rawURL), func(ctx context.Context) ([]byte, error) {
		fetched = true
		c.misses.Add(1)
		c.logger.Debug("cache miss", "url", rawURL)
		resp, err := c.fetch(ctx, rawURL, header)
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return json.Marshal(Response{URL: rawURL, Status: httpErr.StatusCode})
			}
			return nil, err
		}
		if validate != nil {
			if err := validate(resp); err != nil {
				c.logger.Debug("skipping cache due to validation failure", "url", rawURL, "error", err)
				return nil, err
			}
		}
		return json.Marshal(resp)
	}, c.cache.TTL())
	if err != nil {
		return nil, err
	}
	if !fetched {
		c.hits.Add(1)
		c.logger.Debug("cache hit", "url", rawURL)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode cached response for %s: %w", rawURL, err)
	}
	if resp.Status != http.StatusOK {
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.Status}
	}
	return &resp, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	if _, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody); err != nil {
		return nil, err
	}
	return retry.DoWithData(
		func() (*Response, error) {
			if err := c.limiter.Wait(ctx, rawURL); err != nil {
				return nil, err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", c.userAgent)
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "it-IT,it;q=0.9,en;q=0.8")
			for k, vs := range header {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			if err != nil {
				return nil, err
			}
			return &Response{
				URL:         resp.Request.URL.String(),
				ContentType: resp.Header.Get("Content-Type"),
				Body:        body,
				Status:      resp.StatusCode,
			}, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.policy.Attempts),
		retry.Delay(c.policy.Delay),
		retry.MaxJitter(c.policy.MaxJitter),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying HTTP request", "attempt", n+1, "url", rawURL, "error", err)
		}),
	)
}

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false // 4xx errors (except 429) are permanent
		}
	}
	// Network errors, timeouts, etc. are retryable
	return true
}
