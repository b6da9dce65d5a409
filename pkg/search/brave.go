package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/sitefinder/pkg/httpcache"
)

// BraveEndpoint is the Brave Search web API.
const BraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// ResultCacheTTL is how long search results are reused. Company sites rarely move.
const ResultCacheTTL = 7 * 24 * time.Hour

// Brave implements Searcher using the Brave Search API.
// Free tier: 2,000 queries/month, 1 query/second.
type Brave struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	apiKey     string
	endpoint   string
}

// braveResponse represents the Brave Search API response.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// BraveOption configures a Brave searcher.
type BraveOption func(*Brave)

// WithBraveCache sets a cache for storing search results.
func WithBraveCache(cache httpcache.Cacher) BraveOption {
	return func(b *Brave) { b.cache = cache }
}

// WithBraveLogger sets a logger for the searcher.
func WithBraveLogger(logger *slog.Logger) BraveOption {
	return func(b *Brave) { b.logger = logger }
}

// WithBraveEndpoint overrides the API endpoint.
func WithBraveEndpoint(endpoint string) BraveOption {
	return func(b *Brave) { b.endpoint = endpoint }
}

// WithBraveTimeout sets the per-request timeout.
func WithBraveTimeout(d time.Duration) BraveOption {
	return func(b *Brave) { b.httpClient.Timeout = d }
}

// NewBrave creates a new Brave Search API client.
// apiKey is the Brave Search API subscription token.
func NewBrave(apiKey string, opts ...BraveOption) *Brave {
	b := &Brave{
		apiKey:     apiKey,
		endpoint:   BraveEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Search performs a web search using the Brave Search API.
func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	var data []byte
	var err error
	if b.cache != nil {
		cacheKey := "brave:" + httpcache.URLToKey(query)
		data, err = b.cache.GetSet(ctx, cacheKey, func(ctx context.Context) ([]byte, error) {
			return b.doSearch(ctx, query)
		}, ResultCacheTTL)
	} else {
		data, err = b.doSearch(ctx, query)
	}
	if err != nil {
		return nil, wrap("brave", query, err)
	}

	results, err := parseBrave(data)
	if err != nil {
		return nil, wrap("brave", query, err)
	}
	return results, nil
}

// doSearch performs the actual API call.
func (b *Brave) doSearch(ctx context.Context, query string) ([]byte, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("count", "20")
	q.Set("country", "IT")
	q.Set("search_lang", "it")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	b.logger.DebugContext(ctx, "brave search", "query", query)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best effort cleanup

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil {
			return nil, &httpcache.HTTPError{URL: b.endpoint, StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("%w: %s", &httpcache.HTTPError{URL: b.endpoint, StatusCode: resp.StatusCode}, body)
	}

	return io.ReadAll(resp.Body)
}

func parseBrave(data []byte) ([]Result, error) {
	var br braveResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results, nil
}
