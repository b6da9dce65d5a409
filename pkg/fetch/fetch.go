// Package fetch retrieves candidate pages and exposes their footer and body text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sitefinder/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sitefinder/pkg/httpcache"
)

// ErrFetch matches every *Error with errors.Is.
var ErrFetch = errors.New("fetch failed")

// Kind classifies a fetch failure.
type Kind string

// Failure kinds.
const (
	KindTimeout Kind = "timeout"
	KindStatus  Kind = "status"
	KindNetwork Kind = "network"
	KindBlocked Kind = "blocked"  // anti-bot interstitial
	KindNotHTML Kind = "not_html" // binary or non-document response
	KindSoft404 Kind = "soft_404" // error or parked-domain page served as 200
)

// Error is a failed fetch.
type Error struct {
	Err    error
	URL    string
	Kind   Kind
	Status int
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrFetch as a match.
func (*Error) Is(target error) bool { return target == ErrFetch }

// Page is a fetched and parsed document.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Page struct {
	URL         string // final URL
	Status      int
	Title       string
	Description string
	FooterText  string
	BodyText    string
	Links       []htmlutil.Link
	HTML        string
}

// Fetcher retrieves a page. Implementations block until the page text is
// available or the fetch has failed after its retries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTP is a Fetcher backed by an httpcache.Client.
type HTTP struct {
	client  *httpcache.Client
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures an HTTP fetcher.
type Option func(*HTTP)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *HTTP) { h.logger = logger }
}

// WithTimeout bounds a whole fetch, retries included.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.timeout = d }
}

// New creates an HTTP fetcher.
func New(client *httpcache.Client, opts ...Option) *HTTP {
	h := &HTTP{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch retrieves and parses rawURL. A same-site meta refresh or script
// redirect on the landing page is followed once.
func (h *HTTP) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	page, err := h.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if target := htmlutil.RedirectTarget(page.HTML); target != "" && len(page.BodyText) < 512 {
		next := htmlutil.ResolveURL(target, page.URL)
		if next != "" && next != page.URL && htmlutil.SameSite(next, page.URL) {
			h.logger.DebugContext(ctx, "following landing redirect", "from", page.URL, "to", next)
			if redirected, err := h.get(ctx, next); err == nil {
				return redirected, nil
			}
		}
	}
	return page, nil
}

func (h *HTTP) get(ctx context.Context, rawURL string) (*Page, error) {
	resp, err := h.client.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, classify(rawURL, err)
	}

	ct := strings.ToLower(resp.ContentType)
	if ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") && !strings.HasPrefix(ct, "text/") {
		return nil, &Error{URL: rawURL, Kind: KindNotHTML}
	}

	parsed, err := htmlutil.Parse(resp.Body, resp.ContentType, resp.URL)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindNotHTML, Err: err}
	}
	if htmlutil.IsBotProtection(parsed.Title, parsed.Text) {
		return nil, &Error{URL: rawURL, Kind: KindBlocked}
	}
	if htmlutil.IsNotFound(parsed.Title, parsed.Text) {
		return nil, &Error{URL: rawURL, Kind: KindSoft404}
	}

	return &Page{
		URL:         resp.URL,
		Status:      resp.Status,
		Title:       parsed.Title,
		Description: parsed.Description,
		FooterText:  parsed.Footer,
		BodyText:    parsed.Text,
		Links:       parsed.Links,
		HTML:        string(resp.Body),
	}, nil
}

func classify(rawURL string, err error) *Error {
	var httpErr *httpcache.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{URL: rawURL, Kind: KindStatus, Status: httpErr.StatusCode, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{URL: rawURL, Kind: KindTimeout, Err: err}
	}
	return &Error{URL: rawURL, Kind: KindNetwork, Err: err}
}
