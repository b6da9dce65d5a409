// Package retrieve turns a company record into an ordered, deduplicated list
// of candidate website roots.
package retrieve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/search"
)

// DefaultMaxCandidates bounds the candidate list when no limit is configured.
const DefaultMaxCandidates = 8

// Candidate is an unfetched website candidate.
type Candidate struct {
	URL     string // site root, scheme://host/
	Domain  string // normalized, for dedup and exclusion
	Title   string
	Snippet string
	Rank    int // 0-based position after filtering
}

// Retriever builds the query, runs the search and filters the results.
type Retriever struct {
	searcher search.Searcher
	exclude  *Excluder
	logger   *slog.Logger
	max      int
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) { r.logger = logger }
}

// WithMaxCandidates bounds the returned list.
func WithMaxCandidates(n int) Option {
	return func(r *Retriever) { r.max = n }
}

// WithExcludedDomains sets the domains that never become candidates.
func WithExcludedDomains(domains []string) Option {
	return func(r *Retriever) { r.exclude = NewExcluder(domains) }
}

// New creates a Retriever over a searcher.
func New(s search.Searcher, opts ...Option) *Retriever {
	r := &Retriever{searcher: s, logger: slog.Default(), max: DefaultMaxCandidates}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildQuery composes the search query for a company:
// the quoted name, the legal form without dots or commas, and the company's
// own certified-mail domain when it is not a shared PEC provider.
func BuildQuery(rec company.Record) string {
	parts := []string{`"` + strings.TrimSpace(rec.Name) + `"`}
	if lf := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(rec.LegalForm)); lf != "" {
		parts = append(parts, strings.Join(strings.Fields(lf), " "))
	}
	if hint := pecHint(rec.PECDomain()); hint != "" {
		parts = append(parts, hint)
	}
	return strings.Join(parts, " ")
}

func pecHint(domain string) string {
	if domain == "" || isGenericPEC(domain) {
		return ""
	}
	hint := strings.TrimPrefix(domain, "pec.")
	if isGenericPEC(hint) || !strings.Contains(hint, ".") {
		return ""
	}
	return hint
}

// Retrieve returns candidate stubs in search order. An empty list is a valid
// outcome; a search failure is returned as *search.Error.
func (r *Retriever) Retrieve(ctx context.Context, rec company.Record) ([]Candidate, error) {
	query := BuildQuery(rec)
	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	cands := Filter(results, r.exclude, r.max)
	r.logger.DebugContext(ctx, "candidates retrieved",
		"company", rec.Name, "query", query, "results", len(results), "candidates", len(cands))
	return cands, nil
}

// Filter drops excluded and hostless results, dedups by normalized domain
// keeping the first occurrence, and truncates to limit (<= 0 means no limit).
func Filter(results []search.Result, exclude *Excluder, limit int) []Candidate {
	seen := make(map[string]bool, len(results))
	var out []Candidate
	for _, res := range results {
		if limit > 0 && len(out) >= limit {
			break
		}
		domain := NormalizeDomain(res.URL)
		if domain == "" || exclude.Excluded(domain) || seen[domain] {
			continue
		}
		root := SiteRoot(res.URL)
		if root == "" {
			continue
		}
		seen[domain] = true
		out = append(out, Candidate{
			URL:     root,
			Domain:  domain,
			Title:   res.Title,
			Snippet: res.Snippet,
			Rank:    len(out),
		})
	}
	return out
}
