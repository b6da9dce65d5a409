// Package intel gathers contact details and an industry classification from
// a validated company website.
package intel

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sitefinder/pkg/classify"
	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/fetch"
	"github.com/codeGROOVE-dev/sitefinder/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sitefinder/pkg/linkscore"
)

// Analysis status values.
const (
	StatusCompleted = "completed"
	StatusNoWebsite = "no_website"
	StatusError     = "error"
)

const (
	maxEmails = 8
	maxPhones = 5
)

// businessMailboxes are preferred over personal addresses.
var businessMailboxes = []string{
	"info@", "contact@", "contatti@", "amministrazione@", "segreteria@",
	"commerciale@", "vendite@", "sales@", "marketing@",
}

// Report is the intelligence record for one company.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Report struct {
	Company        company.Record           `json:"company"`
	URL            string                   `json:"website_url"`
	Status         string                   `json:"analysis_status"`
	Error          string                   `json:"error,omitempty"`
	Description    string                   `json:"description,omitempty"`
	Pages          []string                 `json:"analyzed_pages"`
	Links          []linkscore.Link         `json:"selected_links,omitempty"`
	Emails         []string                 `json:"info_emails"`
	Phones         []string                 `json:"phone_numbers"`
	Classification *classify.Classification `json:"classification,omitempty"`
	AnalyzedAt     time.Time                `json:"analysis_timestamp"`
}

// Gatherer runs the intelligence pass.
type Gatherer struct {
	fetcher    fetch.Fetcher
	links      *linkscore.Scorer
	classifier classify.Classifier
	taxonomy   classify.Taxonomy
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatherer) { g.logger = logger }
}

// WithClassifier replaces the keyword classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(g *Gatherer) { g.classifier = c }
}

// WithTaxonomy sets the industry taxonomy.
func WithTaxonomy(t classify.Taxonomy) Option {
	return func(g *Gatherer) { g.taxonomy = t }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gatherer) { g.now = now }
}

// New creates a Gatherer.
func New(f fetch.Fetcher, links *linkscore.Scorer, opts ...Option) *Gatherer {
	g := &Gatherer{
		fetcher:    f,
		links:      links,
		classifier: classify.Keyword{},
		taxonomy:   classify.DefaultTaxonomy(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gather analyzes the website of a decided company. Companies without a URL
// produce a no_website report; a failed homepage fetch produces an error
// report. Subpage failures are skipped.
func (g *Gatherer) Gather(ctx context.Context, res company.Result) Report {
	r := Report{
		Company:    res.Company,
		URL:        res.URL,
		Pages:      []string{},
		Emails:     []string{},
		Phones:     []string{},
		AnalyzedAt: g.now().UTC(),
	}
	if res.URL == "" {
		r.Status = StatusNoWebsite
		return r
	}

	home, err := g.fetcher.Fetch(ctx, res.URL)
	if err != nil {
		g.logger.InfoContext(ctx, "intelligence homepage fetch failed", "url", res.URL, "error", err)
		r.Status = StatusError
		r.Error = err.Error()
		return r
	}

	r.Links = g.links.Select(res.URL, home.Links)
	pages := []*fetch.Page{home}
	r.Pages = append(r.Pages, res.URL)
	for _, l := range r.Links {
		if ctx.Err() != nil {
			break
		}
		p, err := g.fetcher.Fetch(ctx, l.URL)
		if err != nil {
			g.logger.DebugContext(ctx, "subpage fetch failed", "url", l.URL, "error", err)
			continue
		}
		pages = append(pages, p)
		r.Pages = append(r.Pages, l.URL)
	}

	var content strings.Builder
	var emails, phones []string
	for i, p := range pages {
		content.WriteString("\n--- " + r.Pages[i] + " ---\n")
		if p.Description != "" {
			content.WriteString(p.Description + "\n")
		}
		content.WriteString(p.BodyText)
		emails = append(emails, htmlutil.EmailAddresses(p.BodyText+"\n"+p.HTML)...)
		phones = append(phones, htmlutil.PhoneNumbers(p.BodyText)...)
	}
	r.Description = pages[0].Description
	r.Emails = limit(prioritize(dedupe(emails)), maxEmails)
	r.Phones = limit(dedupe(phones), maxPhones)

	c, err := g.classifier.Classify(ctx, content.String(), g.taxonomy)
	if err != nil {
		g.logger.WarnContext(ctx, "classification failed", "company", res.Company.Name, "error", err)
	} else {
		r.Classification = c
	}
	r.Status = StatusCompleted
	g.logger.InfoContext(ctx, "intelligence gathered",
		"company", res.Company.Name, "pages", len(r.Pages), "emails", len(r.Emails), "category", c.Primary())
	return r
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func prioritize(emails []string) []string {
	business := func(e string) bool {
		for _, p := range businessMailboxes {
			if strings.HasPrefix(e, p) {
				return true
			}
		}
		return false
	}
	sort.SliceStable(emails, func(i, j int) bool { return business(emails[i]) && !business(emails[j]) })
	return emails
}

func limit(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
