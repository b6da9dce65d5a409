// Package score aggregates evidence signals into per-candidate scores.
package score

import (
	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/signal"
)

// DefaultFooterCap bounds the footer score when none is configured.
const DefaultFooterCap = 60

// Candidate is a website candidate with whatever page text could be fetched.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Candidate struct {
	URL        string
	Domain     string
	Title      string
	FooterText string
	BodyText   string
	Rank       int   // retrieval order, 0 first
	FetchErr   error // set when the page could not be fetched
}

// Result is the scored view of one candidate.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Result struct {
	Candidate    Candidate
	Signals      []signal.Signal
	FooterScore  int
	ContentScore int
	TotalScore   int
}

// Scorer sums signals per zone.
type Scorer struct {
	set       *signal.Set
	footerCap int
}

// New creates a Scorer. footerCap <= 0 selects DefaultFooterCap.
func New(set *signal.Set, footerCap int) *Scorer {
	if footerCap <= 0 {
		footerCap = DefaultFooterCap
	}
	return &Scorer{set: set, footerCap: footerCap}
}

// Score evaluates one candidate. The footer score is clipped to the footer
// cap; the content score is the plain sum of content signals, each already
// bounded by its extractor. The title is scanned together with the body.
func (s *Scorer) Score(rec company.Record, c Candidate) Result {
	content := c.BodyText
	if c.Title != "" {
		content = c.Title + " " + content
	}
	if c.FetchErr != nil {
		content = ""
	}
	footer := c.FooterText
	if c.FetchErr != nil {
		footer = ""
	}

	r := Result{Candidate: c, Signals: s.set.Extract(rec, footer, content)}
	footerSum := 0
	for _, sig := range r.Signals {
		switch sig.Zone {
		case signal.ZoneFooter:
			footerSum += sig.Points
		case signal.ZoneContent:
			r.ContentScore += sig.Points
		}
	}
	r.FooterScore = min(footerSum, s.footerCap)
	r.TotalScore = r.FooterScore + r.ContentScore
	return r
}

// ScoreAll scores candidates in order.
func (s *Scorer) ScoreAll(rec company.Record, cands []Candidate) []Result {
	out := make([]Result, 0, len(cands))
	for _, c := range cands {
		out = append(out, s.Score(rec, c))
	}
	return out
}
