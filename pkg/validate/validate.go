// Package validate maps candidate scores to validation tiers and picks the
// winning candidate for a company.
package validate

import (
	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/score"
)

// Validator holds the tier thresholds.
type Validator struct {
	floor     int
	threshold int
	high      int
}

// New creates a Validator from validated thresholds.
func New(cfg config.Validation) *Validator {
	return &Validator{
		floor:     cfg.RejectionFloor,
		threshold: cfg.ConfidenceThreshold,
		high:      cfg.HighConfidenceThreshold,
	}
}

// Classify returns the tier of a total score and whether it is high confidence.
func (v *Validator) Classify(total int) (company.Status, bool) {
	high := total >= v.high
	switch {
	case total <= v.floor:
		return company.StatusRejected, false
	case total < v.threshold:
		return company.StatusLowConfidence, high
	default:
		return company.StatusValidated, high
	}
}

// Decision is the outcome of selecting among scored candidates.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Decision struct {
	Result company.Result
	Winner *score.Result // nil when nothing survived
	Scored []score.Result
}

// Select picks the best candidate: highest total, then highest footer score,
// then earliest retrieval rank. A rejected or missing winner yields not_found.
func (v *Validator) Select(rec company.Record, results []score.Result) Decision {
	d := Decision{Scored: results, Result: company.NotFound(rec, len(results))}

	best := -1
	for i := range results {
		if best < 0 || better(results[i], results[best]) {
			best = i
		}
	}
	if best < 0 {
		return d
	}

	w := results[best]
	status, high := v.Classify(w.TotalScore)
	if status == company.StatusRejected {
		return d
	}
	d.Winner = &results[best]
	d.Result = company.Result{
		Company:           rec,
		URL:               w.Candidate.URL,
		ConfidenceScore:   w.TotalScore,
		Status:            status,
		HighConfidence:    high,
		PageTitle:         w.Candidate.Title,
		CandidatesChecked: len(results),
	}
	return d
}

func better(a, b score.Result) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.FooterScore != b.FooterScore {
		return a.FooterScore > b.FooterScore
	}
	return a.Candidate.Rank < b.Candidate.Rank
}
