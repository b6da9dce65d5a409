// Package finder wires retrieval, fetching, scoring and validation into the
// per-company evaluation and the batch run over an input list.
package finder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/fetch"
	"github.com/codeGROOVE-dev/sitefinder/pkg/retrieve"
	"github.com/codeGROOVE-dev/sitefinder/pkg/score"
	"github.com/codeGROOVE-dev/sitefinder/pkg/validate"
)

// Engine decides the official website of one company at a time.
type Engine struct {
	retriever *retrieve.Retriever
	fetcher   fetch.Fetcher
	scorer    *score.Scorer
	validator *validate.Validator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine.
func New(r *retrieve.Retriever, f fetch.Fetcher, s *score.Scorer, v *validate.Validator, opts ...Option) *Engine {
	e := &Engine{retriever: r, fetcher: f, scorer: s, validator: v, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// withFetcher returns a copy of e that fetches through f.
func (e *Engine) withFetcher(f fetch.Fetcher) *Engine {
	c := *e
	c.fetcher = f
	return &c
}

// Evaluate retrieves, fetches and scores the candidates of rec and selects
// the winner. Search and fetch failures degrade the decision rather than fail
// it; the only error is the context's, when the evaluation was cut short.
func (e *Engine) Evaluate(ctx context.Context, rec company.Record) (validate.Decision, error) {
	stubs, err := e.retriever.Retrieve(ctx, rec)
	if err != nil {
		if ctx.Err() != nil {
			return validate.Decision{}, ctx.Err()
		}
		e.logger.WarnContext(ctx, "search failed", "company", rec.Name, "error", err)
		return e.validator.Select(rec, nil), nil
	}

	cands := make([]score.Candidate, 0, len(stubs))
	for _, stub := range stubs {
		if ctx.Err() != nil {
			return validate.Decision{}, ctx.Err()
		}
		cands = append(cands, e.candidate(ctx, stub))
	}
	if ctx.Err() != nil {
		return validate.Decision{}, ctx.Err()
	}

	results := e.scorer.ScoreAll(rec, cands)
	for _, r := range results {
		e.logger.DebugContext(ctx, "candidate scored",
			"company", rec.Name, "url", r.Candidate.URL,
			"footer", r.FooterScore, "content", r.ContentScore, "score", r.TotalScore)
	}
	d := e.validator.Select(rec, results)
	e.logger.InfoContext(ctx, "company decided",
		"company", rec.Name, "url", d.Result.URL, "score", d.Result.ConfidenceScore,
		"status", d.Result.Status, "candidates", len(results))
	return d, nil
}

func (e *Engine) candidate(ctx context.Context, stub retrieve.Candidate) score.Candidate {
	c := score.Candidate{URL: stub.URL, Domain: stub.Domain, Rank: stub.Rank}
	page, err := e.fetcher.Fetch(ctx, stub.URL)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.InfoContext(ctx, "candidate fetch failed", "url", stub.URL, "error", err)
		}
		c.FetchErr = err
		return c
	}
	c.Title = page.Title
	c.FooterText = page.FooterText
	c.BodyText = page.BodyText
	return c
}
