package finder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/fetch"
	"github.com/codeGROOVE-dev/sitefinder/pkg/intel"
	"github.com/codeGROOVE-dev/sitefinder/pkg/sink"
)

// Appender receives intelligence reports, one per line.
type Appender interface {
	Append(v any) error
}

// Summary counts the outcome of a run.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Summary struct {
	Total          int
	Skipped        int
	Processed      int
	HighConfidence int
	Reports        int
	ByStatus       map[company.Status]int
	Elapsed        time.Duration
}

// RunConfig configures a batch run.
//
//nolint:govet // fieldalignment: intentional layout for readability
type RunConfig struct {
	Sink         sink.Sink
	Workers      int
	CompanyDelay time.Duration
	// Completed holds record keys to skip, typically from sink.CompletedKeys.
	Completed map[string]bool
	// NewFetcher gives each worker its own fetcher. Nil shares the engine's.
	NewFetcher func() fetch.Fetcher
	// Gatherer and Reports enable the intelligence pass for found websites.
	Gatherer *intel.Gatherer
	Reports  Appender
	Logger   *slog.Logger
	// OnResult is called after each result is written.
	OnResult func(company.Result)
}

// Run evaluates every record and writes each result to the sink as soon as it
// is decided. Cancellation abandons the companies in flight; results already
// written stay written. A sink failure stops the run. A result written before
// its intelligence report failed is still counted.
func (e *Engine) Run(ctx context.Context, records []company.Record, cfg RunConfig) (Summary, error) {
	start := time.Now()
	logger := cfg.Logger
	if logger == nil {
		logger = e.logger
	}
	workers := max(cfg.Workers, 1)

	sum := Summary{Total: len(records), ByStatus: make(map[company.Status]int)}
	var pending []company.Record
	for _, rec := range records {
		if cfg.Completed[rec.Key()] {
			sum.Skipped++
			continue
		}
		pending = append(pending, rec)
	}
	if sum.Skipped > 0 {
		logger.InfoContext(ctx, "resuming", "skipped", sum.Skipped, "remaining", len(pending))
	}

	var mu sync.Mutex
	record := func(res company.Result, reported bool) {
		mu.Lock()
		defer mu.Unlock()
		sum.Processed++
		sum.ByStatus[res.Status]++
		if res.HighConfidence {
			sum.HighConfidence++
		}
		if reported {
			sum.Reports++
		}
	}

	// Each slot is one worker's engine; a slot that has finished a company
	// waits CompanyDelay before its next one.
	type slot struct {
		eng  *Engine
		id   int
		used bool
	}
	slots := make(chan *slot, workers)
	for w := range workers {
		eng := e
		if cfg.NewFetcher != nil {
			eng = e.withFetcher(cfg.NewFetcher())
		}
		slots <- &slot{eng: eng, id: w}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rec := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			sl := <-slots
			defer func() { slots <- sl }()
			if sl.used && cfg.CompanyDelay > 0 {
				if err := sleep(gctx, cfg.CompanyDelay); err != nil {
					return err
				}
			}
			sl.used = true

			res, reported, err := sl.eng.process(gctx, rec, cfg, logger)
			if res.Status != "" {
				record(res, reported)
			}
			if err != nil {
				return err
			}
			logger.DebugContext(gctx, "worker finished company", "worker", sl.id, "company", rec.Name)
			return nil
		})
	}
	err := g.Wait()

	sum.Elapsed = time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	return sum, err
}

// process evaluates one company and persists the outcome. The returned error
// is the context's, a sink failure, or a report failure; with a report
// failure the already written result is returned too.
func (e *Engine) process(ctx context.Context, rec company.Record, cfg RunConfig, logger *slog.Logger) (company.Result, bool, error) {
	d, err := e.Evaluate(ctx, rec)
	if err != nil {
		logger.InfoContext(ctx, "evaluation interrupted", "company", rec.Name)
		return company.Result{}, false, err
	}

	// A decided company is written even if cancellation arrives now.
	wctx := context.WithoutCancel(ctx)
	if cfg.Sink != nil {
		if err := cfg.Sink.Write(wctx, d.Result); err != nil {
			return company.Result{}, false, fmt.Errorf("write result for %s: %w", rec.Name, err)
		}
	}
	if cfg.OnResult != nil {
		cfg.OnResult(d.Result)
	}

	reported := false
	if cfg.Gatherer != nil && cfg.Reports != nil && d.Result.URL != "" {
		report := cfg.Gatherer.Gather(ctx, d.Result)
		if ctx.Err() == nil {
			if err := cfg.Reports.Append(report); err != nil {
				return d.Result, false, fmt.Errorf("write report for %s: %w", rec.Name, err)
			}
			reported = true
		}
	}
	return d.Result, reported, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
