// Command sitefinder finds and validates the official website of each
// company in a CSV list.
//
// Usage:
//
//	sitefinder -i companies_detailed.csv
//	sitefinder -c sitefinder.yaml --resume --intel
//	BRAVE_API_KEY=... sitefinder --provider brave --limit 20
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/codeGROOVE-dev/sitefinder/pkg/classify"
	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/fetch"
	"github.com/codeGROOVE-dev/sitefinder/pkg/finder"
	"github.com/codeGROOVE-dev/sitefinder/pkg/httpcache"
	"github.com/codeGROOVE-dev/sitefinder/pkg/intel"
	"github.com/codeGROOVE-dev/sitefinder/pkg/linkscore"
	"github.com/codeGROOVE-dev/sitefinder/pkg/retrieve"
	"github.com/codeGROOVE-dev/sitefinder/pkg/score"
	"github.com/codeGROOVE-dev/sitefinder/pkg/search"
	sig "github.com/codeGROOVE-dev/sitefinder/pkg/signal"
	"github.com/codeGROOVE-dev/sitefinder/pkg/sink"
	"github.com/codeGROOVE-dev/sitefinder/pkg/validate"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitConfig      = 2
	exitInterrupted = 130
)

//nolint:govet // fieldalignment: intentional layout for readability
type flags struct {
	configPath string
	input      string
	output     string
	provider   string
	cacheDir   string
	limit      int
	workers    int
	resume     bool
	intel      bool
	noCache    bool
	debug      bool
	verbose    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var f flags
	pflag.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file (defaults are used when empty)")
	pflag.StringVarP(&f.input, "input", "i", "companies_detailed.csv", "input CSV with company_name, legal_form, tax_code")
	pflag.StringVarP(&f.output, "output", "o", "", "websites CSV (overrides output.websites_csv)")
	pflag.StringVar(&f.provider, "provider", "", "search provider: brave or startpage (overrides search.provider)")
	pflag.StringVar(&f.cacheDir, "cache-dir", "", "HTTP cache directory (overrides scraping.cache_dir)")
	pflag.IntVarP(&f.limit, "limit", "n", 0, "process at most N companies (0 = all)")
	pflag.IntVarP(&f.workers, "workers", "w", 0, "concurrent companies (overrides scraping.workers)")
	pflag.BoolVar(&f.resume, "resume", false, "skip companies already present in the websites CSV")
	pflag.BoolVar(&f.intel, "intel", false, "gather contacts and industry classification for found websites")
	pflag.BoolVar(&f.noCache, "no-cache", false, "disable the persistent HTTP cache")
	pflag.BoolVar(&f.debug, "debug", false, "enable debug logging")
	pflag.BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging (same as --debug)")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sitefinder [options]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logLevel := slog.LevelInfo
	if f.debug || f.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error:\n%v\n", err)
		return exitConfig
	}

	records, err := readRecords(f.input, f.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	logger.Info("companies loaded", "input", f.input, "count", len(records))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheDir := cfg.Scraping.CacheDir
	if f.noCache {
		cacheDir = "-"
	}
	httpCache, err := httpcache.New(cfg.Scraping.CacheTTL, cacheDir)
	if err != nil {
		logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		httpCache = httpcache.NewNull()
	}
	defer func() {
		if err := httpCache.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}()

	limiter := httpcache.NewRateLimiter(cfg.Scraping.RequestDelay)
	policy := httpcache.Policy{
		Attempts:  uint(cfg.Scraping.Retry.Attempts), //nolint:gosec // validated >= 1
		Delay:     cfg.Scraping.Retry.Delay,
		MaxJitter: cfg.Scraping.Retry.MaxJitter,
	}
	var clients []*httpcache.Client
	newClient := func(timeout time.Duration) *httpcache.Client {
		c := httpcache.NewClient(
			httpcache.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpcache.WithCache(httpCache),
			httpcache.WithRateLimiter(limiter),
			httpcache.WithLogger(logger),
			httpcache.WithUserAgent(cfg.Scraping.UserAgent),
			httpcache.WithPolicy(policy),
		)
		clients = append(clients, c)
		return c
	}
	newFetcher := func() fetch.Fetcher {
		return fetch.New(newClient(cfg.Scraping.PageTimeout),
			fetch.WithLogger(logger), fetch.WithTimeout(cfg.Scraping.PageTimeout))
	}

	engine, breaker, err := buildEngine(cfg, newClient(cfg.Search.Timeout), httpCache, newFetcher(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	runCfg := finder.RunConfig{
		Workers:      cfg.Scraping.Workers,
		CompanyDelay: cfg.Scraping.CompanyDelay,
		Logger:       logger,
	}
	if runCfg.Workers > 1 {
		runCfg.NewFetcher = newFetcher
	}
	if f.resume {
		done, err := sink.CompletedKeys(cfg.Output.WebsitesCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		runCfg.Completed = done
	}

	out, err := openSinks(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("failed to close output", "error", err)
		}
	}()
	runCfg.Sink = out

	if cfg.Intelligence.Enabled {
		g, reports, err := buildIntel(cfg, newFetcher(), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		defer func() {
			if err := reports.Close(); err != nil {
				logger.Warn("failed to close intelligence output", "error", err)
			}
		}()
		runCfg.Gatherer = g
		runCfg.Reports = reports
	}

	sum, err := engine.Run(ctx, records, runCfg)
	var cacheStats httpcache.Stats
	for _, c := range clients {
		st := c.Stats()
		cacheStats.Hits += st.Hits
		cacheStats.Misses += st.Misses
	}
	if st := breaker.State(); st != "closed" {
		logger.Warn("search provider circuit breaker is not closed", "provider", cfg.Search.Provider, "state", st)
	}
	printSummary(sum, cacheStats, breaker.State())
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted; completed results were saved.")
		return exitInterrupted
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	default:
		return exitOK
	}
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if f.provider != "" {
		cfg.Search.Provider = f.provider
	}
	if f.cacheDir != "" {
		cfg.Scraping.CacheDir = f.cacheDir
	}
	if f.output != "" {
		cfg.Output.WebsitesCSV = f.output
	}
	if f.workers > 0 {
		cfg.Scraping.Workers = f.workers
	}
	if f.intel {
		cfg.Intelligence.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readRecords(path string, limit int) ([]company.Record, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close() //nolint:errcheck // read-only
	records, err := company.ReadCSV(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func buildEngine(cfg *config.Config, searchClient *httpcache.Client, cache httpcache.Cacher, f fetch.Fetcher, logger *slog.Logger) (*finder.Engine, *search.Breaker, error) {
	var provider search.Searcher
	switch cfg.Search.Provider {
	case config.ProviderBrave:
		provider = search.NewBrave(cfg.Search.BraveAPIKey,
			search.WithBraveCache(cache),
			search.WithBraveLogger(logger),
			search.WithBraveTimeout(cfg.Search.Timeout))
	default:
		provider = search.NewStartpage(searchClient, cfg.Search.StartpageURL, logger)
	}
	searcher := search.NewBreaker(cfg.Search.Provider, provider,
		cfg.Search.Breaker.MaxFailures, cfg.Search.Breaker.OpenTimeout, logger)

	retriever := retrieve.New(searcher,
		retrieve.WithLogger(logger),
		retrieve.WithMaxCandidates(cfg.Search.MaxCandidates),
		retrieve.WithExcludedDomains(cfg.Search.ExcludedDomains))

	set, err := sig.Compile(cfg.Signals)
	if err != nil {
		return nil, nil, err
	}
	return finder.New(retriever, f,
		score.New(set, cfg.Validation.FooterScoreCap),
		validate.New(cfg.Validation),
		finder.WithLogger(logger)), searcher, nil
}

func openSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sink.Multi, error) {
	var out sink.Multi
	if p := cfg.Output.WebsitesCSV; p != "" {
		c, err := sink.OpenCSV(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if p := cfg.Output.SQLite; p != "" {
		db, err := sink.OpenSQLite(ctx, p)
		if err != nil {
			_ = out.Close() //nolint:errcheck // already returning an error
			return nil, err
		}
		logger.Info("recording results in sqlite", "path", p, "run_id", db.RunID())
		out = append(out, db)
	}
	return out, nil
}

func buildIntel(cfg *config.Config, f fetch.Fetcher, logger *slog.Logger) (*intel.Gatherer, *sink.JSONL, error) {
	ic := cfg.Intelligence
	tax, err := classify.LoadTaxonomy(ic.TaxonomyFile)
	if err != nil {
		return nil, nil, err
	}
	var classifier classify.Classifier = classify.Keyword{}
	if ic.Classifier.Endpoint != "" {
		classifier = classify.Fallback{
			Primary:   classify.NewOpenAI(ic.Classifier, logger),
			Secondary: classify.Keyword{},
			Logger:    logger,
		}
	}
	reports, err := sink.OpenJSONL(cfg.Output.IntelligenceJSONL)
	if err != nil {
		return nil, nil, err
	}
	g := intel.New(f, linkscore.New(ic),
		intel.WithLogger(logger),
		intel.WithClassifier(classifier),
		intel.WithTaxonomy(tax))
	return g, reports, nil
}

func printSummary(sum finder.Summary, cache httpcache.Stats, breakerState string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.AppendHeader(table.Row{"Outcome", "Companies"})
	for _, s := range []company.Status{
		company.StatusValidated, company.StatusLowConfidence, company.StatusRejected, company.StatusNotFound,
	} {
		t.AppendRow(table.Row{string(s), sum.ByStatus[s]})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"high confidence", sum.HighConfidence})
	t.AppendRow(table.Row{"skipped (resume)", sum.Skipped})
	t.AppendRow(table.Row{"intelligence reports", sum.Reports})
	t.AppendRow(table.Row{"http cache hits / misses", fmt.Sprintf("%d / %d", cache.Hits, cache.Misses)})
	t.AppendRow(table.Row{"search breaker", breakerState})
	t.AppendFooter(table.Row{"processed", fmt.Sprintf("%d / %d in %s", sum.Processed, sum.Total, sum.Elapsed.Round(time.Second))})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
