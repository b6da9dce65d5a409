// Package config holds the immutable run configuration of the website finder:
// weights, caps, thresholds, exclusion lists, pacing and output locations.
//
// A Config is built once at startup (Default, then Load, then ApplyEnv and flag
// overrides), checked with Validate, and then passed by pointer to every
// component. Nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Search providers.
const (
	ProviderBrave     = "brave"
	ProviderStartpage = "startpage"
)

// Config is the root configuration.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Config struct {
	Search       Search       `yaml:"search"`
	Scraping     Scraping     `yaml:"scraping"`
	Validation   Validation   `yaml:"validation"`
	Signals      Signals      `yaml:"signals"`
	Intelligence Intelligence `yaml:"intelligence"`
	Output       Output       `yaml:"output"`
}

// Search configures candidate retrieval.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Search struct {
	Provider        string        `yaml:"provider"`
	StartpageURL    string        `yaml:"startpage_url"`
	BraveAPIKey     string        `yaml:"brave_api_key"`
	Timeout         time.Duration `yaml:"timeout"`
	ExcludedDomains []string      `yaml:"excluded_domains"`
	MaxCandidates   int           `yaml:"max_candidate_websites"`
	Breaker         Breaker       `yaml:"breaker"`
}

// Breaker configures the circuit breaker around the search provider.
type Breaker struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// Scraping configures page fetching.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Scraping struct {
	RequestDelay time.Duration `yaml:"request_delay"` // minimum gap between requests to one domain
	CompanyDelay time.Duration `yaml:"company_delay"` // pause between companies
	PageTimeout  time.Duration `yaml:"page_timeout"`
	Retry        Retry         `yaml:"retry"`
	CacheDir     string        `yaml:"cache_dir"` // "" = user cache dir, "-" = memory only
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	Workers      int           `yaml:"workers"`
	UserAgent    string        `yaml:"user_agent"`
}

// Retry is the bounded retry policy handed to the fetcher.
type Retry struct {
	Attempts  int           `yaml:"attempts"`
	Delay     time.Duration `yaml:"delay"`
	MaxJitter time.Duration `yaml:"max_jitter"`
}

// Validation holds the score thresholds.
type Validation struct {
	FooterScoreCap          int `yaml:"footer_score_cap"`
	RejectionFloor          int `yaml:"rejection_floor"`
	ConfidenceThreshold     int `yaml:"confidence_threshold"`
	HighConfidenceThreshold int `yaml:"high_confidence_threshold"`
}

// Signals holds per-extractor weights and caps.
type Signals struct {
	Name         NameWeights  `yaml:"name"`
	TaxID        TaxIDWeights `yaml:"tax_id"`
	VAT          VATWeights   `yaml:"vat"`
	Registration Registration `yaml:"registration"`
}

// NameWeights configures the company name extractor.
type NameWeights struct {
	FooterWeight  int `yaml:"footer_weight"`
	FooterCap     int `yaml:"footer_cap"`
	ContentWeight int `yaml:"content_weight"`
	ContentCap    int `yaml:"content_cap"`
}

// TaxIDWeights configures the tax identifier extractor.
type TaxIDWeights struct {
	FooterWeight  int `yaml:"footer_weight"`
	ContentWeight int `yaml:"content_weight"`
}

// VATWeights configures the VAT pattern extractor.
type VATWeights struct {
	FooterWeight int `yaml:"footer_weight"`
}

// Registration configures the registration phrase table.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Registration struct {
	Weight   int       `yaml:"weight"`
	Cap      int       `yaml:"cap"`
	Patterns []Pattern `yaml:"patterns"`
}

// Pattern is one named regular expression of the registration table.
type Pattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Intelligence configures the post-validation link discovery pass.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Intelligence struct {
	Enabled         bool       `yaml:"enabled"`
	MaxPagesPerSite int        `yaml:"max_pages_per_site"`
	TopLinks        int        `yaml:"top_links"`
	CanonicalPaths  []string   `yaml:"canonical_paths"`
	LinkRules       []LinkRule `yaml:"link_rules"`
	TaxonomyFile    string     `yaml:"taxonomy_file"`
	Classifier      Classifier `yaml:"classifier"`
}

// LinkRule is one category of the link keyword-to-weight table.
//
//nolint:govet // fieldalignment: intentional layout for readability
type LinkRule struct {
	Category     string   `yaml:"category"`
	Weight       int      `yaml:"weight"`
	Keywords     []string `yaml:"keywords"`
	PathPatterns []string `yaml:"path_patterns"`
	PathBonus    int      `yaml:"path_bonus"`
}

// Classifier configures the optional AI classifier. An empty Endpoint disables it.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Classifier struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float32       `yaml:"temperature"`
}

// Output configures the result sinks. Empty paths disable a sink.
type Output struct {
	WebsitesCSV       string `yaml:"websites_csv"`
	SQLite            string `yaml:"sqlite"`
	IntelligenceJSONL string `yaml:"intelligence_jsonl"`
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so that a misspelled weight cannot silently fall back.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv fills secrets and a few overrides from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.BraveAPIKey = v
	}
	if v := os.Getenv("SITEFINDER_SEARCH_PROVIDER"); v != "" {
		c.Search.Provider = v
	}
	if v := os.Getenv("SITEFINDER_CACHE_DIR"); v != "" {
		c.Scraping.CacheDir = v
	}
	if v := os.Getenv("SITEFINDER_CLASSIFIER_ENDPOINT"); v != "" {
		c.Intelligence.Classifier.Endpoint = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Intelligence.Classifier.APIKey == "" {
		c.Intelligence.Classifier.APIKey = v
	}
}
