package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate checks every invariant the components rely on and returns all
// violations joined. A non-nil result is fatal: the run must not start.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Search.Provider {
	case ProviderBrave:
		if c.Search.BraveAPIKey == "" {
			bad("search.brave_api_key is required for provider %q", ProviderBrave)
		}
	case ProviderStartpage:
		if c.Search.StartpageURL == "" {
			bad("search.startpage_url is required for provider %q", ProviderStartpage)
		}
	default:
		bad("search.provider %q is not one of %q, %q", c.Search.Provider, ProviderBrave, ProviderStartpage)
	}
	if c.Search.MaxCandidates < 1 {
		bad("search.max_candidate_websites must be >= 1, got %d", c.Search.MaxCandidates)
	}
	for _, d := range c.Search.ExcludedDomains {
		if strings.TrimSpace(d) == "" {
			bad("search.excluded_domains contains an empty entry")
			break
		}
	}

	if c.Scraping.Workers < 1 {
		bad("scraping.workers must be >= 1, got %d", c.Scraping.Workers)
	}
	if c.Scraping.Retry.Attempts < 1 {
		bad("scraping.retry.attempts must be >= 1, got %d", c.Scraping.Retry.Attempts)
	}
	if c.Scraping.RequestDelay < 0 || c.Scraping.CompanyDelay < 0 || c.Scraping.PageTimeout < 0 {
		bad("scraping delays and timeouts must not be negative")
	}

	v := c.Validation
	if v.FooterScoreCap <= 0 {
		bad("validation.footer_score_cap must be > 0, got %d", v.FooterScoreCap)
	}
	if v.RejectionFloor < 0 {
		bad("validation.rejection_floor must not be negative, got %d", v.RejectionFloor)
	}
	if v.ConfidenceThreshold <= v.RejectionFloor {
		bad("validation.confidence_threshold (%d) must be greater than rejection_floor (%d)",
			v.ConfidenceThreshold, v.RejectionFloor)
	}
	if v.HighConfidenceThreshold < v.ConfidenceThreshold {
		bad("validation.high_confidence_threshold (%d) must be >= confidence_threshold (%d)",
			v.HighConfidenceThreshold, v.ConfidenceThreshold)
	}

	s := c.Signals
	for _, w := range []struct {
		name  string
		value int
	}{
		{"signals.name.footer_weight", s.Name.FooterWeight},
		{"signals.name.footer_cap", s.Name.FooterCap},
		{"signals.name.content_weight", s.Name.ContentWeight},
		{"signals.name.content_cap", s.Name.ContentCap},
		{"signals.tax_id.footer_weight", s.TaxID.FooterWeight},
		{"signals.tax_id.content_weight", s.TaxID.ContentWeight},
		{"signals.vat.footer_weight", s.VAT.FooterWeight},
		{"signals.registration.weight", s.Registration.Weight},
		{"signals.registration.cap", s.Registration.Cap},
	} {
		if w.value < 0 {
			bad("%s must not be negative, got %d", w.name, w.value)
		}
	}
	seen := make(map[string]bool, len(s.Registration.Patterns))
	for i, p := range s.Registration.Patterns {
		if p.Name == "" {
			bad("signals.registration.patterns[%d] has no name", i)
		}
		if seen[p.Name] {
			bad("signals.registration.patterns[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if _, err := regexp.Compile(p.Pattern); err != nil {
			bad("signals.registration.patterns[%d] (%s): %v", i, p.Name, err)
		}
	}

	in := c.Intelligence
	if in.MaxPagesPerSite < 1 {
		bad("intelligence.max_pages_per_site must be >= 1, got %d", in.MaxPagesPerSite)
	}
	if in.TopLinks < 0 {
		bad("intelligence.top_links must not be negative, got %d", in.TopLinks)
	}
	if len(in.CanonicalPaths) > in.MaxPagesPerSite-1 && in.MaxPagesPerSite >= 1 {
		bad("intelligence.canonical_paths has %d entries, more than max_pages_per_site-1 (%d)",
			len(in.CanonicalPaths), in.MaxPagesPerSite-1)
	}
	for i, p := range in.CanonicalPaths {
		if !strings.HasPrefix(p, "/") {
			bad("intelligence.canonical_paths[%d] %q must start with /", i, p)
		}
	}
	for i, r := range in.LinkRules {
		if r.Category == "" {
			bad("intelligence.link_rules[%d] has no category", i)
		}
		if len(r.Keywords) == 0 && len(r.PathPatterns) == 0 {
			bad("intelligence.link_rules[%d] (%s) has neither keywords nor path_patterns", i, r.Category)
		}
		if r.Weight < 0 || r.PathBonus < 0 {
			bad("intelligence.link_rules[%d] (%s): weights must not be negative", i, r.Category)
		}
	}
	if in.Classifier.Endpoint != "" && in.Classifier.Model == "" {
		bad("intelligence.classifier.model is required when an endpoint is set")
	}
	if in.Enabled && c.Output.IntelligenceJSONL == "" {
		bad("output.intelligence_jsonl is required when intelligence is enabled")
	}

	return errors.Join(errs...)
}
