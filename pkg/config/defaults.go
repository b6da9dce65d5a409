package config

import "time"

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Search: Search{
			Provider:     ProviderStartpage,
			StartpageURL: "https://www.startpage.com/sp/search",
			Timeout:      15 * time.Second,
			ExcludedDomains: []string{
				"startpage.com", "google.com", "bing.com", "yahoo.com", "duckduckgo.com",
				"facebook.com", "linkedin.com", "twitter.com", "x.com", "instagram.com",
				"youtube.com", "tiktok.com", "pinterest.com",
				"wikipedia.org", "wikidata.org",
				"amazon.com", "amazon.it", "ebay.com", "ebay.it",
				"ufficiocamerale.it", "registroimprese.it", "infocamere.it",
				"paginegialle.it", "paginebianche.it", "reportaziende.it", "atoka.io",
				"companyreports.it", "fatturatoitalia.it", "informazione-aziende.it",
				"kompass.com", "europages.it", "glassdoor.it", "indeed.com",
			},
			MaxCandidates: 8,
			Breaker: Breaker{
				MaxFailures: 5,
				OpenTimeout: 60 * time.Second,
			},
		},
		Scraping: Scraping{
			RequestDelay: 2 * time.Second,
			CompanyDelay: 3 * time.Second,
			PageTimeout:  15 * time.Second,
			Retry: Retry{
				Attempts:  3,
				Delay:     500 * time.Millisecond,
				MaxJitter: 250 * time.Millisecond,
			},
			CacheTTL:  30 * 24 * time.Hour,
			Workers:   1,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:146.0) Gecko/20100101 Firefox/146.0",
		},
		Validation: Validation{
			FooterScoreCap:          60,
			RejectionFloor:          0,
			ConfidenceThreshold:     50,
			HighConfidenceThreshold: 80,
		},
		Signals: Signals{
			Name:  NameWeights{FooterWeight: 20, FooterCap: 20, ContentWeight: 15, ContentCap: 45},
			TaxID: TaxIDWeights{FooterWeight: 30, ContentWeight: 25},
			VAT:   VATWeights{FooterWeight: 25},
			Registration: Registration{
				Weight:   10,
				Cap:      30,
				Patterns: DefaultRegistrationPatterns(),
			},
		},
		Intelligence: Intelligence{
			MaxPagesPerSite: 5,
			TopLinks:        5,
			CanonicalPaths:  []string{"/about", "/chi-siamo", "/contatti", "/contact"},
			LinkRules:       DefaultLinkRules(),
			Classifier: Classifier{
				Timeout:     60 * time.Second,
				Temperature: 0.3,
			},
		},
		Output: Output{
			WebsitesCSV:       "company_websites.csv",
			IntelligenceJSONL: "company_intelligence.jsonl",
		},
	}
}

// DefaultRegistrationPatterns returns the generic Italian business-registration phrases,
// each of which must be followed by digits to count.
func DefaultRegistrationPatterns() []Pattern {
	return []Pattern{
		{
			Name:    "tax_code_label",
			Pattern: `(?i)(?:codice\s+fiscale|cod\.\s*fisc\.?|\bc\.\s?f\.)[\s:.\-n°]*\d{6,}`,
		},
		{
			Name:    "vat_label",
			Pattern: `(?i)(?:partita\s+iva|\bp\.\s?iva|\bpiva\b|\bvat(?:\s+(?:number|no\.?|n\.))?)[\s:.\-n°]*(?:it)?\s?\d{11}`,
		},
		{
			Name:    "registry_enrollment",
			Pattern: `(?i)(?:\brea\b|\br\.\s?e\.\s?a\.?|registro\s+(?:delle\s+)?imprese|iscrizione\s+(?:al\s+)?reg)[^\d]{0,40}\d{5,}`,
		},
	}
}

// DefaultLinkRules returns the keyword-to-weight table used to rank homepage links.
func DefaultLinkRules() []LinkRule {
	return []LinkRule{
		{
			Category:     "company",
			Weight:       10,
			Keywords:     []string{"about", "chi-siamo", "chi siamo", "azienda", "company", "about-us"},
			PathPatterns: []string{"/about", "/chi-siamo", "/azienda"},
			PathBonus:    25,
		},
		{
			Category:     "services",
			Weight:       10,
			Keywords:     []string{"servizi", "services", "soluzioni", "solutions"},
			PathPatterns: []string{"/servizi", "/services", "/soluzioni"},
			PathBonus:    20,
		},
		{
			Category:     "products",
			Weight:       10,
			Keywords:     []string{"prodotti", "products", "portfolio"},
			PathPatterns: []string{"/prodotti", "/products", "/portfolio"},
			PathBonus:    20,
		},
		{
			Category: "technology",
			Weight:   10,
			Keywords: []string{
				"tecnologie", "technology", "tech", "innovation", "innovazione",
				"software", "hardware", "sistemi", "systems",
			},
			PathPatterns: []string{"/tecnologie", "/technology", "/tech"},
			PathBonus:    18,
		},
		{
			Category: "markets",
			Weight:   10,
			Keywords: []string{"settori", "markets", "industries", "clienti", "customers"},
		},
		{
			Category:     "contact",
			Weight:       10,
			Keywords:     []string{"contatti", "contact", "team", "staff", "people"},
			PathPatterns: []string{"/contatti", "/contact"},
			PathBonus:    15,
		},
		{
			Category: "profile",
			Weight:   10,
			Keywords: []string{
				"storia", "history", "mission", "news", "notizie", "press",
				"case-study", "progetti", "projects", "competenze", "expertise",
				"capabilities", "certificazioni", "certifications",
			},
		},
	}
}
