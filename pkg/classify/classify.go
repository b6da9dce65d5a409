// Package classify assigns industry categories to website content.
//
// Keyword is deterministic and always available. OpenAI consults an
// OpenAI-compatible chat endpoint and is wrapped by Fallback so that any
// failure degrades to keyword matching.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// ErrClassify is wrapped by classifier failures.
var ErrClassify = errors.New("classification failed")

// Source values for Classification.Source.
const (
	SourceKeyword = "keyword"
	SourceAI      = "ai"
)

// Taxonomy maps an industry category to its subcategory names.
type Taxonomy map[string][]string

// Categories returns the category names in sorted order.
func (t Taxonomy) Categories() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadTaxonomy reads a JSON object of category to subcategory list.
// An empty path returns DefaultTaxonomy.
func LoadTaxonomy(path string) (Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Category is one matched industry category.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Category struct {
	Name          string   `json:"category"`
	Confidence    float64  `json:"confidence"`
	Subcategories []string `json:"subcategories,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Score         int      `json:"score,omitempty"`
}

// Classification is the outcome for one company.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Classification struct {
	Source         string     `json:"source"`
	Categories     []Category `json:"categories"`
	Confidence     float64    `json:"overall_confidence"`
	BusinessFocus  string     `json:"business_focus,omitempty"`
	MarketSegments []string   `json:"market_segments,omitempty"`
}

// Primary returns the best category name, or "" when nothing matched.
func (c *Classification) Primary() string {
	if c == nil || len(c.Categories) == 0 {
		return ""
	}
	return c.Categories[0].Name
}

// Classifier classifies website text against a taxonomy.
type Classifier interface {
	Classify(ctx context.Context, text string, tax Taxonomy) (*Classification, error)
}

// Fallback tries Primary and uses Secondary when it fails or finds nothing.
type Fallback struct {
	Primary   Classifier
	Secondary Classifier
	Logger    *slog.Logger
}

// Classify implements Classifier.
func (f Fallback) Classify(ctx context.Context, text string, tax Taxonomy) (*Classification, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if f.Primary != nil {
		c, err := f.Primary.Classify(ctx, text, tax)
		if err == nil && c != nil && c.Confidence > 0 {
			return c, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.InfoContext(ctx, "falling back to keyword classification", "error", err)
	}
	return f.Secondary.Classify(ctx, text, tax)
}

// DefaultTaxonomy is used when no taxonomy file is configured.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"Telecomunicazioni":        {"reti in fibra ottica", "telefonia", "infrastrutture di rete", "5G"},
		"Software":                 {"sviluppo software", "applicazioni web", "app mobile", "gestionale"},
		"Cloud e Data Center":      {"cloud computing", "data center", "hosting", "virtualizzazione"},
		"Sicurezza Informatica":    {"cybersecurity", "sicurezza informatica", "firewall", "penetration test"},
		"Energia":                  {"impianti fotovoltaici", "energia rinnovabile", "efficienza energetica", "impianti elettrici"},
		"Automazione Industriale":  {"automazione", "robotica", "plc", "industria 4.0"},
		"Consulenza":               {"consulenza aziendale", "formazione", "project management", "system integration"},
		"Intelligenza Artificiale": {"intelligenza artificiale", "machine learning", "analisi dei dati", "big data"},
	}
}
