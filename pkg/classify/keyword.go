package classify

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	categoryNamePoints = 15
	subcategoryPoints  = 8
	keyTermPoints      = 3
	fullConfidence     = 40.0
	minConfidence      = 0.08
	maxKeywords        = 5
	maxSegments        = 8
)

var stopWords = map[string]bool{
	"della": true, "delle": true, "nella": true, "nelle": true, "with": true,
	"degli": true, "dello": true, "sulla": true, "from": true, "that": true,
}

var marketSegments = []struct{ keyword, segment string }{
	{"banking", "Banking & Finance"},
	{"bancario", "Banking & Finance"},
	{"healthcare", "Healthcare"},
	{"sanità", "Healthcare"},
	{"manufacturing", "Manufacturing"},
	{"manifattur", "Manufacturing"},
	{"retail", "Retail & E-commerce"},
	{"education", "Education"},
	{"government", "Government & Public Sector"},
	{"pubblica amministrazione", "Government & Public Sector"},
	{"automotive", "Automotive"},
	{"energy", "Energy & Utilities"},
	{"logistics", "Logistics & Transportation"},
	{"logistica", "Logistics & Transportation"},
	{"real estate", "Real Estate"},
	{"insurance", "Insurance"},
	{"assicura", "Insurance"},
	{"telecommunications", "Telecommunications"},
	{"telecomunicazioni", "Telecommunications"},
	{"media", "Media & Entertainment"},
	{"food", "Food & Beverage"},
	{"alimentare", "Food & Beverage"},
	{"pharma", "Pharmaceutical"},
	{"farmaceutic", "Pharmaceutical"},
}

var focusPatterns = []struct {
	re     *regexp.Regexp
	prefix string
}{
	{regexp.MustCompile(`specializzat[aeoi]\s+(?:in|nel|nella|nei)\s+([^.]{10,50})`), "Specialized in"},
	{regexp.MustCompile(`leader\s+(?:nel|nella|nelle|nei|in)\s+([^.]{10,50})`), "Leader in"},
	{regexp.MustCompile(`espert[aeoi]\s+(?:di|in|nel)\s+([^.]{10,50})`), "Expert in"},
	{regexp.MustCompile(`focus\s+su\s+([^.]{10,50})`), "Focus on"},
}

// Keyword classifies by counting taxonomy terms in the text.
type Keyword struct{}

// Classify implements Classifier. It never fails.
func (Keyword) Classify(_ context.Context, text string, tax Taxonomy) (*Classification, error) {
	content := strings.ToLower(text)
	out := &Classification{Source: SourceKeyword, Categories: []Category{}}

	for _, name := range tax.Categories() {
		c := Category{Name: name}
		var keywords []string
		addKeyword := func(k string) {
			for _, x := range keywords {
				if x == k {
					return
				}
			}
			keywords = append(keywords, k)
		}

		if strings.Contains(content, strings.ToLower(name)) {
			c.Score += categoryNamePoints
			addKeyword(name)
		}
		for _, sub := range tax[name] {
			lower := strings.ToLower(sub)
			if n := strings.Count(content, lower); n > 0 {
				c.Score += n * subcategoryPoints
				c.Subcategories = append(c.Subcategories, sub)
				addKeyword(sub)
			}
			for _, term := range keyTerms(lower) {
				if strings.Contains(content, term) {
					c.Score += keyTermPoints
					addKeyword(term)
				}
			}
		}

		c.Confidence = min(float64(c.Score)/fullConfidence, 1)
		if c.Confidence < minConfidence {
			continue
		}
		if len(keywords) > maxKeywords {
			keywords = keywords[:maxKeywords]
		}
		c.Keywords = keywords
		out.Categories = append(out.Categories, c)
	}

	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].Score > out.Categories[j].Score
	})
	if len(out.Categories) > 0 {
		out.Confidence = out.Categories[0].Confidence
	}
	out.BusinessFocus = businessFocus(content)
	out.MarketSegments = segments(content)
	return out, nil
}

// keyTerms splits a subcategory into significant words.
func keyTerms(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		if len([]rune(w)) > 3 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

func businessFocus(content string) string {
	for _, p := range focusPatterns {
		if m := p.re.FindStringSubmatch(content); m != nil {
			return p.prefix + " " + strings.TrimSpace(m[1])
		}
	}
	return ""
}

func segments(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range marketSegments {
		if seen[s.segment] || !strings.Contains(content, s.keyword) {
			continue
		}
		seen[s.segment] = true
		out = append(out, s.segment)
		if len(out) == maxSegments {
			break
		}
	}
	return out
}
