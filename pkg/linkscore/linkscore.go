// Package linkscore ranks a homepage's internal links to decide which
// subpages are worth fetching for content extraction.
package linkscore

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/htmlutil"
)

// skippedExtensions are documents and media that carry no page content.
var skippedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".zip": true, ".rar": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".mp3": true, ".mp4": true, ".avi": true,
}

// Link is a scored internal link.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Link struct {
	URL       string   `json:"url"`
	Anchor    string   `json:"anchor,omitempty"`
	Path      string   `json:"path"`
	Score     int      `json:"score"`
	Canonical bool     `json:"canonical,omitempty"`
	Matched   []string `json:"matched,omitempty"` // categories that contributed
}

type rule struct {
	category string
	keywords []string
	paths    []string
	weight   int
	bonus    int
}

// Scorer applies the keyword table to links.
type Scorer struct {
	rules     []rule
	canonical []string
	topLinks  int
	maxExtra  int
}

// New builds a Scorer from the intelligence configuration.
func New(cfg config.Intelligence) *Scorer {
	s := &Scorer{
		topLinks: cfg.TopLinks,
		maxExtra: max(cfg.MaxPagesPerSite-1, 0),
	}
	for _, r := range cfg.LinkRules {
		lr := rule{category: r.Category, weight: r.Weight, bonus: r.PathBonus}
		for _, k := range r.Keywords {
			lr.keywords = append(lr.keywords, strings.ToLower(k))
		}
		for _, p := range r.PathPatterns {
			lr.paths = append(lr.paths, strings.ToLower(p))
		}
		s.rules = append(s.rules, lr)
	}
	for _, p := range cfg.CanonicalPaths {
		s.canonical = append(s.canonical, normalizePath(p))
	}
	return s
}

// Score returns the relevance of one link and the categories that matched.
// Each keyword found in the anchor text or href adds the rule weight; the
// path bonus is added once per rule when any of its path patterns occurs in
// the href.
func (s *Scorer) Score(href, anchor string) (int, []string) {
	h := strings.ToLower(href)
	a := strings.ToLower(anchor)
	total := 0
	var matched []string
	for _, r := range s.rules {
		pts := 0
		for _, k := range r.keywords {
			if strings.Contains(a, k) || strings.Contains(h, k) {
				pts += r.weight
			}
		}
		for _, p := range r.paths {
			if strings.Contains(h, p) {
				pts += r.bonus
				break
			}
		}
		if pts > 0 {
			total += pts
			matched = append(matched, r.category)
		}
	}
	return total, matched
}

// Select returns the subpages to fetch after homeURL. Canonical paths found
// on the page come first in configured order, then positive-score links by
// descending score with page order breaking ties, up to the top-links limit.
// The result never exceeds max_pages_per_site-1 entries.
func (s *Scorer) Select(homeURL string, links []htmlutil.Link) []Link {
	if s.maxExtra == 0 {
		return nil
	}
	homePath := normalizePath(pathOf(homeURL))

	var cands []Link
	seen := map[string]bool{homePath: true}
	for _, l := range links {
		abs := htmlutil.ResolveURL(l.URL, homeURL)
		if abs == "" || !htmlutil.SameSite(abs, homeURL) {
			continue
		}
		u, err := url.Parse(abs)
		if err != nil {
			continue
		}
		if skippedExtensions[strings.ToLower(path.Ext(u.Path))] {
			continue
		}
		p := normalizePath(u.Path)
		if seen[p] {
			continue
		}
		seen[p] = true

		u.RawQuery, u.Fragment = "", ""
		score, matched := s.Score(abs, l.Anchor)
		cands = append(cands, Link{URL: u.String(), Anchor: l.Anchor, Path: p, Score: score, Matched: matched})
	}

	byPath := make(map[string]int, len(cands))
	for i, c := range cands {
		byPath[c.Path] = i
	}

	var out []Link
	taken := make(map[string]bool)
	for _, cp := range s.canonical {
		if len(out) >= s.maxExtra {
			return out
		}
		i, ok := byPath[cp]
		if !ok || taken[cp] {
			continue
		}
		c := cands[i]
		c.Canonical = true
		out = append(out, c)
		taken[cp] = true
	}

	var ranked []Link
	for _, c := range cands {
		if c.Score > 0 && !taken[c.Path] {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > s.topLinks {
		ranked = ranked[:s.topLinks]
	}
	for _, c := range ranked {
		if len(out) >= s.maxExtra {
			break
		}
		out = append(out, c)
	}
	return out
}

// Plan returns the homepage followed by the selected subpage URLs.
func (s *Scorer) Plan(homeURL string, links []htmlutil.Link) []string {
	pages := []string{homeURL}
	for _, l := range s.Select(homeURL, links) {
		pages = append(pages, l.URL)
	}
	return pages
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

// normalizePath lowercases and drops the trailing slash, so "/Chi-Siamo/"
// and "/chi-siamo" collapse. The root path becomes "".
func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSuffix(strings.ToLower(p), "/")
}
