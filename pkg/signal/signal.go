// Package signal extracts weighted evidence that a page belongs to a company.
//
// Extractors are pure and total: they never fail, and a missing optional
// input (no footer, no tax code) simply yields no signals. All weights, caps
// and registration patterns come from configuration and are compiled once
// into a Set, which is safe for concurrent use.
package signal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
)

// Kind names the extractor that produced a signal.
type Kind string

// Extractor kinds, in scoring order.
const (
	KindName         Kind = "name_match"
	KindTaxID        Kind = "tax_id"
	KindVAT          Kind = "vat_pattern"
	KindRegistration Kind = "registration"
)

// Zone is the part of the page a signal was found in.
type Zone string

// Zones.
const (
	ZoneFooter  Zone = "footer"
	ZoneContent Zone = "content"
)

// Signal is one piece of evidence.
type Signal struct {
	Kind   Kind   `json:"kind"`
	Zone   Zone   `json:"zone"`
	Detail string `json:"detail,omitempty"`
	Points int    `json:"points"`
}

type namedPattern struct {
	re   *regexp.Regexp
	name string
}

// Set is the compiled extractor configuration.
type Set struct {
	registration []namedPattern
	cfg          config.Signals
}

// Compile validates and compiles the signal configuration.
func Compile(cfg config.Signals) (*Set, error) {
	s := &Set{cfg: cfg}
	for _, p := range cfg.Registration.Patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("registration pattern %q: %w", p.Name, err)
		}
		s.registration = append(s.registration, namedPattern{name: p.Name, re: re})
	}
	return s, nil
}

// Extract runs every extractor and returns their signals in a fixed order:
// name, tax identifier, VAT, registration.
func (s *Set) Extract(rec company.Record, footer, body string) []Signal {
	var out []Signal
	out = append(out, s.Name(rec, footer, body)...)
	out = append(out, s.TaxID(rec, footer, body)...)
	out = append(out, s.VAT(rec, footer)...)
	out = append(out, s.Registration(body)...)
	return out
}

// Name matches the company name variations on word boundaries. Each distinct
// variation found adds the zone weight, up to the zone cap.
func (s *Set) Name(rec company.Record, footer, body string) []Signal {
	vars := Variations(rec.Name)
	if len(vars) == 0 {
		return nil
	}
	w := s.cfg.Name
	var out []Signal
	out = append(out, nameZone(vars, footer, ZoneFooter, w.FooterWeight, w.FooterCap)...)
	out = append(out, nameZone(vars, body, ZoneContent, w.ContentWeight, w.ContentCap)...)
	return out
}

func nameZone(vars []string, text string, zone Zone, weight, limit int) []Signal {
	if text == "" || weight <= 0 || limit <= 0 {
		return nil
	}
	padded := " " + normalize(text) + " "
	var found []string
	for _, v := range vars {
		if strings.Contains(padded, " "+v+" ") {
			found = append(found, v)
		}
	}
	return capped(KindName, zone, found, weight, limit)
}

// TaxID looks for the tax code, tolerating separators between characters.
// A footer hit and a body hit are separate signals.
func (s *Set) TaxID(rec company.Record, footer, body string) []Signal {
	re := separatorTolerant(rec.TaxCode)
	if re == nil {
		return nil
	}
	var out []Signal
	if w := s.cfg.TaxID.FooterWeight; w > 0 && footer != "" && re.MatchString(footer) {
		out = append(out, Signal{Kind: KindTaxID, Zone: ZoneFooter, Points: w, Detail: cleanID(rec.TaxCode)})
	}
	if w := s.cfg.TaxID.ContentWeight; w > 0 && body != "" && re.MatchString(body) {
		out = append(out, Signal{Kind: KindTaxID, Zone: ZoneContent, Points: w, Detail: cleanID(rec.TaxCode)})
	}
	return out
}

var (
	vatLabelPattern  = regexp.MustCompile(`(?i)(?:partita\s+iva|\bp\.?\s*iva|\bvat(?:\s+(?:number|no\.?|n\.?))?)[\s:.\-n°]*(?:it\s?)?\d{11}(?:$|\D)`)
	vatPrefixPattern = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])it\s?\d{11}(?:$|\D)`)
)

// VAT fires once when the footer carries a VAT number: a labelled 11-digit
// number, an IT-prefixed one, or the company's own VAT number.
func (s *Set) VAT(rec company.Record, footer string) []Signal {
	w := s.cfg.VAT.FooterWeight
	if w <= 0 || footer == "" {
		return nil
	}
	detail := ""
	switch {
	case vatLabelPattern.MatchString(footer):
		detail = "label"
	case vatPrefixPattern.MatchString(footer):
		detail = "it_prefix"
	default:
		known := strings.TrimPrefix(cleanID(rec.VATNumber), "IT")
		if re := separatorTolerant(known); re != nil && re.MatchString(footer) {
			detail = "known_vat"
		}
	}
	if detail == "" {
		return nil
	}
	return []Signal{{Kind: KindVAT, Zone: ZoneFooter, Points: w, Detail: detail}}
}

// Registration matches the configured registration phrases over the body.
// Each distinct matching pattern adds the weight, up to the cap.
func (s *Set) Registration(body string) []Signal {
	r := s.cfg.Registration
	if body == "" || r.Weight <= 0 || r.Cap <= 0 {
		return nil
	}
	var found []string
	for _, p := range s.registration {
		if p.re.MatchString(body) {
			found = append(found, p.name)
		}
	}
	return capped(KindRegistration, ZoneContent, found, r.Weight, r.Cap)
}

// capped emits one signal per detail at weight points until limit is
// reached; the signal that crosses the limit gets only the remainder.
func capped(kind Kind, zone Zone, details []string, weight, limit int) []Signal {
	var out []Signal
	total := 0
	for _, d := range details {
		if total >= limit {
			break
		}
		pts := min(weight, limit-total)
		total += pts
		out = append(out, Signal{Kind: kind, Zone: zone, Points: pts, Detail: d})
	}
	return out
}

func cleanID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}

// separatorTolerant builds a case-insensitive pattern for an identifier that
// allows one space, dot, dash or slash between characters, and refuses to
// match inside a longer alphanumeric run. A numeric identifier may carry the
// IT country prefix, as in "P.IVA IT00941910788".
func separatorTolerant(id string) *regexp.Regexp {
	id = cleanID(id)
	if id == "" {
		return nil
	}
	parts := make([]string, 0, len(id))
	for _, r := range id {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	prefix := ""
	if isDigits(id) {
		prefix = `(?:it[\s.\-/]?)?`
	}
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])` + prefix + strings.Join(parts, `[\s.\-/]?`) + `(?:$|[^\pL\pN])`)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
