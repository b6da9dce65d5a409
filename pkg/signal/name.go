package signal

import (
	"strings"
	"unicode"
)

// legalFormTokens are Italian company-type abbreviations as they appear
// after dots are dropped.
var legalFormTokens = map[string]bool{
	"spa": true, "srl": true, "srls": true, "sas": true, "snc": true, "sapa": true,
	"scarl": true, "scrl": true, "scpa": true, "scparl": true, "ss": true, "sc": true,
	"soc": true, "coop": true, "unipersonale": true, "socio": true, "unico": true,
}

// normalize case-folds, drops dots (so "S.p.A." becomes "spa"), turns every
// other non-alphanumeric rune into a space and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '.':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Variations returns the ordered, distinct name forms matched against pages:
// the full normalized name, the name without legal-form tokens, its first
// word and its first two words. Forms of two characters or fewer are dropped.
func Variations(name string) []string {
	full := normalize(name)
	if full == "" {
		return nil
	}

	var core []string
	for _, w := range strings.Fields(full) {
		if !legalFormTokens[w] {
			core = append(core, w)
		}
	}

	cands := []string{full, strings.Join(core, " ")}
	if len(core) > 1 {
		cands = append(cands, core[0], core[0]+" "+core[1])
	}

	seen := make(map[string]bool, len(cands))
	var out []string
	for _, c := range cands {
		if len([]rune(c)) <= 2 || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
