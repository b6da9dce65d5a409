package retrieve

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// genericPECProviders are certified-mail providers shared by many companies;
// their domain says nothing about the company's own website.
var genericPECProviders = map[string]bool{
	"legalmail.it": true, "pec.it": true, "arubapec.it": true, "postecert.it": true,
	"pec.aruba.it": true, "registerpec.it": true, "sicurezzapostale.it": true,
	"pecimprese.it": true, "cgn.legalmail.it": true, "casellapec.com": true,
	"pec.libero.it": true, "gigapec.it": true, "mypec.eu": true, "pec-legal.it": true,
	"actaliscertymail.it": true, "cert.legalmail.it": true, "postacertificata.gov.it": true,
	"messaggipec.it": true, "infocert.it": true, "pec.buffetti.it": true,
}

// isGenericPEC reports whether domain is, or is under, a shared PEC provider.
func isGenericPEC(domain string) bool {
	for d := domain; d != ""; {
		if genericPECProviders[d] {
			return true
		}
		_, rest, ok := strings.Cut(d, ".")
		if !ok || !strings.Contains(rest, ".") {
			return false
		}
		d = rest
	}
	return false
}

// NormalizeDomain reduces a URL or bare host to its comparable domain:
// lowercase, ASCII (IDNA), no scheme, no "www.", no port, no trailing dot.
// It returns "" when there is no dotted host.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// SiteRoot returns scheme://host/ for a URL, keeping the original host
// (www. included) so the fetch goes where the search result pointed.
func SiteRoot(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}
	return scheme + "://" + strings.ToLower(u.Host) + "/"
}

// Excluder matches domains against an exclusion list. An entry excludes the
// domain itself and every subdomain of it.
type Excluder struct {
	domains map[string]bool
}

// NewExcluder builds an Excluder from configured entries (hosts or URLs).
func NewExcluder(entries []string) *Excluder {
	e := &Excluder{domains: make(map[string]bool, len(entries))}
	for _, entry := range entries {
		if d := NormalizeDomain(entry); d != "" {
			e.domains[d] = true
		}
	}
	return e
}

// Excluded reports whether a normalized domain is excluded.
func (e *Excluder) Excluded(domain string) bool {
	if e == nil || domain == "" {
		return false
	}
	for d := domain; ; {
		if e.domains[d] {
			return true
		}
		_, rest, ok := strings.Cut(d, ".")
		if !ok || rest == "" {
			return false
		}
		d = rest
	}
}
