// Package htmlutil turns fetched HTML into the text zones and links the
// website finder works on, and extracts contact details from page text.
package htmlutil

import "strings"

// IsNotFound detects soft "404" pages served with a 200 status.
func IsNotFound(title, text string) bool {
	lower := strings.ToLower(title + " " + truncate(text, 600))
	patterns := []string{
		"404 not found",
		"page not found",
		"error 404",
		"errore 404",
		"pagina non trovata",
		"la pagina che stai cercando non esiste",
		"the page you requested cannot be found",
		"this page doesn't exist",
		"domain is for sale",
		"questo dominio è in vendita",
		"dominio in vendita",
		"this domain may be for sale",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsBotProtection detects anti-bot interstitials (Cloudflare, DDoS-Guard,
// captcha walls). Such a page carries no company evidence.
func IsBotProtection(title, text string) bool {
	lt := strings.ToLower(title)
	for _, p := range []string{
		"just a moment",
		"attention required",
		"ddos-guard",
		"access denied",
		"un momento",
		"verifica che tu sia umano",
		"are you a robot",
	} {
		if strings.Contains(lt, p) {
			return true
		}
	}

	// Body phrases are only trusted on short pages; real sites mention captchas in forms.
	if len(text) > 2000 {
		return false
	}
	lb := strings.ToLower(text)
	for _, p := range []string{
		"checking your browser",
		"enable javascript and cookies to continue",
		"verify you are human",
		"ddos protection by",
		"please complete the security check",
		"cf-browser-verification",
	} {
		if strings.Contains(lb, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
