package htmlutil

import (
	"regexp"
	"strings"
)

var (
	metaRefreshPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?refresh["']?[^>]+content\s*=\s*["']?\d+\s*;\s*url\s*=\s*["']?([^"'>\s]+)`),
		regexp.MustCompile(`(?i)<meta[^>]+content\s*=\s*["']?\d+\s*;\s*url\s*=\s*["']?([^"'>\s]+)[^>]+http-equiv\s*=\s*["']?refresh["']?`),
	}
	jsRedirectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)window\.location(?:\.href)?\s*=\s*["']([^"']+)["']`),
		regexp.MustCompile(`(?i)(?:^|[^\w.])location(?:\.href)?\s*=\s*["']([^"']+)["']`),
		regexp.MustCompile(`(?i)document\.location(?:\.href)?\s*=\s*["']([^"']+)["']`),
		regexp.MustCompile(`(?i)(?:window\.)?location\.(?:replace|assign)\s*\(\s*["']([^"']+)["']\s*\)`),
	}
)

// RedirectTarget returns the target of a meta refresh or JavaScript redirect
// in a landing page, or "" when there is none. Many small Italian company
// sites park the bare domain on such a stub pointing at /it/ or /home.
func RedirectTarget(htmlContent string) string {
	for _, p := range metaRefreshPatterns {
		if m := p.FindStringSubmatch(htmlContent); len(m) > 1 {
			return cleanRedirectURL(m[1])
		}
	}
	for _, p := range jsRedirectPatterns {
		if m := p.FindStringSubmatch(htmlContent); len(m) > 1 {
			u := cleanRedirectURL(m[1])
			if u != "" && !strings.HasPrefix(u, "#") && u != "." && u != "./" {
				return u
			}
		}
	}
	return ""
}

func cleanRedirectURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), `"'>`)
}
