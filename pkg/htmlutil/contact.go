package htmlutil

import (
	"net/url"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// commonTLDs contains valid top-level domains used to filter out bogus emails
// extracted from obfuscated text.
var commonTLDs = map[string]bool{
	"com": true, "org": true, "net": true, "eu": true, "it": true, "biz": true,
	"info": true, "io": true, "co": true, "de": true, "fr": true, "es": true,
	"ch": true, "at": true, "uk": true, "nl": true, "be": true, "sm": true,
	"cloud": true, "tech": true, "email": true, "srl": true, "spa": true,
}

// EmailAddresses extracts email addresses from page text.
// Filters out common false positives like noreply@, example@, image names.
func EmailAddresses(text string) []string {
	var emails []string
	seen := make(map[string]bool)

	for _, email := range emailPattern.FindAllString(text, -1) {
		email = strings.ToLower(strings.TrimRight(email, "."))

		if strings.HasPrefix(email, "noreply@") ||
			strings.HasPrefix(email, "no-reply@") ||
			strings.HasPrefix(email, "example@") ||
			strings.Contains(email, "@example.") ||
			strings.Contains(email, "@localhost") ||
			strings.Contains(email, "@sentry") ||
			strings.HasSuffix(email, ".png") ||
			strings.HasSuffix(email, ".jpg") ||
			strings.HasSuffix(email, ".webp") ||
			strings.HasSuffix(email, ".gif") {
			continue
		}
		if !isValidEmailDomain(email) {
			continue
		}
		if !seen[email] {
			seen[email] = true
			emails = append(emails, email)
		}
	}
	return emails
}

// isValidEmailDomain checks if the email domain looks valid (not random gibberish).
func isValidEmailDomain(email string) bool {
	atIdx := strings.LastIndex(email, "@")
	if atIdx < 0 {
		return false
	}
	parts := strings.Split(email[atIdx+1:], ".")
	if len(parts) < 2 {
		return false
	}
	tld := parts[len(parts)-1]
	if commonTLDs[tld] {
		return true
	}
	if len(tld) < 2 || len(tld) > 6 {
		return false
	}
	return !looksLikeRandomString(parts[len(parts)-2]) && !looksLikeRandomString(tld)
}

// looksLikeRandomString checks if a string looks like random gibberish
// by checking for unusual consonant patterns and character distribution.
func looksLikeRandomString(s string) bool {
	if len(s) < 4 {
		return false
	}

	vowels, consonants, run, maxRun := 0, 0, 0, 0
	for _, c := range strings.ToLower(s) {
		if c < 'a' || c > 'z' {
			continue
		}
		if strings.ContainsRune("aeiou", c) {
			vowels++
			run = 0
			continue
		}
		consonants++
		run++
		maxRun = max(maxRun, run)
	}

	switch {
	case vowels == 0 && consonants > 3:
		return true
	case maxRun > 4:
		return true
	case vowels > 0 && float64(consonants)/float64(vowels) >= 3.5:
		return true
	default:
		return false
	}
}

// phonePattern matches Italian landline (0x...) and mobile (3xx...) numbers,
// optionally prefixed with +39 or 0039, with common separators.
var phonePattern = regexp.MustCompile(
	`(?:(?:\+39|0039)[\s.\-]?)?\(?0\d{1,3}\)?[\s.\-/]?\d{2,4}[\s.\-]?\d{2,4}(?:[\s.\-]?\d{1,4})?` +
		`|(?:(?:\+39|0039)[\s.\-]?)?3\d{2}[\s.\-/]?\d{3,4}[\s.\-]?\d{3,4}`,
)

var datePattern = regexp.MustCompile(`^\d{2}[./-]\d{2}[./-]\d{2,4}$`)

// PhoneNumbers extracts phone numbers from page text, deduplicated by digits.
func PhoneNumbers(text string) []string {
	var phones []string
	seen := make(map[string]bool)

	for _, phone := range phonePattern.FindAllString(text, -1) {
		phone = strings.TrimSpace(phone)
		normalized := normalizePhone(phone)
		n := len(strings.TrimPrefix(normalized, "+"))
		// Italian numbers have 6 to 11 national digits; 11-digit runs without
		// separators are more likely VAT numbers.
		if n < 6 || n > 13 {
			continue
		}
		if !strings.ContainsAny(phone, " .-/()+") || datePattern.MatchString(phone) {
			continue
		}
		if !seen[normalized] {
			seen[normalized] = true
			phones = append(phones, phone)
		}
	}
	return phones
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r == '+' && i == 0) || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveURL resolves href against baseURL. It returns "" for fragment-only,
// javascript:, mailto: and tel: links and for anything unparsable.
func ResolveURL(href, baseURL string) string {
	lower := strings.ToLower(href)
	if href == "" || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "#") {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// Host returns the lowercased host of a URL without a leading "www.".
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SameSite reports whether two URLs share a host, ignoring "www.".
func SameSite(a, b string) bool {
	ha, hb := Host(a), Host(b)
	return ha != "" && ha == hb
}
