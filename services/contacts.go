package services

import (
	"regexp"
	"strings"
)

var (
	emailRegexp = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// phoneRegexps are tried in order: international prefix form first,
	// parenthesized area-code form, dashed/dotted form, then a bare digit run.
	phoneRegexps = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,4}[\s\-]?\(?\d{1,4}\)?[\s\-]?\d{1,4}[\s\-]?\d{1,4}[\s\-]?\d{0,9}`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[\s\-]?\d{4}`),
		regexp.MustCompile(`\d{3}[\-.\s]\d{3}[\-.\s]\d{4}`),
		regexp.MustCompile(`\d{10,15}`),
	}

	nonPhoneRunes = regexp.MustCompile(`[^\d+\-()\s]`)
)

// emailDenylist filters addresses that belong to platforms, schema hosts,
// tracking vendors, or boilerplate placeholders rather than the business.
var emailDenylist = []string{
	"example.com", "test.com", "domain.com", "yoursite.com", "youremail",
	"email@", "placeholder", "schema.org", "w3.org", "wix.com", "sentry.io",
	"sentry-next.wixpress.com", "google.com", "gstatic.com", "godaddy.com",
	"wordpress.com", "cloudflare.com",
}

// ExtractEmail returns the first email address in text that survives the
// denylist, or "" when none does.
func ExtractEmail(text string) string {
	for _, match := range emailRegexp.FindAllString(text, -1) {
		if AllowedEmail(match) {
			return match
		}
	}
	return ""
}

// AllowedEmail reports whether addr passes the placeholder/platform denylist.
func AllowedEmail(addr string) bool {
	lower := strings.ToLower(addr)
	for _, blocked := range emailDenylist {
		if strings.Contains(lower, blocked) {
			return false
		}
	}
	return true
}

// ExtractPhone scans free text with the layered phone-shape patterns and
// returns the first candidate whose digit count is plausible, or "".
func ExtractPhone(text string) string {
	for _, re := range phoneRegexps {
		for _, match := range re.FindAllString(text, -1) {
			if candidate := strings.TrimSpace(match); ValidPhone(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// ValidPhone reports whether raw holds 10–15 digits once separators are
// stripped.
func ValidPhone(raw string) bool {
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10 && digits <= 15
}

// CleanPhone strips everything but digits, "+", separators, and parentheses
// from a tel: link payload.
func CleanPhone(raw string) string {
	return strings.TrimSpace(nonPhoneRunes.ReplaceAllString(raw, ""))
}

// CleanMailto strips the mailto: scheme and any query suffix from an email
// link target.
func CleanMailto(href string) string {
	addr := strings.TrimPrefix(strings.TrimSpace(href), "mailto:")
	if i := strings.Index(addr, "?"); i != -1 {
		addr = addr[:i]
	}
	return strings.TrimSpace(addr)
}

// CleanTel strips the tel: scheme from a phone link target.
func CleanTel(href string) string {
	return CleanPhone(strings.TrimPrefix(strings.TrimSpace(href), "tel:"))
}
