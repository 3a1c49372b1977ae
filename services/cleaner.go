package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ratingRegexp captures a decimal rating like "4.5" from "4.5 stars".
	ratingRegexp = regexp.MustCompile(`\b(\d(?:[.,]\d{1,2})?)\b`)
	// countRegexp captures an integer count, tolerating thousands separators.
	countRegexp = regexp.MustCompile(`([\d][\d,.\x{202f}\x{00a0}]*)`)
	// starRegexp captures a lone 1–5 star label.
	starRegexp = regexp.MustCompile(`\b([1-5])\b`)
)

// ParseRating extracts a 0.0–5.0 numeric rating from free text. Accepts both
// "." and "," as the decimal separator. Returns nil when no usable rating is
// present.
func ParseRating(raw string) *float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// ParseCount extracts a non-negative integer from free text, stripping
// thousands separators ("1,234", "1.234", narrow/no-break spaces). Returns
// nil when no digits are present.
func ParseCount(raw string) *int {
	match := countRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match[1])
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// ParseStars extracts a 1–5 integer star value from free text, e.g. a review's
// "5 stars" aria label. Returns nil when absent.
func ParseStars(raw string) *int {
	match := starRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 || n > 5 {
		return nil
	}
	return &n
}

// NormalizeText strips leading/trailing whitespace and collapses internal
// whitespace runs to single spaces.
func NormalizeText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// NormalizeIdentity canonicalizes identity text for fingerprinting: collapsed
// whitespace, lower case.
func NormalizeIdentity(s string) string {
	return strings.ToLower(NormalizeText(s))
}
