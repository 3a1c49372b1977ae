package services

import "testing"

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain address", "Contact us at info@acmeplumbing.com today", "info@acmeplumbing.com"},
		{"skips placeholder", "email@example.com or sales@acmeplumbing.com", "sales@acmeplumbing.com"},
		{"skips schema host", "support@schema.org", ""},
		{"skips tracking vendor", "errors go to abc123@sentry.io", ""},
		{"nothing found", "call us on 555-0100", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEmail(tt.text); got != tt.want {
				t.Errorf("ExtractEmail(%q) = %q; want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"international", "Call +1 415 555 0132 now", "+1 415 555 0132"},
		{"parenthesized", "Phone: (415) 555-0132", "(415) 555-0132"},
		{"dashed", "415-555-0132 is our line", "415-555-0132"},
		{"bare digits", "reach 4155550132 anytime", "4155550132"},
		{"too short", "ext. 123-456", ""},
		{"none", "email only, sorry", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPhone(tt.text); got != tt.want {
				t.Errorf("ExtractPhone(%q) = %q; want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"+1 (415) 555-0132", true},
		{"4155550132", true},
		{"123456789", false},
		{"1234567890123456", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.raw); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanMailto(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"mailto:info@acme.com", "info@acme.com"},
		{"mailto:info@acme.com?subject=Hi", "info@acme.com"},
		{"  mailto:info@acme.com  ", "info@acme.com"},
		{"info@acme.com", "info@acme.com"},
	}

	for _, tt := range tests {
		if got := CleanMailto(tt.href); got != tt.want {
			t.Errorf("CleanMailto(%q) = %q; want %q", tt.href, got, tt.want)
		}
	}
}

func TestCleanTel(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"tel:+14155550132", "+14155550132"},
		{"tel:(415) 555-0132", "(415) 555-0132"},
		{"tel:415.555.0132", "4155550132"},
	}

	for _, tt := range tests {
		if got := CleanTel(tt.href); got != tt.want {
			t.Errorf("CleanTel(%q) = %q; want %q", tt.href, got, tt.want)
		}
	}
}
