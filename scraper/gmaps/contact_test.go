package gmaps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/utils"
)

type fakeFetcher struct {
	html string
	text string
	err  error
}

func (f *fakeFetcher) FetchRendered(ctx context.Context, url string, timeout time.Duration) (string, string, error) {
	return f.html, f.text, f.err
}

func newTestEnricher(fetch renderedFetcher, q *fakeQuerier) *Enricher {
	logger := utils.NewLogger()
	return NewEnricher(fetch, NewEngine(q, logger), logger, time.Second)
}

func TestEnrichWebsiteBeatsListingPage(t *testing.T) {
	fetch := &fakeFetcher{
		html: `<html><body>Write to owner@joes.example or call us.</body></html>`,
		text: "Write to owner@joes.example or call +1 415 555 0132",
	}
	q := &fakeQuerier{
		evalHTML: `<html><body>directory@listing.example</body></html>`,
	}

	info := newTestEnricher(fetch, q).Enrich(context.Background(), "https://joes.example")

	if info.Email != "owner@joes.example" {
		t.Errorf("Email = %q; website address must win", info.Email)
	}
	if info.EmailSource != models.EmailSourceWebsite {
		t.Errorf("EmailSource = %q; want website", info.EmailSource)
	}
	if info.Phone == "" {
		t.Error("expected a phone from the website text")
	}
}

func TestEnrichFallsBackToListingPage(t *testing.T) {
	fetch := &fakeFetcher{err: errors.New("timeout")}
	q := &fakeQuerier{
		evalHTML: `<html><body>contact: listing@joes.example</body></html>`,
	}

	info := newTestEnricher(fetch, q).Enrich(context.Background(), "https://joes.example")

	if info.Email != "listing@joes.example" {
		t.Errorf("Email = %q; want the listing-page fallback", info.Email)
	}
	if info.EmailSource != models.EmailSourceListing {
		t.Errorf("EmailSource = %q; want listing_page", info.EmailSource)
	}
}

func TestEnrichNoWebsiteUsesListingOnly(t *testing.T) {
	q := &fakeQuerier{
		evalHTML: `<html><body>hello@joes.example</body></html>`,
		attrs: map[string]string{
			`body a[href^="tel:"]@href`: "tel:+14155550132",
		},
	}

	info := newTestEnricher(&fakeFetcher{}, q).Enrich(context.Background(), "")

	if info.Email != "hello@joes.example" {
		t.Errorf("Email = %q", info.Email)
	}
	if info.EmailSource != models.EmailSourceListing {
		t.Errorf("EmailSource = %q; want listing_page", info.EmailSource)
	}
	if info.Phone != "+14155550132" {
		t.Errorf("Phone = %q; want the tel: link payload", info.Phone)
	}
}

func TestEnrichNothingFound(t *testing.T) {
	info := newTestEnricher(&fakeFetcher{}, &fakeQuerier{}).Enrich(context.Background(), "")

	if info.Email != "" || info.Phone != "" {
		t.Errorf("info = %+v; want empty", info)
	}
	if info.EmailSource != models.EmailSourceNone {
		t.Errorf("EmailSource = %q; want none", info.EmailSource)
	}
}

func TestEnrichMailtoTierOnWebsite(t *testing.T) {
	fetch := &fakeFetcher{
		html: `<html><body><a href="mailto:book@joes.example?subject=hi">Email us</a></body></html>`,
	}
	q := &fakeQuerier{}

	info := newTestEnricher(fetch, q).Enrich(context.Background(), "https://joes.example")

	if info.Email != "book@joes.example" {
		t.Errorf("Email = %q; want the mailto target", info.Email)
	}
	if info.EmailSource != models.EmailSourceWebsite {
		t.Errorf("EmailSource = %q; want website", info.EmailSource)
	}
}
