package gmaps

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/services"
	"github.com/AhmedRagabRG/scraper/utils"
)

// renderedFetcher loads a URL in an isolated secondary browsing context and
// returns its rendered markup and body text.
type renderedFetcher interface {
	FetchRendered(ctx context.Context, url string, timeout time.Duration) (html, text string, err error)
}

// ContactInfo is the outcome of one enrichment pass.
type ContactInfo struct {
	Email       string
	EmailSource models.EmailSource
	Phone       string
}

// Enricher resolves email and phone for a business. The business's own
// website outranks the listing page: listing contact data is often a shared
// directory address, while the site is authoritative. Every failure mode in
// here degrades to "no contact found"; enrichment never fails a record.
type Enricher struct {
	fetch   renderedFetcher
	engine  *Engine
	logger  *utils.Logger
	timeout time.Duration
}

// NewEnricher wires the enrichment sub-flow. fetch may be nil to disable the
// website tier entirely (e.g. offline tests).
func NewEnricher(fetch renderedFetcher, engine *Engine, logger *utils.Logger, timeout time.Duration) *Enricher {
	return &Enricher{fetch: fetch, engine: engine, logger: logger, timeout: timeout}
}

// Enrich applies the tiered lookup: website first, listing page as fallback,
// independently for email and phone.
func (en *Enricher) Enrich(ctx context.Context, websiteURL string) ContactInfo {
	info := ContactInfo{EmailSource: models.EmailSourceNone}

	if websiteURL != "" && en.fetch != nil {
		en.fromWebsite(ctx, websiteURL, &info)
	}

	if info.Email == "" {
		if email := en.emailFromListing(ctx); email != "" {
			info.Email = email
			info.EmailSource = models.EmailSourceListing
		}
	}

	if info.Phone == "" {
		info.Phone = en.phoneFromListing(ctx)
	}

	return info
}

// fromWebsite fetches the external site in a secondary context and mines it
// for contact data. Navigation failures and timeouts degrade silently.
func (en *Enricher) fromWebsite(ctx context.Context, websiteURL string, info *ContactInfo) {
	html, text, err := en.fetch.FetchRendered(ctx, websiteURL, en.timeout)
	if err != nil {
		en.logger.Warn("[contact] Website fetch failed for %s: %v", websiteURL, err)
		return
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))

	if email := services.ExtractEmail(html); email != "" {
		info.Email = email
		info.EmailSource = models.EmailSourceWebsite
	} else if docErr == nil {
		if email := mailtoAddress(doc); email != "" {
			info.Email = email
			info.EmailSource = models.EmailSourceWebsite
		}
	}

	// Explicit tel: links are authoritative; free-text patterns come second.
	if docErr == nil {
		if phone := telNumber(doc); phone != "" {
			info.Phone = phone
		}
	}
	if info.Phone == "" {
		info.Phone = services.ExtractPhone(text)
	}
}

// emailFromListing scans the listing page's own markup with the same
// pattern-plus-denylist approach.
func (en *Enricher) emailFromListing(ctx context.Context) string {
	var html string
	if err := en.engine.q.Evaluate(ctx, `document.documentElement.outerHTML`, &html); err != nil {
		return ""
	}
	return services.ExtractEmail(html)
}

// phoneFromListing reads an explicit tel-link or labeled button from the
// detail panel.
func (en *Enricher) phoneFromListing(ctx context.Context) string {
	root := browser.NodeRef{Selector: "body"}
	raw := en.engine.Extract(ctx, root, panelPhoneStrategies)
	if raw == "" {
		return ""
	}

	var phone string
	if strings.HasPrefix(raw, "tel:") {
		phone = services.CleanTel(raw)
	} else {
		phone = services.CleanPhone(raw)
	}
	if !services.ValidPhone(phone) {
		return ""
	}
	return phone
}

func mailtoAddress(doc *goquery.Document) string {
	email := ""
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if addr := services.CleanMailto(href); addr != "" && services.AllowedEmail(addr) {
			email = addr
			return false
		}
		return true
	})
	return email
}

func telNumber(doc *goquery.Document) string {
	phone := ""
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if num := services.CleanTel(href); services.ValidPhone(num) {
			phone = num
			return false
		}
		return true
	})
	return phone
}
