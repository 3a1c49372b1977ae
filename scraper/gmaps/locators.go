package gmaps

import "regexp"

// Ranked field locators for the Google Maps rendered document. Selector
// strings here are the single most fragile part of the system; everything
// else treats them as opaque configuration.

const (
	searchBaseURL = "https://www.google.com/maps/search/"

	feedSelector       = `div[role="feed"]`
	cardSelector       = `div[role="feed"] div[role="article"]`
	reviewFeedSelector = `div[role="feed"]:has(div[data-review-id])`
	reviewSelector     = `div[data-review-id]`
	reviewTabSelector  = `button[role="tab"]`
)

var (
	ratingPattern  = regexp.MustCompile(`(?i)([\d.,]+)\s*stars?`)
	reviewsPattern = regexp.MustCompile(`(?i)([\d,.]+)\s*reviews?`)
	parenPattern   = regexp.MustCompile(`\(([\d,.]+)\)`)
)

// Business card fields, read while the card sits in the results feed.
var (
	cardNameStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `a[aria-label]`, Attr: "aria-label"},
		{Kind: StrategyText, Selector: `div.qBF1Pd`},
		{Kind: StrategyText, Selector: `div.fontHeadlineSmall`},
	}

	cardRatingStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `span[role="img"]`, Attr: "aria-label"},
		{Kind: StrategyText, Selector: `span.MW4etd`},
	}

	cardReviewCountStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `span[role="img"]`, Attr: "aria-label"},
		{Kind: StrategyText, Selector: `span.UY7F9`},
		{Kind: StrategyRegex, Pattern: parenPattern},
		{Kind: StrategyRegex, Pattern: reviewsPattern},
	}
)

// Detail panel fields, read after a card has been selected.
var (
	panelTitleStrategies = []Strategy{
		{Kind: StrategyText, Selector: `h1.DUwDvf`},
		{Kind: StrategyText, Selector: `h1[class*="fontHeadline"]`},
		{Kind: StrategyText, Selector: `div[role="main"] h1`},
		{Kind: StrategyText, Selector: `h1`},
	}

	panelWebsiteStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `a[data-item-id="authority"]`, Attr: "href"},
		{Kind: StrategyAttr, Selector: `a[data-tooltip="Open website"]`, Attr: "href"},
		{Kind: StrategyAttr, Selector: `a[aria-label^="Website"]`, Attr: "href"},
	}

	panelPhoneStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `a[href^="tel:"]`, Attr: "href"},
		{Kind: StrategyText, Selector: `button[data-tooltip="Copy phone number"]`},
		{Kind: StrategyText, Selector: `button[data-item-id^="phone"]`},
		{Kind: StrategyText, Selector: `button[aria-label*="Phone"]`},
	}

	panelAddressStrategies = []Strategy{
		{Kind: StrategyText, Selector: `button[data-item-id="address"]`},
		{Kind: StrategyText, Selector: `button[data-tooltip="Copy address"]`},
		{Kind: StrategyText, Selector: `button[aria-label*="Address"]`},
	}

	reviewsButtonStrategies = []Strategy{
		{Kind: StrategyText, Selector: `button[jsaction*="pane.rating"]`},
		{Kind: StrategyText, Selector: `button[aria-label*="reviews"]`},
		{Kind: StrategyText, Selector: `button[aria-label*="Reviews"]`},
		{Kind: StrategyText, Selector: `div.F7nice button`},
	}
)

// Review node fields.
var (
	reviewerNameStrategies = []Strategy{
		{Kind: StrategyText, Selector: `div.d4r55`},
		{Kind: StrategyAttr, Selector: `button[aria-label]`, Attr: "aria-label"},
		{Kind: StrategyText, Selector: `div.WNxzHc span`},
	}

	reviewDateStrategies = []Strategy{
		{Kind: StrategyText, Selector: `span.rsqaWe`},
		{Kind: StrategyText, Selector: `span.xRkPPb`},
	}

	reviewRatingStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `span[role="img"]`, Attr: "aria-label"},
		{Kind: StrategyAttr, Selector: `span[aria-label*="star"]`, Attr: "aria-label"},
	}

	reviewTextStrategies = []Strategy{
		{Kind: StrategyText, Selector: `span.wiI7pd`},
		{Kind: StrategyText, Selector: `div.MyEned span`},
	}

	reviewReplyStrategies = []Strategy{
		{Kind: StrategyText, Selector: `div.CDe7pd`},
		{Kind: StrategyText, Selector: `div[aria-label*="Response from"]`},
	}

	reviewPhotoStrategies = []Strategy{
		{Kind: StrategyAttr, Selector: `button[aria-label*="photo"]`, Attr: "aria-label"},
		{Kind: StrategyAttr, Selector: `img[src*="googleusercontent"]`, Attr: "src"},
	}

	reviewMoreButtonSelector = `button[aria-label="See more"], button[jsaction*="review.expandReview"], button.w8nwRe`
)
