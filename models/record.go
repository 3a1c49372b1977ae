package models

import (
	"fmt"
	"time"
)

// TargetKind selects which entity type a run extracts.
type TargetKind string

const (
	TargetBusiness TargetKind = "business"
	TargetReview   TargetKind = "review"
)

// EmailSource records which enrichment tier produced a business email.
type EmailSource string

const (
	EmailSourceWebsite EmailSource = "website"
	EmailSourceListing EmailSource = "listing_page"
	EmailSourceNone    EmailSource = "none"
)

// ExtractionTarget describes one extraction run. Immutable once created.
type ExtractionTarget struct {
	Kind  TargetKind
	Query string // search query (business mode) or place URL (review mode)
	Cap   int    // maximum records to extract; 0 means all available
}

// Record is the unit emitted by the streaming pipeline. Identity and Snippet
// feed the run-scoped fingerprint deduplicator.
type Record interface {
	Identity() string
	Snippet() string
}

// BusinessRecord holds one extracted business listing. Fields are filled
// incrementally as extraction strategies succeed and frozen once emitted;
// nil pointers mean the field could not be extracted.
type BusinessRecord struct {
	Name        string      `json:"business_name"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount *int        `json:"review_count,omitempty"`
	FiveStar    *int        `json:"five_star,omitempty"`
	FourStar    *int        `json:"four_star,omitempty"`
	ThreeStar   *int        `json:"three_star,omitempty"`
	TwoStar     *int        `json:"two_star,omitempty"`
	OneStar     *int        `json:"one_star,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Email       string      `json:"email,omitempty"`
	EmailSource EmailSource `json:"email_source"`
	Website     string      `json:"website,omitempty"`
	Address     string      `json:"address,omitempty"`
	ScrapedAt   time.Time   `json:"scraped_at"`
}

func (b *BusinessRecord) Identity() string { return b.Name }
func (b *BusinessRecord) Snippet() string  { return b.Address }

// ReviewRecord holds one extracted review. CompanyReply is the owner's reply
// text, empty when the business did not respond.
type ReviewRecord struct {
	ReviewerName string    `json:"reviewer_name,omitempty"`
	DateText     string    `json:"review_date,omitempty"`
	Rating       *int      `json:"rating,omitempty"`
	Text         string    `json:"review_text,omitempty"`
	HasPictures  bool      `json:"has_pictures"`
	CompanyReply string    `json:"company_reply,omitempty"`
	Permalink    string    `json:"review_permalink,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

func (r *ReviewRecord) Identity() string { return r.ReviewerName }
func (r *ReviewRecord) Snippet() string  { return r.Text }

// PlaceContext identifies the place a review run was executed against. It is
// attached once per run, not duplicated into each record.
type PlaceContext struct {
	PlaceName string `json:"place_name,omitempty"`
	PlaceURL  string `json:"place_url"`
}

// RunProgress is threaded through the pipeline and handed to the sink on each
// emission. Extracted never decreases and Accepted never exceeds it.
type RunProgress struct {
	Extracted     int
	Accepted      int
	ExpectedTotal int
	Cap           int
}

// String renders a human-readable progress line for job status.
func (p RunProgress) String() string {
	if p.ExpectedTotal > 0 {
		return fmt.Sprintf("%d/%d extracted, %d accepted", p.Extracted, p.ExpectedTotal, p.Accepted)
	}
	return fmt.Sprintf("%d extracted, %d accepted", p.Extracted, p.Accepted)
}

// RunSummary is the terminal summary emitted exactly once per run.
type RunSummary struct {
	TotalAccepted     int
	DuplicatesRemoved int
}
