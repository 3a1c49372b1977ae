package gmaps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/services"
	"github.com/AhmedRagabRG/scraper/utils"
)

func (r *Runner) runReviews(ctx context.Context, session *browser.Session, target models.ExtractionTarget, sink Sink) (*Result, error) {
	placeURL := withEnglishLocale(target.Query)
	r.logger.Info("[gmaps] Loading place: %s", placeURL)

	err := r.retry.Do(ctx, "navigate-place", func() error {
		if err := session.Navigate(ctx, placeURL); err != nil {
			return err
		}
		return session.WaitVisible(ctx, `h1`, 15*time.Second)
	})
	if err != nil {
		return nil, fmt.Errorf("run: load place: %w", err)
	}

	engine := NewEngine(session, r.logger)

	place := &models.PlaceContext{PlaceURL: target.Query}
	if name := engine.Extract(ctx, documentRoot, panelTitleStrategies); name != "" {
		place.PlaceName = services.NormalizeText(name)
	}

	if !r.openReviewsTab(ctx, session, engine) {
		r.logger.Warn("[gmaps] Could not open reviews tab — extracting whatever is visible")
	}

	loader := r.newLoader(session)
	loader.ItemSelector = reviewSelector
	loader.ContainerSelector = reviewFeedSelector
	loader.ScrollDelta = 800

	total, err := loader.Load(ctx, target.Cap)
	if err != nil {
		return nil, fmt.Errorf("run: scroll reviews: %w", err)
	}

	pipeline := NewPipeline(r.logger, total, target.Cap, sink)
	if total == 0 {
		r.logger.Warn("[gmaps] No reviews visible for %s", place.PlaceURL)
		return r.finish(pipeline, place), nil
	}

	nodes, err := session.FindAll(ctx, reviewSelector)
	if err != nil && browser.Fatal(err) {
		return nil, fmt.Errorf("run: list reviews: %w", err)
	}
	r.logger.Info("[gmaps] Extracting %d reviews for %q...", len(nodes), place.PlaceName)

	for i, node := range nodes {
		if ctx.Err() != nil || pipeline.Full() {
			break
		}

		rec, ok := r.extractReview(ctx, engine, node, place)
		if !ok {
			r.logger.Debug("[gmaps] Skipping review %d: no reviewer name", i+1)
			continue
		}

		pipeline.Emit(rec)
		time.Sleep(utils.Jitter(300, 800))
	}

	return r.finish(pipeline, place), nil
}

// openReviewsTab finds the Reviews tab among the role="tab" buttons. When no
// tab advertises itself, the second tab is clicked positionally — that is
// where the presentation has kept reviews through every redesign so far.
func (r *Runner) openReviewsTab(ctx context.Context, session *browser.Session, engine *Engine) bool {
	tabs, err := session.FindAll(ctx, reviewTabSelector)
	if err != nil || len(tabs) == 0 {
		return false
	}

	for _, tab := range tabs {
		text, _ := session.ReadText(ctx, tab, "")
		aria, _ := session.ReadAttribute(ctx, tab, "", "aria-label")
		combined := strings.ToLower(text + " " + aria)
		if strings.Contains(combined, "review") {
			if err := session.Click(ctx, tab, ""); err == nil {
				engine.settleAfterClick(ctx)
				return true
			}
		}
	}

	if len(tabs) > 1 {
		if err := session.Click(ctx, tabs[1], ""); err == nil {
			engine.settleAfterClick(ctx)
			return true
		}
	}
	return false
}

// extractReview converts one review node into a ReviewRecord.
func (r *Runner) extractReview(ctx context.Context, engine *Engine, node browser.NodeRef, place *models.PlaceContext) (*models.ReviewRecord, bool) {
	// Expand truncated review text first; harmless when absent.
	if err := engine.q.Click(ctx, node, reviewMoreButtonSelector); err == nil {
		time.Sleep(300 * time.Millisecond)
	}

	name := engine.Extract(ctx, node, reviewerNameStrategies)
	if name == "" {
		return nil, false
	}

	rec := &models.ReviewRecord{
		ReviewerName: services.NormalizeText(name),
		ScrapedAt:    time.Now(),
	}

	if label := engine.Extract(ctx, node, reviewRatingStrategies); label != "" {
		rec.Rating = services.ParseStars(label)
	}
	rec.DateText = services.NormalizeText(engine.Extract(ctx, node, reviewDateStrategies))
	rec.Text = strings.TrimSpace(engine.Extract(ctx, node, reviewTextStrategies))
	rec.HasPictures = engine.Exists(ctx, node, reviewPhotoStrategies)

	if reply := engine.Extract(ctx, node, reviewReplyStrategies); reply != "" {
		rec.CompanyReply = strings.TrimSpace(reply)
	}

	if id, err := engine.q.ReadAttribute(ctx, node, "", "data-review-id"); err == nil && id != "" {
		rec.Permalink = reviewPermalink(place.PlaceURL, id)
	}

	return rec, true
}

// reviewPermalink anchors a review to its place URL by review id.
func reviewPermalink(placeURL, reviewID string) string {
	sep := "?"
	if strings.Contains(placeURL, "?") {
		sep = "&"
	}
	return placeURL + sep + "review_id=" + reviewID
}

// withEnglishLocale forces English rendering so the date/label heuristics see
// predictable text.
func withEnglishLocale(raw string) string {
	if strings.Contains(raw, "hl=") {
		return raw
	}
	if strings.Contains(raw, "?") {
		return raw + "&hl=en"
	}
	return raw + "?hl=en"
}
