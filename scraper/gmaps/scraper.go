package gmaps

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/services"
	"github.com/AhmedRagabRG/scraper/utils"
)

// bareCountPattern accepts strings that are nothing but a number, like the
// "(123)" review chip once its parentheses are gone.
var bareCountPattern = regexp.MustCompile(`^[\d,.]+$`)

// Runner executes one extraction run per call. Each run owns its own browser
// session; the only shared state is configuration, so concurrent runs never
// interfere with each other.
type Runner struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// Result bundles everything a finished run hands back to the job layer.
type Result struct {
	Records  []models.Record
	Summary  models.RunSummary
	Progress models.RunProgress
	Place    *models.PlaceContext
}

// NewRunner creates a Runner.
func NewRunner(cfg *config.Config, logger *utils.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Run executes target to completion. Zero extracted records is a normal
// outcome; only unrecoverable capability failures return an error.
func (r *Runner) Run(ctx context.Context, target models.ExtractionTarget, sink Sink) (*Result, error) {
	session, err := browser.NewSession(r.cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("run: launch browser: %w", err)
	}
	defer session.Close()

	switch target.Kind {
	case models.TargetReview:
		return r.runReviews(ctx, session, target, sink)
	default:
		return r.runBusinesses(ctx, session, target, sink)
	}
}

func (r *Runner) runBusinesses(ctx context.Context, session *browser.Session, target models.ExtractionTarget, sink Sink) (*Result, error) {
	searchURL := searchBaseURL + url.QueryEscape(target.Query) + "?hl=en"
	r.logger.Info("[gmaps] Searching: %s", target.Query)

	err := r.retry.Do(ctx, "navigate-search", func() error {
		if err := session.Navigate(ctx, searchURL); err != nil {
			return err
		}
		return session.WaitVisible(ctx, feedSelector, 15*time.Second)
	})
	if err != nil {
		return nil, fmt.Errorf("run: load search results: %w", err)
	}

	loader := r.newLoader(session)
	loader.ItemSelector = cardSelector
	loader.ContainerSelector = feedSelector

	total, err := loader.Load(ctx, target.Cap)
	if err != nil {
		return nil, fmt.Errorf("run: scroll feed: %w", err)
	}

	engine := NewEngine(session, r.logger)
	enricher := NewEnricher(session, engine, r.logger, r.cfg.WebsiteTimeout())
	pipeline := NewPipeline(r.logger, total, target.Cap, sink)

	if total == 0 {
		r.logger.Warn("[gmaps] No results visible for %q", target.Query)
		return r.finish(pipeline, nil), nil
	}

	cards, err := session.FindAll(ctx, cardSelector)
	if err != nil && browser.Fatal(err) {
		return nil, fmt.Errorf("run: list cards: %w", err)
	}
	r.logger.Info("[gmaps] Extracting %d businesses...", len(cards))

	for i, card := range cards {
		if ctx.Err() != nil || pipeline.Full() {
			break
		}

		rec, ok := r.extractBusiness(ctx, engine, enricher, card)
		if !ok {
			r.logger.Debug("[gmaps] Skipping card %d: no business name", i+1)
			continue
		}

		pipeline.Emit(rec)
		time.Sleep(utils.Jitter(500, 1500))
	}

	return r.finish(pipeline, nil), nil
}

// extractBusiness converts one feed card into a BusinessRecord. Card-level
// fields come first; the detail panel and contact enrichment only run when
// the post-click reconciliation confirms the panel shows this entity.
func (r *Runner) extractBusiness(ctx context.Context, engine *Engine, enricher *Enricher, card browser.NodeRef) (*models.BusinessRecord, bool) {
	name := engine.Extract(ctx, card, cardNameStrategies)
	if name == "" {
		return nil, false
	}

	rec := &models.BusinessRecord{
		Name:        services.NormalizeText(name),
		EmailSource: models.EmailSourceNone,
		ScrapedAt:   time.Now(),
	}

	if label := engine.Extract(ctx, card, cardRatingStrategies); label != "" {
		rec.Rating = services.ParseRating(label)
	}
	if label := engine.Extract(ctx, card, cardReviewCountStrategies); label != "" {
		rec.ReviewCount = parseReviewCount(label)
	}

	if err := engine.q.Click(ctx, card, ""); err != nil {
		r.logger.Debug("[gmaps] Could not open detail panel for %q: %v", rec.Name, err)
		return rec, true
	}
	time.Sleep(utils.Jitter(1500, 2500))

	if !engine.reconcilePanel(ctx, rec.Name) {
		return rec, true
	}

	if website := engine.Extract(ctx, documentRoot, panelWebsiteStrategies); website != "" {
		rec.Website = website
	}
	if address := engine.Extract(ctx, documentRoot, panelAddressStrategies); address != "" {
		rec.Address = services.NormalizeText(address)
	}
	if rec.ReviewCount == nil {
		if body, err := engine.q.ReadText(ctx, documentRoot, ""); err == nil {
			if m := reviewsPattern.FindStringSubmatch(body); m != nil {
				rec.ReviewCount = services.ParseCount(m[1])
			}
		}
	}

	contact := enricher.Enrich(ctx, rec.Website)
	rec.Email = contact.Email
	rec.EmailSource = contact.EmailSource
	rec.Phone = contact.Phone

	if rec.ReviewCount != nil && *rec.ReviewCount > 0 {
		opened := engine.openReviewsPanel(ctx)
		applyStarBreakdown(rec, engine.ExtractStarBreakdown(ctx))
		if opened {
			engine.closeOverlay(ctx)
		}
	}

	return rec, true
}

func (r *Runner) newLoader(session *browser.Session) *ScrollLoader {
	loader := NewScrollLoader(session, r.logger)
	loader.SettleMinMs = r.cfg.ScrollSettleMinMs
	loader.SettleMaxMs = r.cfg.ScrollSettleMaxMs
	loader.MaxNoChange = r.cfg.ScrollMaxNoChange
	loader.MaxIters = r.cfg.ScrollMaxIters
	loader.FallbackTries = r.cfg.ScrollFallbackTries
	return loader
}

func (r *Runner) finish(pipeline *Pipeline, place *models.PlaceContext) *Result {
	summary := pipeline.Finish()
	r.logger.Info("[gmaps] Run complete — %d accepted, %d duplicates removed",
		summary.TotalAccepted, summary.DuplicatesRemoved)
	return &Result{
		Records:  pipeline.Records(),
		Summary:  summary,
		Progress: pipeline.Progress(),
		Place:    place,
	}
}

// parseReviewCount pulls the review total out of whatever string a strategy
// committed: "1,234 reviews", "(1,234)", or a bare number.
func parseReviewCount(raw string) *int {
	if m := reviewsPattern.FindStringSubmatch(raw); m != nil {
		return services.ParseCount(m[1])
	}
	if m := parenPattern.FindStringSubmatch(raw); m != nil {
		return services.ParseCount(m[1])
	}
	if bareCountPattern.MatchString(raw) {
		return services.ParseCount(raw)
	}
	return nil
}
