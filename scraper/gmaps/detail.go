package gmaps

import (
	"context"
	"time"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/services"
)

const (
	panelRetries    = 5
	panelRetryDelay = 500 * time.Millisecond
)

// documentRoot anchors whole-panel strategy lookups.
var documentRoot = browser.NodeRef{Selector: "body"}

// reconcilePanel guards against the race between the UI transition and the
// data read: after a card is clicked, the detail panel may briefly keep
// showing the previous business. It re-reads the panel title until it matches
// the entity's already-known name. On a persistent mismatch the caller must
// keep only the card-level fields rather than risk attributing another
// entity's contact data.
func (e *Engine) reconcilePanel(ctx context.Context, expectedName string) bool {
	want := services.NormalizeIdentity(expectedName)

	for attempt := 0; attempt < panelRetries; attempt++ {
		title := e.Extract(ctx, documentRoot, panelTitleStrategies)
		if title != "" && services.NormalizeIdentity(title) == want {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(panelRetryDelay):
		}
	}

	e.logger.Warn("[detail] Panel never settled on %q — skipping enrichment", expectedName)
	return false
}

// openReviewsPanel clicks through to the reviews view so the star histogram
// renders. Best-effort: the text-scan breakdown tier can still work without it.
func (e *Engine) openReviewsPanel(ctx context.Context) bool {
	for _, st := range reviewsButtonStrategies {
		if st.Selector == "" {
			continue
		}
		if err := e.q.Click(ctx, documentRoot, st.Selector); err == nil {
			e.settleAfterClick(ctx)
			return true
		}
	}
	return false
}

// closeOverlay returns the panel to the overview tab after the star histogram
// was read. Best-effort.
func (e *Engine) closeOverlay(ctx context.Context) {
	_ = e.q.Click(ctx, documentRoot, reviewTabSelector)
	e.settleAfterClick(ctx)
}

func (e *Engine) settleAfterClick(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
}
