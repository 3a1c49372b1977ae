package gmaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/utils"
)

// ScrollLoader inflates a progressively-loading feed until growth converges
// or a target count is reached. There is no explicit result count anywhere in
// the document, so termination is purely observational: the visible-item
// count must hold still across MaxNoChange consecutive polls.
type ScrollLoader struct {
	q      browser.Querier
	logger *utils.Logger

	ItemSelector      string
	ContainerSelector string
	ScrollDelta       int // 0 jumps to the container bottom

	SettleMinMs   int
	SettleMaxMs   int
	MaxNoChange   int
	MaxIters      int
	FallbackTries int
}

// NewScrollLoader returns a loader with the convergence thresholds the
// caller's config dictates.
func NewScrollLoader(q browser.Querier, logger *utils.Logger) *ScrollLoader {
	return &ScrollLoader{
		q:             q,
		logger:        logger,
		SettleMinMs:   1500,
		SettleMaxMs:   3000,
		MaxNoChange:   3,
		MaxIters:      50,
		FallbackTries: 3,
	}
}

// Load scrolls until convergence, the cap, or the iteration ceiling, and
// returns the final visible-item count. Absence of content is not an error:
// a missing container degrades to a whole-document scroll heuristic and then
// reports whatever is visible, possibly zero. Only capability-level failures
// (timeouts, lost browser) come back as errors.
func (s *ScrollLoader) Load(ctx context.Context, cap int) (int, error) {
	previousCount := 0
	noChangeStreak := 0
	fallbackUsed := 0

	for iter := 0; iter < s.MaxIters; iter++ {
		if ctx.Err() != nil {
			s.logger.Debug("[scroll] Cancelled after %d items", previousCount)
			return previousCount, nil
		}

		refs, err := s.q.FindAll(ctx, s.ItemSelector)
		if err != nil {
			if browser.Fatal(err) {
				return previousCount, fmt.Errorf("scroll: count items: %w", err)
			}
			refs = nil
		}
		count := len(refs)

		if cap > 0 && count >= cap {
			s.logger.Debug("[scroll] Cap reached: %d/%d items", count, cap)
			return count, nil
		}

		if err := s.q.ScrollContainer(ctx, s.ContainerSelector, s.ScrollDelta); err != nil {
			if browser.Fatal(err) {
				return count, fmt.Errorf("scroll: advance container: %w", err)
			}
			// Container not identifiable: degrade to scrolling the whole
			// document a few times, then accept whatever is there.
			if !errors.Is(err, browser.ErrNotFound) || fallbackUsed >= s.FallbackTries {
				s.logger.Warn("[scroll] No scrollable container — stopping with %d items", count)
				return count, nil
			}
			fallbackUsed++
			if evalErr := s.q.Evaluate(ctx, `window.scrollTo(0, document.body.scrollHeight)`, nil); evalErr != nil && browser.Fatal(evalErr) {
				return count, fmt.Errorf("scroll: document fallback: %w", evalErr)
			}
		}

		s.settle(ctx)

		if count == previousCount {
			noChangeStreak++
			if noChangeStreak >= s.MaxNoChange {
				s.logger.Debug("[scroll] Converged at %d items after %d polls", count, iter+1)
				return count, nil
			}
		} else {
			noChangeStreak = 0
			previousCount = count
		}
	}

	s.logger.Warn("[scroll] Iteration ceiling hit — stopping with %d items", previousCount)
	return previousCount, nil
}

// settle absorbs lazy-render latency with a randomized delay.
func (s *ScrollLoader) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(utils.Jitter(s.SettleMinMs, s.SettleMaxMs)):
	}
}
