package gmaps

import (
	"context"
	"testing"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/utils"
)

func newTestLoader(q browser.Querier) *ScrollLoader {
	loader := NewScrollLoader(q, utils.NewLogger())
	loader.ItemSelector = "li.item"
	loader.ContainerSelector = "div.feed"
	loader.SettleMinMs = 0
	loader.SettleMaxMs = 1
	return loader
}

// growth is a canned visible-count sequence: each FindAll call reports the
// next count, and the last value repeats forever.
func growth(counts ...int) func(string) ([]browser.NodeRef, error) {
	call := 0
	return func(string) ([]browser.NodeRef, error) {
		idx := call
		if idx >= len(counts) {
			idx = len(counts) - 1
		}
		call++
		refs := make([]browser.NodeRef, counts[idx])
		for i := range refs {
			refs[i] = browser.NodeRef{Selector: "li.item", Index: i}
		}
		return refs, nil
	}
}

func TestLoadConvergesWhenGrowthStops(t *testing.T) {
	q := &fakeQuerier{findAll: growth(5, 10, 15, 15, 15, 15)}
	loader := newTestLoader(q)

	got, err := loader.Load(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 15 {
		t.Errorf("Load = %d; want 15", got)
	}
}

func TestLoadStopsAtCapWithoutExtraPolls(t *testing.T) {
	q := &fakeQuerier{findAll: growth(5, 10, 20, 40)}
	loader := newTestLoader(q)

	got, err := loader.Load(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 10 {
		t.Errorf("Load = %d; want at least the cap of 10", got)
	}
	// The cap check runs before each scroll, so at most the polls needed to
	// reach 10 items happened: counts 5 then 10, i.e. one scroll.
	if q.scrolls > 2 {
		t.Errorf("scrolled %d times after cap; want <= 2", q.scrolls)
	}
}

func TestLoadZeroItemsTerminates(t *testing.T) {
	q := &fakeQuerier{findAll: growth(0)}
	loader := newTestLoader(q)

	got, err := loader.Load(context.Background(), 0)
	if err != nil {
		t.Fatalf("zero items should not be an error, got %v", err)
	}
	if got != 0 {
		t.Errorf("Load = %d; want 0", got)
	}
}

func TestLoadMissingContainerUsesBoundedFallback(t *testing.T) {
	q := &fakeQuerier{
		findAll:   growth(3),
		scrollErr: browser.ErrNotFound,
	}
	loader := newTestLoader(q)
	loader.FallbackTries = 2

	got, err := loader.Load(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("Load = %d; want the 3 visible items", got)
	}
	if q.evals > loader.FallbackTries {
		t.Errorf("document fallback ran %d times; bounded at %d", q.evals, loader.FallbackTries)
	}
}

func TestLoadCancelledContextReturnsPartialCount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	call := 0
	q := &fakeQuerier{}
	q.findAll = func(string) ([]browser.NodeRef, error) {
		call++
		if call == 2 {
			cancel()
		}
		return make([]browser.NodeRef, call*5), nil
	}
	loader := newTestLoader(q)

	got, err := loader.Load(ctx, 0)
	if err != nil {
		t.Fatalf("cancellation should yield partial results without error, got %v", err)
	}
	if got == 0 {
		t.Error("expected a partial count after cancellation")
	}
}

func TestLoadIterationCeiling(t *testing.T) {
	// Count grows forever; the ceiling must stop the loop anyway.
	call := 0
	q := &fakeQuerier{}
	q.findAll = func(string) ([]browser.NodeRef, error) {
		call++
		return make([]browser.NodeRef, call), nil
	}
	loader := newTestLoader(q)
	loader.MaxIters = 5

	if _, err := loader.Load(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call > loader.MaxIters {
		t.Errorf("polled %d times; ceiling is %d", call, loader.MaxIters)
	}
}
