package gmaps

import (
	"context"
	"time"

	"github.com/AhmedRagabRG/scraper/browser"
)

// fakeQuerier is an in-memory stand-in for the document query capability.
// Lookups key on "<node selector> <descendant>" (or just the node selector
// when the operation targets the node itself); anything absent from the maps
// behaves as not-found.
type fakeQuerier struct {
	texts map[string]string
	attrs map[string]string // "<key>@<attr>"

	findAll   func(selector string) ([]browser.NodeRef, error)
	scrollErr error
	scrolls   int
	evalHTML  string
	evals     int
	clicked   []string
}

func (f *fakeQuerier) key(ref browser.NodeRef, descendant string) string {
	if descendant != "" {
		return ref.Selector + " " + descendant
	}
	return ref.Selector
}

func (f *fakeQuerier) Navigate(ctx context.Context, url string) error { return nil }

func (f *fakeQuerier) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (f *fakeQuerier) FindAll(ctx context.Context, selector string) ([]browser.NodeRef, error) {
	if f.findAll != nil {
		return f.findAll(selector)
	}
	return nil, browser.ErrNotFound
}

func (f *fakeQuerier) ReadText(ctx context.Context, ref browser.NodeRef, descendant string) (string, error) {
	if v, ok := f.texts[f.key(ref, descendant)]; ok {
		return v, nil
	}
	return "", browser.ErrNotFound
}

func (f *fakeQuerier) ReadAttribute(ctx context.Context, ref browser.NodeRef, descendant, name string) (string, error) {
	if v, ok := f.attrs[f.key(ref, descendant)+"@"+name]; ok {
		return v, nil
	}
	return "", browser.ErrNotFound
}

func (f *fakeQuerier) Click(ctx context.Context, ref browser.NodeRef, descendant string) error {
	f.clicked = append(f.clicked, f.key(ref, descendant))
	return nil
}

func (f *fakeQuerier) ScrollContainer(ctx context.Context, selector string, delta int) error {
	f.scrolls++
	return f.scrollErr
}

func (f *fakeQuerier) Evaluate(ctx context.Context, expr string, out any) error {
	f.evals++
	if s, ok := out.(*string); ok {
		*s = f.evalHTML
	}
	return nil
}
