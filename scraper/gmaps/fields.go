package gmaps

import (
	"context"
	"regexp"
	"strings"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/utils"
)

// StrategyKind selects how a single extraction strategy obtains its value.
type StrategyKind int

const (
	// StrategyAttr reads a named attribute from the matched element.
	StrategyAttr StrategyKind = iota
	// StrategyText reads the rendered text of the matched element.
	StrategyText
	// StrategyRegex matches a pattern against the entity node's full rendered
	// text and returns the first capture group (or the whole match).
	StrategyRegex
)

// Strategy is one declarative way of locating a field's value. Strategies are
// configuration, not control flow: the tables in locators.go are the only
// place expected to change when Google reshuffles its markup.
type Strategy struct {
	Kind     StrategyKind
	Selector string // descendant descriptor under the entity node; "" = the node itself
	Attr     string
	Pattern  *regexp.Regexp
}

// Engine evaluates ranked strategy lists against rendered entity nodes.
type Engine struct {
	q      browser.Querier
	logger *utils.Logger
}

// NewEngine creates an extraction engine over the given query capability.
func NewEngine(q browser.Querier, logger *utils.Logger) *Engine {
	return &Engine{q: q, logger: logger}
}

// Extract tries each strategy strictly in order and commits the first
// non-empty post-trim value. A strategy that errors (element missing,
// capability hiccup) counts as "no value"; nothing propagates from here.
func (e *Engine) Extract(ctx context.Context, node browser.NodeRef, strategies []Strategy) string {
	for _, st := range strategies {
		value, err := e.apply(ctx, node, st)
		if err != nil {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

func (e *Engine) apply(ctx context.Context, node browser.NodeRef, st Strategy) (string, error) {
	switch st.Kind {
	case StrategyAttr:
		return e.q.ReadAttribute(ctx, node, st.Selector, st.Attr)
	case StrategyText:
		return e.q.ReadText(ctx, node, st.Selector)
	case StrategyRegex:
		text, err := e.q.ReadText(ctx, node, st.Selector)
		if err != nil {
			return "", err
		}
		match := st.Pattern.FindStringSubmatch(text)
		if match == nil {
			return "", nil
		}
		if len(match) > 1 {
			return match[1], nil
		}
		return match[0], nil
	}
	return "", nil
}

// Exists reports whether any strategy in the list resolves to a present
// element, without caring about its value. Used for boolean fields such as
// "review has photos".
func (e *Engine) Exists(ctx context.Context, node browser.NodeRef, strategies []Strategy) bool {
	for _, st := range strategies {
		if _, err := e.apply(ctx, node, st); err == nil {
			return true
		}
	}
	return false
}
