package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/utils"
)

// Session is the chromedp-backed Querier. Each run owns one Session; the
// contact-enrichment sub-flow opens short-lived secondary tabs off the same
// allocator so it never disturbs the main document's scroll/selection state.
type Session struct {
	cfg    *config.Config
	logger *utils.Logger

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc

	opTimeout time.Duration
}

// NewSession launches a browser and opens the primary tab.
func NewSession(cfg *config.Config, logger *utils.Logger) (*Session, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Debug("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	s := &Session{
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		opTimeout:   10 * time.Second,
	}

	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: install stealth script: %w", err)
	}

	return s, nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

// Navigate loads url in the primary tab and dismisses Google's consent
// dialog if it appears.
func (s *Session) Navigate(ctx context.Context, url string) error {
	base, release := s.runCtx(ctx)
	defer release()
	navCtx, cancel := context.WithTimeout(base, s.cfg.NavTimeout())
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}

	// Consent dismissal is best-effort; most sessions never see the dialog.
	_ = chromedp.Run(navCtx, chromedp.Evaluate(consentScript, nil))
	return nil
}

// WaitVisible blocks until selector is visible or the timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	base, release := s.runCtx(ctx)
	defer release()
	waitCtx, cancel := context.WithTimeout(base, timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("browser: wait for %q: %w", selector, err)
	}
	return nil
}

// FindAll resolves selector and returns one ref per match.
func (s *Session) FindAll(ctx context.Context, selector string) ([]NodeRef, error) {
	var count int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(selector))
	if err := s.Evaluate(ctx, expr, &count); err != nil {
		return nil, err
	}

	refs := make([]NodeRef, count)
	for i := range refs {
		refs[i] = NodeRef{Selector: selector, Index: i}
	}
	return refs, nil
}

type evalResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// ReadText returns the rendered text of the referenced node (or a descendant).
func (s *Session) ReadText(ctx context.Context, ref NodeRef, descendant string) (string, error) {
	expr := fmt.Sprintf(`(function() {
		var n = document.querySelectorAll(%s)[%d];
		%s
		if (!n) return {found: false, value: ''};
		return {found: true, value: (n.innerText || n.textContent || '')};
	})()`, strconv.Quote(ref.Selector), ref.Index, descendantClause(descendant))

	var res evalResult
	if err := s.Evaluate(ctx, expr, &res); err != nil {
		return "", err
	}
	if !res.Found {
		return "", ErrNotFound
	}
	return res.Value, nil
}

// ReadAttribute returns the named attribute of the referenced node.
func (s *Session) ReadAttribute(ctx context.Context, ref NodeRef, descendant, name string) (string, error) {
	expr := fmt.Sprintf(`(function() {
		var n = document.querySelectorAll(%s)[%d];
		%s
		if (!n) return {found: false, value: ''};
		var v = n.getAttribute(%s);
		if (v === null) return {found: false, value: ''};
		return {found: true, value: v};
	})()`, strconv.Quote(ref.Selector), ref.Index, descendantClause(descendant), strconv.Quote(name))

	var res evalResult
	if err := s.Evaluate(ctx, expr, &res); err != nil {
		return "", err
	}
	if !res.Found {
		return "", ErrNotFound
	}
	return res.Value, nil
}

// Click triggers a JS click on the referenced node. A JS click is more
// reliable than a trusted click here because cards can sit outside the
// viewport while the feed is mid-render.
func (s *Session) Click(ctx context.Context, ref NodeRef, descendant string) error {
	expr := fmt.Sprintf(`(function() {
		var n = document.querySelectorAll(%s)[%d];
		%s
		if (!n) return {found: false, value: ''};
		n.scrollIntoView({block: 'center'});
		n.click();
		return {found: true, value: ''};
	})()`, strconv.Quote(ref.Selector), ref.Index, descendantClause(descendant))

	var res evalResult
	if err := s.Evaluate(ctx, expr, &res); err != nil {
		return err
	}
	if !res.Found {
		return ErrNotFound
	}
	return nil
}

// ScrollContainer advances the scroll position of the first selector match.
// A delta of 0 jumps straight to the bottom.
func (s *Session) ScrollContainer(ctx context.Context, selector string, delta int) error {
	expr := fmt.Sprintf(`(function() {
		var n = document.querySelector(%s);
		if (!n) return {found: false, value: ''};
		if (%d === 0) {
			n.scrollTo(0, n.scrollHeight);
		} else {
			n.scrollTop = n.scrollTop + %d;
		}
		return {found: true, value: ''};
	})()`, strconv.Quote(selector), delta, delta)

	var res evalResult
	if err := s.Evaluate(ctx, expr, &res); err != nil {
		return err
	}
	if !res.Found {
		return ErrNotFound
	}
	return nil
}

// Evaluate runs a read-only expression against the whole document.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	base, release := s.runCtx(ctx)
	defer release()
	opCtx, cancel := context.WithTimeout(base, s.opTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("browser: evaluate: %w", err)
	}
	return nil
}

// FetchRendered opens url in a fresh secondary tab, waits briefly for the
// page to settle, and returns the rendered markup and body text. The tab is
// closed before returning. Used by contact enrichment only.
func (s *Session) FetchRendered(ctx context.Context, url string, timeout time.Duration) (html, text string, err error) {
	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	fetchCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		fetchCtx, dcancel = context.WithDeadline(fetchCtx, deadline)
		defer dcancel()
	}

	err = chromedp.Run(fetchCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(utils.Jitter(1000, 2000)),
		chromedp.Evaluate(`document.documentElement.outerHTML`, &html),
		chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text),
	)
	if err != nil {
		return "", "", fmt.Errorf("browser: fetch %s: %w", url, err)
	}
	return html, text, nil
}

// runCtx ties chromedp operations to the caller's cancellation without
// replacing the tab context chromedp needs. The returned release func must be
// called when the operation finishes so the bridging goroutine exits.
func (s *Session) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(s.tabCtx)
	if ctx == nil {
		return merged, cancel
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

func descendantClause(descendant string) string {
	if descendant == "" {
		return ""
	}
	return fmt.Sprintf(`if (n) n = n.querySelector(%s);`, strconv.Quote(descendant))
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
