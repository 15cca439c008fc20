package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// opTimeout bounds any single browser operation
	opTimeout = 30 * time.Second
)

// Options configures the Chrome process
type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
}

// Chrome is a Driver backed by a headless (or visible) Chrome via chromedp
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChrome launches Chrome and opens a tab
func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(ua),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug("chromedp", logger.Fields{"detail": fmt.Sprintf(format, args...)})
	}))

	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	logger.Info("Browser started", logger.Fields{
		"headless": opts.Headless,
		"exec":     opts.ExecPath,
	})

	return &Chrome{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

// Navigate loads url and waits for the body to be ready
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, opTimeout, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until selector is visible or timeout elapses
func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := c.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

// SelectByValue picks the option with value in the select element and fires its change event
func (c *Chrome) SelectByValue(ctx context.Context, selector, value string) error {
	var status string
	if err := c.run(ctx, opTimeout, chromedp.Evaluate(selectScript(selector, value), &status)); err != nil {
		return fmt.Errorf("selecting %q in %s: %w", value, selector, err)
	}

	switch status {
	case "ok":
		return nil
	case "missing":
		return fmt.Errorf("selecting %q: %s: %w", value, selector, ErrNotFound)
	default:
		return fmt.Errorf("selecting %q in %s: no option with that value", value, selector)
	}
}

// Click scrolls to selector and clicks it. It returns ErrNotFound when nothing matches.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	var exists bool
	if err := c.run(ctx, opTimeout, chromedp.Evaluate(existsScript(selector), &exists)); err != nil {
		return fmt.Errorf("looking up %s: %w", selector, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", selector, ErrNotFound)
	}

	err := c.run(ctx, 10*time.Second,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

// ClickNested clicks the inner element of selector from page script, for
// controls a native click cannot reach
func (c *Chrome) ClickNested(ctx context.Context, selector, inner string) error {
	var clicked bool
	if err := c.run(ctx, opTimeout, chromedp.Evaluate(clickNestedScript(selector, inner), &clicked)); err != nil {
		return fmt.Errorf("clicking %s %s: %w", selector, inner, err)
	}
	if !clicked {
		return fmt.Errorf("%s %s: %w", selector, inner, ErrNotFound)
	}
	return nil
}

// Rows returns the cell text and links of every row matching selector
func (c *Chrome) Rows(ctx context.Context, selector string) ([]Row, error) {
	var rows []Row
	if err := c.run(ctx, opTimeout, chromedp.Evaluate(rowsScript(selector), &rows)); err != nil {
		return nil, fmt.Errorf("reading rows %s: %w", selector, err)
	}
	return rows, nil
}

// PageSource returns the outer HTML of the current document
func (c *Chrome) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, opTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// Close shuts down the tab and the browser process
func (c *Chrome) Close() error {
	c.cancel()
	c.allocCancel()
	return nil
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func existsScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

func selectScript(selector, value string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return "missing";
	const v = %s;
	if (!Array.from(el.options || []).some(o => o.value === v)) return "no-option";
	el.value = v;
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return "ok";
})()`, jsString(selector), jsString(value))
}

func clickNestedScript(selector, inner string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	const target = el && el.querySelector(%s);
	if (!target) return false;
	target.click();
	return true;
})()`, jsString(selector), jsString(inner))
}

func rowsScript(selector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(tr => ({
	cells: Array.from(tr.querySelectorAll("td")).map(td => ({
		text: (td.innerText || "").trim(),
		hrefs: Array.from(td.querySelectorAll("a[href]")).map(a => a.href)
	}))
}))`, jsString(selector))
}
