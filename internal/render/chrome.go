package render

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultSettle is how long script-driven pages get to finish
	// rendering after navigation or interaction.
	DefaultSettle = 2 * time.Second
	// DefaultPageTimeout bounds a single navigation; a page that exceeds
	// it fails that item only.
	DefaultPageTimeout = 60 * time.Second
)

// autoScroll steps the viewport down in increments so lazy lists keep
// appending items, mirroring how a reader would reach the bottom.
const autoScroll = `new Promise((resolve) => {
	let total = 0;
	const distance = 600;
	const timer = setInterval(() => {
		const height = document.body.scrollHeight;
		window.scrollBy(0, distance);
		total += distance;
		if (total >= height - 800) {
			clearInterval(timer);
			resolve(true);
		}
	}, 300);
})`

func chromeExecutablePath() string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, _ := exec.LookPath(name); path != "" {
			return path
		}
	}
	return ""
}

// Chrome renders pages in a headless browser session. One session is shared
// across listing traversal and detail fetches.
type Chrome struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	settle        time.Duration
	pageTimeout   time.Duration
}

// NewChrome starts a headless browser. Close must be called to shut it
// down.
func NewChrome(parent context.Context) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if path := chromeExecutablePath(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Chrome{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		settle:        DefaultSettle,
		pageTimeout:   DefaultPageTimeout,
	}, nil
}

func (c *Chrome) Fetch(ctx context.Context, url string, policy Policy) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(c.browserCtx, c.pageTimeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if policy == WaitNetworkIdle {
		actions = append(actions, chromedp.Sleep(c.settle))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	return &Content{URL: url, HTML: html}, nil
}

func (c *Chrome) ScrollToBottom(ctx context.Context) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(c.browserCtx, c.pageTimeout)
	defer cancel()

	var html, url string
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(autoScroll, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.Sleep(c.settle),
		chromedp.Location(&url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("scrolling: %w", err)
	}
	return &Content{URL: url, HTML: html}, nil
}

func (c *Chrome) ClickNext(ctx context.Context, selector string) (*Content, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	runCtx, cancel := context.WithTimeout(c.browserCtx, c.pageTimeout)
	defer cancel()

	probe := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return !!(el && el.getAttribute("aria-disabled") !== "true" && !el.disabled); })()`,
		selector)

	var enabled bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(probe, &enabled)); err != nil {
		return nil, false, fmt.Errorf("probing next control: %w", err)
	}
	if !enabled {
		return nil, false, nil
	}

	var html, url string
	err := chromedp.Run(runCtx,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Sleep(c.settle),
		chromedp.Location(&url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, false, fmt.Errorf("clicking next control: %w", err)
	}
	return &Content{URL: url, HTML: html}, true, nil
}

func (c *Chrome) Close() error {
	c.cancelBrowser()
	c.cancelAlloc()
	return nil
}
