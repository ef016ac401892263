// Package browser implements render-based lead sources on headless Chrome.
// One generic driver handles every site; a Site value holds the only things
// that differ between targets (URLs and selectors).
package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

type sessionConfig struct {
	Headless  bool
	UserAgent string
	Proxy     string
}

// newSession starts a dedicated Chrome context for one Fetch call. The
// returned cancel tears down both the tab and the allocator; callers must
// run it on every path out so no browser outlives its strategy invocation.
func newSession(parent context.Context, cfg sessionConfig) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.Proxy))
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// chromeOps wires the driver to a real Chrome session. Every call is
// bounded by its own timeout so a wedged page cannot stall the whole
// extraction.
func chromeOps() ops {
	return ops{
		newSession: newSession,
		navigate: func(ctx context.Context, url string, timeout time.Duration) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return chromedp.Run(ctx,
				chromedp.Navigate(url),
				chromedp.WaitReady("body", chromedp.ByQuery),
			)
		},
		waitVisible: func(ctx context.Context, sel string, timeout time.Duration) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
		},
		back: func(ctx context.Context, timeout time.Duration) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return chromedp.Run(ctx, chromedp.NavigateBack(), chromedp.WaitReady("body", chromedp.ByQuery))
		},
		evalString: func(ctx context.Context, script string, timeout time.Duration) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			var out string
			if err := chromedp.Run(ctx, chromedp.Evaluate(script, &out)); err != nil {
				return "", err
			}
			return out, nil
		},
		evalInt: func(ctx context.Context, script string, timeout time.Duration) (int, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			var out int
			if err := chromedp.Run(ctx, chromedp.Evaluate(script, &out)); err != nil {
				return 0, err
			}
			return out, nil
		},
	}
}
