package fetcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/portion/internal/logger"
)

// DynamicFetcher renders pages in headless Chrome via chromedp.
// One browser lives for the fetcher's lifetime; every Fetch opens its own
// tab and closes it before returning.
type DynamicFetcher struct {
	config        Config
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewDynamic creates a dynamic fetcher. The browser starts lazily on the
// first Fetch.
func NewDynamic(cfg Config) (*DynamicFetcher, error) {
	cfg = withDefaults(cfg)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	logger.Debug("dynamic fetcher created",
		"chrome", chromePath,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:        cfg,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}, nil
}

// start launches the browser. Tabs created before the browser exists would
// each allocate a browser of their own.
func (f *DynamicFetcher) start() error {
	f.startOnce.Do(func() {
		f.startErr = chromedp.Run(f.browserCtx)
		if f.startErr != nil {
			f.startErr = fmt.Errorf("failed to start browser: %w", f.startErr)
		}
	})
	return f.startErr
}

// Fetch navigates a fresh tab to targetURL and returns the rendered HTML.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	page := Page{URL: targetURL, FetchedAt: time.Now()}
	if err := ctx.Err(); err != nil {
		return page, err
	}
	if err := f.start(); err != nil {
		return page, err
	}

	tabCtx, closeTab := chromedp.NewContext(f.browserCtx)
	defer closeTab()

	// Tie the tab to the caller's context as well as the timeout.
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	timeout := timeoutFor(f.config, opts)
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	waitSelector := "body"
	if opts.WaitForSelector != "" {
		waitSelector = opts.WaitForSelector
	}

	var html, title string
	actions := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(waitSelector),
	}
	if opts.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(opts.WaitDuration))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	)

	logger.Debug("dynamic fetch starting",
		"url", targetURL,
		"wait_selector", waitSelector,
		"wait", opts.WaitDuration,
		"timeout", timeout)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return page, ctx.Err()
		}
		return page, fmt.Errorf("browser automation failed: %w", err)
	}

	page.HTML = html
	page.Title = strings.TrimSpace(title)
	page.StatusCode = 200 // chromedp doesn't easily expose status codes

	if challenge := detectChallengePage(title, html); challenge != "" {
		logger.Warn("challenge page detected", "url", targetURL, "type", challenge)
		return page, fmt.Errorf("%w: %s", ErrAntiBot, challenge)
	}
	if strings.TrimSpace(html) == "" {
		return page, ErrEmptyPage
	}

	logger.Debug("dynamic fetch complete", "url", targetURL, "title", page.Title, "html_size", len(html))
	return page, nil
}

// detectChallengePage reports the kind of challenge page served, if any.
func detectChallengePage(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	switch {
	case strings.Contains(titleLower, "just a moment"),
		strings.Contains(titleLower, "attention required"),
		strings.Contains(htmlLower, "cf_chl_opt"):
		return "cloudflare"
	case strings.Contains(htmlLower, "challenges.cloudflare.com/turnstile"):
		return "cloudflare-turnstile"
	case strings.Contains(htmlLower, "hcaptcha.com"):
		return "hcaptcha"
	case strings.Contains(htmlLower, "google.com/recaptcha"):
		return "recaptcha"
	case strings.Contains(titleLower, "access denied"),
		strings.Contains(htmlLower, "robot or human"):
		return "anti-bot"
	}
	return ""
}

// Close shuts the browser down.
func (f *DynamicFetcher) Close() error {
	if f.cancelBrowser != nil {
		f.cancelBrowser()
	}
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return string(ModeDynamic)
}

// chromeCandidates are probed in order when no explicit path is configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
}

// FindChromePath returns the first Chrome or Chromium binary found, or "".
// CHROME_PATH takes precedence.
func FindChromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, candidate := range chromeCandidates {
		if strings.HasPrefix(candidate, "/") {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			continue
		}
		if p, err := exec.LookPath(candidate); err == nil {
			return p
		}
	}
	return ""
}
