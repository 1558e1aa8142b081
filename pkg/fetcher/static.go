package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/portion/internal/logger"
)

// StaticFetcher downloads raw HTML with Colly. Pages are not rendered, so
// JSON-LD injected by scripts is invisible to it.
type StaticFetcher struct {
	config Config
}

// NewStatic creates a static fetcher.
func NewStatic(cfg Config) *StaticFetcher {
	return &StaticFetcher{config: withDefaults(cfg)}
}

// Fetch retrieves page content using a fresh collector.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	page := Page{URL: targetURL, FetchedAt: time.Now()}
	if err := ctx.Err(); err != nil {
		return page, err
	}

	collectorOpts := []colly.CollectorOption{
		colly.UserAgent(f.config.UserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	}
	if f.config.MaxBodySize > 0 {
		collectorOpts = append(collectorOpts, colly.MaxBodySize(f.config.MaxBodySize))
	}
	c := colly.NewCollector(collectorOpts...)
	c.SetRequestTimeout(timeoutFor(f.config, opts))

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.ContentType = r.Headers.Get("Content-Type")
		page.HTML = string(r.Body)
		logger.Debug("static fetch response received",
			"url", targetURL,
			"status", r.StatusCode,
			"body_size", len(r.Body))
	})

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if page.Title == "" {
			page.Title = strings.TrimSpace(e.Text)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusBadRequest {
			page.StatusCode = r.StatusCode
			fetchErr = fmt.Errorf("%w: %d", ErrHTTPStatus, r.StatusCode)
			return
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	logger.Debug("static fetch starting", "url", targetURL, "user_agent", f.config.UserAgent)
	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		return page, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return page, fetchErr
	}
	if strings.TrimSpace(page.HTML) == "" {
		return page, ErrEmptyPage
	}
	return page, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return string(ModeStatic)
}
