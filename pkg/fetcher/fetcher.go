// Package fetcher retrieves recipe pages. Static fetching uses a plain HTTP
// collector; dynamic fetching renders the page in headless Chrome first.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the page at url. Any per-page browser or connection
	// state is released before Fetch returns.
	Fetch(ctx context.Context, url string, opts Options) (Page, error)

	// Close releases long-lived resources such as the browser process.
	Close() error

	// Type returns "static" or "dynamic".
	Type() string
}

// Mode selects a Fetcher implementation.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

// Config holds settings shared by every fetch of a Fetcher.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int    // bytes, 0 = collector default (static only)
	ChromePath  string // explicit browser binary (dynamic only)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Chrome user agent; recipe sites commonly serve reduced markup to unknown clients.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options controls a single fetch.
type Options struct {
	Timeout         time.Duration     // overrides Config.Timeout when set
	WaitForSelector string            // CSS selector to wait for (dynamic only)
	WaitDuration    time.Duration     // settle time after load (dynamic only)
	Headers         map[string]string // extra request headers (static only)
}

// Page is a fetched document.
type Page struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing failure reasons.
var (
	// ErrHTTPStatus indicates the server answered with a non-success status.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrEmptyPage indicates the response carried no document.
	ErrEmptyPage = errors.New("empty page")
	// ErrAntiBot indicates a challenge or CAPTCHA page was served instead of content.
	ErrAntiBot = errors.New("anti-bot protection detected")
)

// New creates a Fetcher for mode.
func New(mode Mode, cfg Config) (Fetcher, error) {
	switch mode {
	case ModeStatic, "":
		return NewStatic(cfg), nil
	case ModeDynamic:
		return NewDynamic(cfg)
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", mode)
	}
}

func withDefaults(cfg Config) Config {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return cfg
}

func timeoutFor(cfg Config, opts Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return cfg.Timeout
}
