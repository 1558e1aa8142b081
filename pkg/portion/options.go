// Package portion provides the public API for scraping recipe pages and
// persisting single-serving ingredient lists.
package portion

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/portion/pkg/fetcher"
	"github.com/jmylchreest/portion/pkg/quantity"
	"github.com/jmylchreest/portion/pkg/recipe"
)

// Config holds all Runner configuration.
type Config struct {
	// Servings is the number of servings ingredient quantities are scaled to.
	Servings int `validate:"gte=1"`

	// Delay is the minimum spacing between page fetches (0 = no pacing).
	Delay time.Duration `validate:"gte=0"`

	// FetchOptions are passed to every Fetch call.
	FetchOptions fetcher.Options

	// RunID tags every record written during a run.
	RunID string `validate:"required"`

	// Render formats scaled quantities.
	Render func(quantity.Quantity) string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Servings: recipe.DefaultTargetServings,
		RunID:    uuid.NewString(),
		Render:   quantity.Render,
	}
}

// Option configures a Runner.
type Option func(*Config)

// WithServings sets the target number of servings.
func WithServings(n int) Option {
	return func(c *Config) {
		c.Servings = n
	}
}

// WithDelay paces page fetches at most one per d.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
	}
}

// WithFetchOptions sets per-page fetch options.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(c *Config) {
		c.FetchOptions = opts
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(c *Config) {
		c.RunID = id
	}
}

// WithRenderer sets the quantity formatter (quantity.Render or quantity.RenderDecimal).
func WithRenderer(render func(quantity.Quantity) string) Option {
	return func(c *Config) {
		if render != nil {
			c.Render = render
		}
	}
}
