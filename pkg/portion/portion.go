package portion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/portion/internal/logger"
	"github.com/jmylchreest/portion/pkg/fetcher"
	"github.com/jmylchreest/portion/pkg/ldjson"
	"github.com/jmylchreest/portion/pkg/recipe"
)

// Stage names the step of the page pipeline that failed.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageWrite    Stage = "write"
)

// ErrPanic wraps a panic recovered while processing a page.
var ErrPanic = errors.New("panic during page processing")

// PageError reports a failure on a single page. It never aborts a run.
type PageError struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Sink receives normalized records. output.Sink satisfies it.
type Sink interface {
	Append(ctx context.Context, rec recipe.Record) error
}

// PageStatus is the outcome of one page.
type PageStatus struct {
	URL         string
	Dish        string
	Ingredients int
	Bytes       int
	Duration    time.Duration
	Err         error
}

// OK reports whether the page was written.
func (p PageStatus) OK() bool { return p.Err == nil }

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Pages     []PageStatus
	Succeeded int
	Failed    int
	Started   time.Time
	Elapsed   time.Duration
}

// Runner drives fetch, extraction, normalization and persistence for a list
// of pages.
type Runner struct {
	fetcher fetcher.Fetcher
	sink    Sink
	config  Config
	limiter *rate.Limiter
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New creates a Runner.
func New(f fetcher.Fetcher, sink Sink, opts ...Option) (*Runner, error) {
	if f == nil {
		return nil, errors.New("fetcher is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}

	r := &Runner{fetcher: f, sink: sink, config: cfg}
	if cfg.Delay > 0 {
		r.limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	return r, nil
}

// RunID returns the ID attached to records of this runner.
func (r *Runner) RunID() string {
	return r.config.RunID
}

// Run processes urls sequentially in order. A failing page is logged and
// recorded in the summary; the run continues with the next page. The run
// stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, urls []string) Summary {
	sum := Summary{
		RunID:   r.config.RunID,
		Pages:   make([]PageStatus, 0, len(urls)),
		Started: time.Now(),
	}

	logger.Debug("run starting",
		"run_id", r.config.RunID,
		"pages", len(urls),
		"fetcher", r.fetcher.Type(),
		"servings", r.config.Servings,
		"delay", r.config.Delay)

	for _, url := range urls {
		if err := r.wait(ctx); err != nil {
			logger.WarnContext(ctx, "run cancelled", "remaining", len(urls)-len(sum.Pages), "error", err)
			break
		}

		status := r.process(ctx, url)
		sum.Pages = append(sum.Pages, status)
		if status.OK() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}

	sum.Elapsed = time.Since(sum.Started)
	logger.InfoContext(ctx, "run complete",
		"run_id", sum.RunID,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum
}

func (r *Runner) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

func (r *Runner) process(ctx context.Context, url string) PageStatus {
	log := logger.With("run_id", r.config.RunID, "url", url)

	start := time.Now()
	rec, size, err := r.scrape(ctx, url)
	status := PageStatus{
		URL:      url,
		Bytes:    size,
		Duration: time.Since(start),
		Err:      err,
	}
	if err != nil {
		var pe *PageError
		stage := Stage("")
		if errors.As(err, &pe) {
			stage = pe.Stage
		}
		log.WarnContext(ctx, "page failed", "stage", stage, "error", err)
		return status
	}

	status.Dish = rec.DishName
	status.Ingredients = len(rec.Ingredients)
	log.InfoContext(ctx, "saved",
		"dish", rec.DishName,
		"ingredients", len(rec.Ingredients),
		"duration", status.Duration.Round(time.Millisecond))
	return status
}

// Scrape runs the page pipeline for a single url and returns the record it
// wrote. Errors are *PageError values.
func (r *Runner) Scrape(ctx context.Context, url string) (recipe.Record, error) {
	rec, _, err := r.scrape(ctx, url)
	return rec, err
}

func (r *Runner) scrape(ctx context.Context, url string) (rec recipe.Record, size int, err error) {
	stage := StageFetch
	defer func() {
		if p := recover(); p != nil {
			err = &PageError{URL: url, Stage: stage, Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
	}()

	page, err := r.fetcher.Fetch(ctx, url, r.config.FetchOptions)
	if err != nil {
		return recipe.Record{}, 0, &PageError{URL: url, Stage: stage, Err: err}
	}
	size = len(page.HTML)
	logger.DebugContext(ctx, "page fetched", "url", url, "status", page.StatusCode, "size", size)

	stage = StageExtract
	src, err := ldjson.Extract(page.HTML)
	if err != nil {
		return recipe.Record{}, size, &PageError{URL: url, Stage: stage, Err: err}
	}

	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	rec = recipe.Normalize(src,
		recipe.WithSource(url, fetchedAt),
		recipe.WithServings(r.config.Servings),
		recipe.WithRenderer(r.config.Render),
	)

	stage = StageValidate
	if err := rec.Validate(); err != nil {
		return rec, size, &PageError{URL: url, Stage: stage, Err: err}
	}
	stage = StageWrite
	if err := r.sink.Append(ctx, rec); err != nil {
		return rec, size, &PageError{URL: url, Stage: stage, Err: err}
	}
	return rec, size, nil
}

// Close releases the fetcher.
func (r *Runner) Close() error {
	if r.fetcher != nil {
		return r.fetcher.Close()
	}
	return nil
}
