package recipe

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/portion/pkg/duration"
	"github.com/jmylchreest/portion/pkg/quantity"
)

// Options controls normalization.
type Options struct {
	// Servings is the number of servings quantities are rescaled to.
	Servings int
	// Render formats scaled quantities. Defaults to quantity.Render.
	Render func(quantity.Quantity) string
	// URL and FetchedAt are copied onto the record.
	URL       string
	FetchedAt time.Time
}

// Option configures Normalize.
type Option func(*Options)

// WithServings rescales to n servings instead of one. Values below 1 are ignored.
func WithServings(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.Servings = n
		}
	}
}

// WithRenderer sets the quantity formatter.
func WithRenderer(render func(quantity.Quantity) string) Option {
	return func(o *Options) {
		if render != nil {
			o.Render = render
		}
	}
}

// WithSource records where the recipe came from.
func WithSource(url string, fetchedAt time.Time) Option {
	return func(o *Options) {
		o.URL = url
		o.FetchedAt = fetchedAt
	}
}

var firstInteger = regexp.MustCompile(`\d+`)

// ParseYield returns the first run of digits in raw, or DefaultYield when
// there is none. Runs too large for an int are clamped to math.MaxInt.
func ParseYield(raw string) int {
	digits := firstInteger.FindString(raw)
	if digits == "" {
		return DefaultYield
	}
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil {
		return DefaultYield
	}
	return n
}

// Normalize builds a Record from src. Every ingredient quantity is divided
// by the recipe yield (and multiplied by the requested servings); lines
// keep their source order. Direction steps are trimmed of surrounding
// whitespace and otherwise kept as given, empty steps included.
func Normalize(src Source, opts ...Option) Record {
	o := Options{
		Servings: DefaultTargetServings,
		Render:   quantity.Render,
	}
	for _, opt := range opts {
		opt(&o)
	}

	name := src.Name
	if name == "" {
		name = UnknownDish
	}

	totalTime := src.TotalTime
	if totalTime == "" {
		totalTime = TimeNotAvailable
	}

	yield := ParseYield(src.Yield)

	ingredients := make([]string, 0, len(src.Ingredients))
	for _, raw := range src.Ingredients {
		line := quantity.Split(raw).ScaleTo(yield, o.Servings)
		ingredients = append(ingredients, line.Format(o.Render))
	}
	if len(ingredients) == 0 {
		ingredients = []string{IngredientsNotFound}
	}

	directions := make([]string, 0, len(src.Instructions))
	for _, step := range src.Instructions {
		directions = append(directions, strings.TrimSpace(step))
	}
	if len(directions) == 0 {
		directions = []string{DirectionsNotFound}
	}

	return Record{
		URL:         o.URL,
		DishName:    name,
		ReadyInTime: duration.Humanize(totalTime),
		Yield:       yield,
		Servings:    o.Servings,
		Ingredients: ingredients,
		Directions:  directions,
		FetchedAt:   o.FetchedAt,
	}
}
