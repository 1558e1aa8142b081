// Package recipe normalizes structured recipe metadata into single-serving
// records ready for persistence.
package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Placeholder values used when the source omits a field.
const (
	UnknownDish           = "Unknown Dish"
	TimeNotAvailable      = "Not Available"
	IngredientsNotFound   = "Ingredients not found"
	DirectionsNotFound    = "Directions not found"
	DefaultYield          = 1
	DefaultTargetServings = 1
)

// Column names of a persisted row, in output order.
const (
	ColumnDishName    = "Dish Name"
	ColumnReadyInTime = "Ready In Time"
	ColumnIngredients = "Ingredients"
	ColumnDirections  = "Directions"
)

// Columns lists the row columns in output order.
var Columns = []string{ColumnDishName, ColumnReadyInTime, ColumnIngredients, ColumnDirections}

// Source is the raw recipe metadata embedded in a page.
// Empty strings mean the field was absent.
type Source struct {
	Name         string
	TotalTime    string
	Yield        string
	Ingredients  []string
	Instructions []string
}

// Record is a normalized recipe. It is not modified after Normalize returns.
type Record struct {
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	DishName    string    `json:"dish_name" yaml:"dish_name" validate:"required"`
	ReadyInTime string    `json:"ready_in_time" yaml:"ready_in_time" validate:"required"`
	Yield       int       `json:"yield" yaml:"yield"`
	Servings    int       `json:"servings" yaml:"servings" validate:"gte=1"`
	Ingredients []string  `json:"ingredients" yaml:"ingredients" validate:"min=1"`
	Directions  []string  `json:"directions" yaml:"directions" validate:"min=1"`
	FetchedAt   time.Time `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}

// Row is the flat tabular form of a Record.
type Row struct {
	DishName    string `json:"Dish Name" yaml:"Dish Name"`
	ReadyInTime string `json:"Ready In Time" yaml:"Ready In Time"`
	Ingredients string `json:"Ingredients" yaml:"Ingredients"`
	Directions  string `json:"Directions" yaml:"Directions"`
}

// Row flattens the record, joining ingredients and directions with newlines.
func (r Record) Row() Row {
	return Row{
		DishName:    r.DishName,
		ReadyInTime: r.ReadyInTime,
		Ingredients: strings.Join(r.Ingredients, "\n"),
		Directions:  strings.Join(r.Directions, "\n"),
	}
}

// Values returns the row cells in Columns order.
func (r Row) Values() []string {
	return []string{r.DishName, r.ReadyInTime, r.Ingredients, r.Directions}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the record carries every column a row needs.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid recipe record: %w", err)
	}
	return nil
}
