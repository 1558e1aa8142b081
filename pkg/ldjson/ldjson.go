// Package ldjson locates schema.org Recipe metadata in the JSON-LD blocks of
// an HTML page.
package ldjson

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/jmylchreest/portion/internal/logger"
	"github.com/jmylchreest/portion/pkg/recipe"
)

// ErrNotFound is returned when a page has no usable JSON-LD block.
var ErrNotFound = errors.New("json-ld recipe data not found")

const scriptSelector = `script[type="application/ld+json"]`

// Extract finds the recipe described by the page's JSON-LD blocks.
// The first node typed Recipe wins, searching top-level objects, arrays and
// @graph containers. When no node is typed Recipe, the first object of the
// first valid block is used.
func Extract(page string) (recipe.Source, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return recipe.Source{}, fmt.Errorf("failed to parse html: %w", err)
	}

	var fallback gjson.Result
	var found bool
	var node gjson.Result

	doc.Find(scriptSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if !gjson.Valid(raw) {
			logger.Debug("skipping invalid json-ld block", "index", i, "size", len(raw))
			return true
		}
		block := gjson.Parse(raw)
		if n, ok := findRecipe(block); ok {
			node, found = n, true
			return false
		}
		if !fallback.Exists() {
			fallback = firstObject(block)
		}
		return true
	})

	if !found {
		if !fallback.Exists() {
			return recipe.Source{}, ErrNotFound
		}
		logger.Debug("no Recipe node in json-ld, using first object")
		node = fallback
	}

	return decode(node), nil
}

// findRecipe walks v depth-first for an object whose @type names Recipe.
func findRecipe(v gjson.Result) (gjson.Result, bool) {
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if n, ok := findRecipe(item); ok {
				return n, true
			}
		}
	case v.IsObject():
		fields := v.Map()
		if isRecipeType(fields["@type"]) {
			return v, true
		}
		if graph, ok := fields["@graph"]; ok {
			return findRecipe(graph)
		}
	}
	return gjson.Result{}, false
}

func isRecipeType(t gjson.Result) bool {
	if t.IsArray() {
		for _, item := range t.Array() {
			if isRecipeType(item) {
				return true
			}
		}
		return false
	}
	name := t.String()
	return name == "Recipe" || strings.HasSuffix(name, "/Recipe")
}

func firstObject(v gjson.Result) gjson.Result {
	if v.IsObject() {
		return v
	}
	if v.IsArray() {
		for _, item := range v.Array() {
			if item.IsObject() {
				return item
			}
		}
	}
	return gjson.Result{}
}

func decode(node gjson.Result) recipe.Source {
	fields := node.Map()

	ingredients := fields["recipeIngredient"]
	if !ingredients.Exists() {
		ingredients = fields["ingredients"]
	}

	return recipe.Source{
		Name:         text(fields["name"]),
		TotalTime:    strings.TrimSpace(fields["totalTime"].String()),
		Yield:        yieldText(fields["recipeYield"]),
		Ingredients:  stringList(ingredients),
		Instructions: instructions(fields["recipeInstructions"]),
	}
}

// yieldText flattens a yield given as a string, a number or a list of those.
func yieldText(v gjson.Result) string {
	if v.IsArray() {
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, " ")
	}
	if v.Type == gjson.Number {
		return v.Raw
	}
	return v.String()
}

func stringList(v gjson.Result) []string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		return []string{text(v)}
	}
	out := make([]string, 0, len(v.Array()))
	for _, item := range v.Array() {
		out = append(out, text(item))
	}
	return out
}

// instructions flattens recipeInstructions. Each step may be a plain
// string, a HowToStep with a text field, or a HowToSection whose
// itemListElement holds further steps.
func instructions(v gjson.Result) []string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type == gjson.String {
		return []string{text(v)}
	}

	var steps []string
	var walk func(gjson.Result)
	walk = func(item gjson.Result) {
		switch {
		case item.IsArray():
			for _, child := range item.Array() {
				walk(child)
			}
		case item.IsObject():
			fields := item.Map()
			if list, ok := fields["itemListElement"]; ok {
				walk(list)
				return
			}
			steps = append(steps, text(fields["text"]))
		default:
			steps = append(steps, text(item))
		}
	}
	walk(v)
	return steps
}

// text returns v as a trimmed string with HTML entities decoded.
func text(v gjson.Result) string {
	return strings.TrimSpace(html.UnescapeString(v.String()))
}
