package scraper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SchemaOrgScraper reads schema.org Recipe data, preferring JSON-LD and
// falling back to microdata.
type SchemaOrgScraper struct{}

func NewSchemaOrgScraper() *SchemaOrgScraper {
	return &SchemaOrgScraper{}
}

func (s *SchemaOrgScraper) Scrape(doc, sourceURL string) (*Page, error) {
	d, err := loadHTML(doc)
	if err != nil {
		return nil, err
	}

	page := fromJSONLD(d)
	if page == nil {
		page = fromMicrodata(d)
	}
	if page == nil {
		return nil, fmt.Errorf("%s: %w", sourceURL, ErrRecipeNotFound)
	}

	if page.Title == "" {
		page.Title = documentTitle(d)
	}
	return page, nil
}

func fromJSONLD(d *goquery.Document) *Page {
	var page *Page
	d.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &payload); err != nil {
			return true
		}
		if node := findRecipeNode(payload); node != nil {
			page = pageFromNode(node)
			return false
		}
		return true
	})
	return page
}

// findRecipeNode walks objects, arrays and @graph containers looking for the
// first node typed Recipe.
func findRecipeNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipeNode(graph)
		}
		// WebPage wrappers sometimes nest the recipe.
		if main, ok := t["mainEntity"]; ok {
			return findRecipeNode(main)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return isRecipeName(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && isRecipeName(s) {
				return true
			}
		}
	}
	return false
}

func isRecipeName(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "http://schema.org/"), "https://schema.org/")
	return strings.EqualFold(s, "Recipe")
}

func pageFromNode(node map[string]any) *Page {
	page := &Page{
		Title: singleLine(firstString(node["name"], node["headline"])),
	}

	if mins, ok := parseMinutes(firstString(node["totalTime"])); ok {
		page.TotalTimeMinutes = &mins
	} else {
		prep, okPrep := parseMinutes(firstString(node["prepTime"]))
		cook, okCook := parseMinutes(firstString(node["cookTime"]))
		if okPrep || okCook {
			total := prep + cook
			page.TotalTimeMinutes = &total
		}
	}

	page.Yields = yieldString(node["recipeYield"])
	if page.Yields == "" {
		page.Yields = yieldString(node["yield"])
	}

	ingredients := node["recipeIngredient"]
	if ingredients == nil {
		ingredients = node["ingredients"]
	}
	for _, raw := range stringList(ingredients) {
		if line := singleLine(raw); line != "" {
			page.Ingredients = append(page.Ingredients, line)
		}
	}

	var steps []string
	collectInstructions(node["recipeInstructions"], &steps)
	page.Instructions = strings.Join(steps, "\n")

	return page
}

// collectInstructions flattens strings, HowToStep, HowToSection and ItemList
// shapes into one line per step.
func collectInstructions(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		if text := plainText(t); text != "" {
			*out = append(*out, text)
		}
	case []any:
		for _, item := range t {
			collectInstructions(item, out)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			collectInstructions(items, out)
			return
		}
		text := firstString(t["text"], t["name"], t["description"])
		if text != "" {
			collectInstructions(text, out)
		}
	}
}

func yieldString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		for _, item := range t {
			if s := yieldString(item); s != "" {
				return s
			}
		}
	case map[string]any:
		// QuantitativeValue
		return yieldString(t["value"])
	}
	return ""
}

func firstString(values ...any) string {
	for _, v := range values {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case []any:
			if s := firstString(t...); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return strings.Split(t, "\n")
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func documentTitle(d *goquery.Document) string {
	if og, ok := d.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t := singleLine(og); t != "" {
			return t
		}
	}
	return singleLine(d.Find("title").First().Text())
}
