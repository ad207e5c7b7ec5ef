package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func fromMicrodata(d *goquery.Document) *Page {
	scope := d.Find(`[itemscope][itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil
	}

	page := &Page{
		Title:  singleLine(firstProp(scope, "name")),
		Yields: strings.TrimSpace(firstProp(scope, "recipeYield")),
	}

	if mins, ok := parseMinutes(firstProp(scope, "totalTime")); ok {
		page.TotalTimeMinutes = &mins
	}

	for _, prop := range []string{"recipeIngredient", "ingredients"} {
		for _, sel := range ownProps(scope, prop) {
			if line := singleLine(propValue(sel)); line != "" {
				page.Ingredients = append(page.Ingredients, line)
			}
		}
		if len(page.Ingredients) > 0 {
			break
		}
	}

	var steps []string
	for _, sel := range ownProps(scope, "recipeInstructions") {
		items := sel.Find("li")
		if items.Length() == 0 {
			if text := plainText(propValue(sel)); text != "" {
				steps = append(steps, text)
			}
			continue
		}
		items.Each(func(_ int, li *goquery.Selection) {
			if text := singleLine(li.Text()); text != "" {
				steps = append(steps, text)
			}
		})
	}
	page.Instructions = strings.Join(steps, "\n")

	return page
}

// ownProps returns the itemprop elements that belong to scope itself, not to
// a nested item such as the author or a review.
func ownProps(scope *goquery.Selection, name string) []*goquery.Selection {
	root := scope.Get(0)
	var out []*goquery.Selection
	scope.Find(`[itemprop~="` + name + `"]`).Each(func(_ int, sel *goquery.Selection) {
		owner := sel.Parent().Closest("[itemscope]")
		if owner.Length() > 0 && owner.Get(0) == root {
			out = append(out, sel)
		}
	})
	return out
}

func firstProp(scope *goquery.Selection, name string) string {
	for _, sel := range ownProps(scope, name) {
		if v := strings.TrimSpace(propValue(sel)); v != "" {
			return v
		}
	}
	return ""
}

func propValue(sel *goquery.Selection) string {
	for _, attr := range []string{"content", "datetime"} {
		if v, ok := sel.Attr(attr); ok {
			return v
		}
	}
	if h, err := sel.Html(); err == nil && strings.Contains(h, "<") {
		return h
	}
	return sel.Text()
}
