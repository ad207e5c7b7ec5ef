// Package scraper fetches recipe pages and reads the structured recipe data
// (schema.org JSON-LD or microdata) embedded in them.
package scraper

import "context"

// Page is what a structured-page scraper reads off a recipe page. The
// primary extractor normalizes it into a recipe.
type Page struct {
	Title            string
	TotalTimeMinutes *int
	Yields           string
	Ingredients      []string
	// Instructions holds one step per line.
	Instructions string
}

// PageScraper reads recipe fields from an HTML document. Implementations
// return ErrRecipeNotFound when the markup is unrecognized.
type PageScraper interface {
	Scrape(html, sourceURL string) (*Page, error)
}

// Fetcher retrieves the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
