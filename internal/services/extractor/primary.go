// Package extractor turns recipe pages and pasted text into recipes. Two
// strategies, a structured-page scraper and a text-generation fallback, each
// produce a Draft that goes through the same Build step.
package extractor

import (
	"context"

	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/scraper"
)

// Strategy is one way of getting a recipe out of a document.
type Strategy interface {
	Extract(ctx context.Context, input, sourceURL string) (*recipe.ExtractedRecipe, error)
}

// PrimaryExtractor reads the schema.org data a page publishes about itself.
type PrimaryExtractor struct {
	scraper scraper.PageScraper
}

func NewPrimaryExtractor(s scraper.PageScraper) *PrimaryExtractor {
	return &PrimaryExtractor{scraper: s}
}

// Extract fails with an extraction error when the scraper does not
// recognize the page, or when the page it recognizes has neither
// ingredients nor instructions.
func (p *PrimaryExtractor) Extract(_ context.Context, html, sourceURL string) (*recipe.ExtractedRecipe, error) {
	page, err := p.scraper.Scrape(html, sourceURL)
	if err != nil {
		return nil, apperrors.NewExtractionError("structured page scrape failed", "PRIMARY_SCRAPE_FAILED", err)
	}

	actions := SplitLines(page.Instructions)
	steps := make([]DraftStep, len(actions))
	for i, a := range actions {
		steps[i] = DraftStep{Action: a}
	}

	r := Build(Draft{
		Title:            page.Title,
		TotalTimeMinutes: page.TotalTimeMinutes,
		Servings:         ServingsFromYields(page.Yields),
		Steps:            steps,
		Ingredients:      page.Ingredients,
	})
	if len(r.Steps) == 0 {
		return nil, apperrors.NewExtractionError("recipe markup has no ingredients or instructions", "PRIMARY_EMPTY", scraper.ErrRecipeNotFound)
	}
	return r, nil
}
