package scraper

import "errors"

var (
	// ErrRecipeNotFound means the page carries no recipe markup this
	// scraper understands.
	ErrRecipeNotFound = errors.New("no recipe markup found")
	// ErrInvalidHTML means the document is empty or too large to parse.
	ErrInvalidHTML = errors.New("invalid html document")
)
