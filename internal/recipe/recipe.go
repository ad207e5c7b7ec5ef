// Package recipe holds the normalized recipe shape produced by extraction.
package recipe

import (
	"strings"
)

// UntitledPlaceholder is used when a page yields no title.
const UntitledPlaceholder = "Untitled Recipe"

// Ingredient is one parsed ingredient line. Amount and Unit are nil/empty
// when the line carried no recognizable quantity.
type Ingredient struct {
	Name   string   `json:"ingredient_name"`
	Amount *float64 `json:"amount"`
	Unit   string   `json:"unit,omitempty"`
}

// Step is one instruction with the ingredients it uses.
type Step struct {
	Number      int          `json:"step_number"`
	Action      string       `json:"action"`
	TimeMinutes *int         `json:"time_minutes,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// ExtractedRecipe is the only output of the extraction pipeline.
type ExtractedRecipe struct {
	Title            string `json:"title"`
	TotalTimeMinutes *int   `json:"total_time_minutes,omitempty"`
	Servings         int    `json:"base_servings"`
	SourceURL        string `json:"source_url,omitempty"`
	Steps            []Step `json:"steps"`
}

// New builds an ExtractedRecipe and enforces its invariants: a non-empty
// title, servings of at least one, steps numbered 1..n in the given order
// and non-nil ingredient slices. Steps with a blank action are dropped.
func New(title string, totalTime *int, servings int, steps []Step) *ExtractedRecipe {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledPlaceholder
	}
	if servings < 1 {
		servings = 1
	}
	if totalTime != nil && *totalTime <= 0 {
		totalTime = nil
	}

	numbered := make([]Step, 0, len(steps))
	for _, s := range steps {
		s.Action = strings.TrimSpace(s.Action)
		if s.Action == "" {
			continue
		}
		if s.TimeMinutes != nil && *s.TimeMinutes <= 0 {
			s.TimeMinutes = nil
		}
		if s.Ingredients == nil {
			s.Ingredients = []Ingredient{}
		}
		s.Number = len(numbered) + 1
		numbered = append(numbered, s)
	}

	return &ExtractedRecipe{
		Title:            title,
		TotalTimeMinutes: totalTime,
		Servings:         servings,
		Steps:            numbered,
	}
}

// IngredientCount is the number of ingredients across every step.
func (r *ExtractedRecipe) IngredientCount() int {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Ingredients)
	}
	return n
}

// Ingredients flattens every step's ingredients in step order.
func (r *ExtractedRecipe) Ingredients() []Ingredient {
	out := make([]Ingredient, 0, r.IngredientCount())
	for _, s := range r.Steps {
		out = append(out, s.Ingredients...)
	}
	return out
}

// Float and Int return pointers for optional fields.
func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
