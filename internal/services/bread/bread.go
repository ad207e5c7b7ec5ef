// Package bread computes baker's percentages for a recipe: every ingredient
// weight expressed relative to the total flour weight.
package bread

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/ingredient"
)

var (
	ErrNoFlour            = errors.New("recipe has no flour with a convertible weight")
	ErrInvalidDoughWeight = errors.New("dough weight must be positive")
)

var gramsPerUnit = map[string]float64{
	"g":  1,
	"kg": 1000,
	"oz": 28.3495,
	"lb": 453.592,
}

var mlPerUnit = map[string]float64{
	"ml":   1,
	"l":    1000,
	"cup":  240,
	"tbsp": 15,
	"tsp":  5,
}

// densities in g/ml, matched against ingredient names.
var densities = map[string]float64{
	"flour":      0.593,
	"water":      1.0,
	"butter":     0.911,
	"buttermilk": 1.03,
	"sugar":      0.845,
	"milk":       1.03,
	"salt":       1.2,
	"oil":        0.92,
	"honey":      1.42,
}

// densityKeys is sorted longest first so "buttermilk" wins over "butter".
var densityKeys = func() []string {
	keys := make([]string, 0, len(densities))
	for k := range densities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Line is one ingredient of a formula. Grams and Percent are nil when the
// ingredient's quantity cannot be expressed as a weight.
type Line struct {
	Step    int      `json:"step_number"`
	Name    string   `json:"ingredient_name"`
	Grams   *float64 `json:"grams"`
	Percent *float64 `json:"baker_percentage"`
	IsFlour bool     `json:"is_flour,omitempty"`
}

// Formula is a recipe restated in baker's percentages.
type Formula struct {
	FlourGrams float64 `json:"flour_grams"`
	DoughGrams float64 `json:"dough_grams"`
	Lines      []Line  `json:"ingredients"`
}

// IsFlour reports whether an ingredient counts toward the 100% flour base.
func IsFlour(name string) bool {
	return strings.Contains(strings.ToLower(name), "flour")
}

// ToGrams converts an ingredient's amount to grams. Mass units convert
// directly; volume units need a known density for the ingredient's name.
func ToGrams(ing recipe.Ingredient) (float64, bool) {
	if ing.Amount == nil {
		return 0, false
	}
	unit := ingredient.CanonicalUnit(ing.Unit)
	if g, ok := gramsPerUnit[unit]; ok {
		return *ing.Amount * g, true
	}
	ml, ok := mlPerUnit[unit]
	if !ok {
		return 0, false
	}
	density, ok := densityFor(ing.Name)
	if !ok {
		return 0, false
	}
	return *ing.Amount * ml * density, true
}

func densityFor(name string) (float64, bool) {
	n := strings.ToLower(name)
	for _, k := range densityKeys {
		if strings.Contains(n, k) {
			return densities[k], true
		}
	}
	return 0, false
}

// Compute builds the formula for r. Flour dough is the sum of every
// convertible ingredient, flour included.
func Compute(r *recipe.ExtractedRecipe) (*Formula, error) {
	f := &Formula{}
	for _, s := range r.Steps {
		for _, ing := range s.Ingredients {
			line := Line{Step: s.Number, Name: ing.Name, IsFlour: IsFlour(ing.Name)}
			if g, ok := ToGrams(ing); ok {
				line.Grams = &g
				f.DoughGrams += g
				if line.IsFlour {
					f.FlourGrams += g
				}
			}
			f.Lines = append(f.Lines, line)
		}
	}
	if f.FlourGrams <= 0 {
		return nil, ErrNoFlour
	}

	for i := range f.Lines {
		if g := f.Lines[i].Grams; g != nil {
			p := round1(*g / f.FlourGrams * 100)
			rounded := round1(*g)
			f.Lines[i].Percent = &p
			f.Lines[i].Grams = &rounded
		}
	}
	f.FlourGrams = round1(f.FlourGrams)
	f.DoughGrams = round1(f.DoughGrams)
	return f, nil
}

// ScaleTo returns a copy of f whose convertible weights add up to
// doughWeight grams. Percentages do not change.
func (f *Formula) ScaleTo(doughWeight float64) (*Formula, error) {
	if doughWeight <= 0 || math.IsNaN(doughWeight) || math.IsInf(doughWeight, 0) {
		return nil, ErrInvalidDoughWeight
	}
	if f.DoughGrams <= 0 {
		return nil, ErrNoFlour
	}
	factor := doughWeight / f.DoughGrams

	scaled := &Formula{
		FlourGrams: round1(f.FlourGrams * factor),
		DoughGrams: round1(doughWeight),
		Lines:      make([]Line, len(f.Lines)),
	}
	for i, l := range f.Lines {
		if l.Grams != nil {
			g := round1(*l.Grams * factor)
			l.Grams = &g
		}
		if l.Percent != nil {
			p := *l.Percent
			l.Percent = &p
		}
		scaled.Lines[i] = l
	}
	return scaled, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
