package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/larder/internal/recipe"
)

func ingredientNames(ings []recipe.Ingredient) []string {
	out := make([]string, len(ings))
	for i, ing := range ings {
		out[i] = ing.Name
	}
	return out
}

func TestBuildAssignsLooseIngredients(t *testing.T) {
	r := Build(Draft{
		Title:    "Pancakes",
		Servings: 4,
		Steps: []DraftStep{
			{Action: "Mix flour and sugar in a bowl."},
			{Action: "Whisk eggs and milk."},
			{Action: "Cook on a hot griddle."},
		},
		Ingredients: []string{"2 cups flour", "1 tbsp sugar", "2 eggs", "1 cup milk", "butter"},
	})

	require.Len(t, r.Steps, 3)
	assert.Equal(t, []string{"flour", "sugar", "butter"}, ingredientNames(r.Steps[0].Ingredients))
	assert.Equal(t, []string{"eggs", "milk"}, ingredientNames(r.Steps[1].Ingredients))
	assert.Empty(t, r.Steps[2].Ingredients)
	assert.Equal(t, 5, r.IngredientCount())
	assert.Equal(t, 4, r.Servings)
}

func TestBuildKeepsStepIngredients(t *testing.T) {
	r := Build(Draft{
		Steps: []DraftStep{
			{Action: "Toast the bread", Ingredients: []string{"2 slices bread"}},
			{Action: "Spread butter", TimeMinutes: recipe.Int(1), Ingredients: []string{"1 tbsp butter"}},
		},
	})

	require.Len(t, r.Steps, 2)
	assert.Equal(t, recipe.UntitledPlaceholder, r.Title)
	assert.Equal(t, 1, r.Servings)
	assert.Equal(t, "bread", r.Steps[0].Ingredients[0].Name)
	assert.Equal(t, "slices", r.Steps[0].Ingredients[0].Unit)
	assert.Equal(t, 1, *r.Steps[1].TimeMinutes)
	assert.Equal(t, 2, r.Steps[1].Number)
}

func TestBuildPrepareIngredientsStep(t *testing.T) {
	r := Build(Draft{Title: "Salad", Ingredients: []string{"1 cucumber", "2 tomatoes"}})

	require.Len(t, r.Steps, 1)
	assert.Equal(t, PrepareIngredientsAction, r.Steps[0].Action)
	assert.Equal(t, 1, r.Steps[0].Number)
	assert.Len(t, r.Steps[0].Ingredients, 2)
}

func TestBuildSkipsBlankActions(t *testing.T) {
	r := Build(Draft{
		Steps:       []DraftStep{{Action: "  "}, {Action: "Boil water"}},
		Ingredients: []string{"1 l water"},
	})

	require.Len(t, r.Steps, 1)
	assert.Equal(t, "Boil water", r.Steps[0].Action)
	assert.Equal(t, "water", r.Steps[0].Ingredients[0].Name)
}

func TestBuildEmpty(t *testing.T) {
	r := Build(Draft{})
	assert.Empty(t, r.Steps)
}

func TestServingsFromYields(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4 servings", 4},
		{"Makes 12 cookies", 12},
		{"6-8", 6},
		{"a crowd", 1},
		{"", 1},
		{"0", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ServingsFromYields(tt.in), tt.in)
	}
}

func TestStripStepPrefix(t *testing.T) {
	tests := map[string]string{
		"1. Mix ingredients.":    "Mix ingredients.",
		"2) Bake":                "Bake",
		"Step 3: Serve":          "Serve",
		"step 4 - Rest":          "Rest",
		"STEP 5. Slice":          "Slice",
		"Preheat oven to 180C":   "Preheat oven to 180C",
		"350 degrees is the key": "350 degrees is the key",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripStepPrefix(in), in)
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"Bake for 25 minutes", recipe.Int(25)},
		{"Simmer 1 hour", recipe.Int(60)},
		{"Rest 1.5 hrs before slicing", recipe.Int(90)},
		{"Cook 10 MIN", recipe.Int(10)},
		{"Stir until thick", nil},
		{"Add 2 minced cloves", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationMinutes(tt.in), tt.in)
	}
}
