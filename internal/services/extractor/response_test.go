package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"surrounding prose", "Here you go:\n{\"a\":{\"b\":2}}\nEnjoy!", `{"a":{"b":2}}`},
		{"braces in strings", `x {"a":"} {"} y`, `{"a":"} {"}`},
		{"escaped quote", `{"a":"say \"}\""} tail`, `{"a":"say \"}\""}`},
		{"two objects", `{"a":1} and {"b":2}`, `{"a":1}`},
		{"nested", `{"a":{"b":1} }`, `{"a":{"b":1} }`},
		{"unbalanced", `{"a":{"b":1}`, `{"a":{"b":1}`},
		{"unterminated", `{"a":`, `{"a":`},
		{"null", "  null \n", "null"},
		{"no json", "This is not JSON", "This is not JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonSpan(tt.in))
		})
	}
}

func TestParseModelOutputNoRecipe(t *testing.T) {
	for _, out := range []string{"null", " null ", "This is not JSON", `{"title": "broken",`, "[1, 2]"} {
		_, err := parseModelOutput(out)
		assert.Error(t, err, out)
	}

	_, err := parseModelOutput("null")
	assert.ErrorIs(t, err, errNoRecipe)
	_, err = parseModelOutput("This is not JSON")
	assert.ErrorIs(t, err, errMalformedJSON)
}

func TestParseModelOutputSteps(t *testing.T) {
	out := `Sure! Here is the recipe:
{
  "title": "Garlic Noodles",
  "total_time_minutes": "20 minutes",
  "base_servings": 2,
  "steps": [
    {"action": "Step 1: Boil the noodles.", "time_minutes": 8, "ingredients": ["200 g noodles", "1 l water"]},
    {"action": "", "ingredients": ["ignored"]},
    "2) Fry the garlic in butter.",
    {"instruction": "3. Toss together and leave for 2 minutes.", "ingredients": "3 cloves garlic\n2 tbsp butter"},
    42
  ]
}
Let me know if you need anything else.`

	draft, err := parseModelOutput(out)
	require.NoError(t, err)

	assert.Equal(t, "Garlic Noodles", draft.Title)
	assert.Equal(t, 20, *draft.TotalTimeMinutes)
	assert.Equal(t, 2, draft.Servings)
	require.Len(t, draft.Steps, 3)

	assert.Equal(t, "Boil the noodles.", draft.Steps[0].Action)
	assert.Equal(t, 8, *draft.Steps[0].TimeMinutes)
	assert.Equal(t, []string{"200 g noodles", "1 l water"}, draft.Steps[0].Ingredients)

	assert.Equal(t, "Fry the garlic in butter.", draft.Steps[1].Action)
	assert.Empty(t, draft.Steps[1].Ingredients)

	assert.Equal(t, "Toss together and leave for 2 minutes.", draft.Steps[2].Action)
	assert.Nil(t, draft.Steps[2].TimeMinutes, "structured steps keep the model's own timing")
	assert.Equal(t, []string{"3 cloves garlic", "2 tbsp butter"}, draft.Steps[2].Ingredients)
	assert.Empty(t, draft.Ingredients)
}

func TestParseModelOutputLegacyFlat(t *testing.T) {
	out := `{"title": "Pancakes", "base_servings": "4 people",
"ingredients": ["2 cups flour", "", "2 eggs", 1],
"instructions": "1. Sift the flour.\nStep 2: Beat the eggs for 2 minutes.\n\n3) Rest the batter 1 hour."}`

	draft, err := parseModelOutput(out)
	require.NoError(t, err)

	assert.Equal(t, 4, draft.Servings)
	assert.Nil(t, draft.TotalTimeMinutes)
	assert.Equal(t, []string{"2 cups flour", "2 eggs", "1"}, draft.Ingredients)
	require.Len(t, draft.Steps, 3)
	assert.Equal(t, "Sift the flour.", draft.Steps[0].Action)
	assert.Nil(t, draft.Steps[0].TimeMinutes)
	assert.Equal(t, "Beat the eggs for 2 minutes.", draft.Steps[1].Action)
	assert.Equal(t, 2, *draft.Steps[1].TimeMinutes)
	assert.Equal(t, 60, *draft.Steps[2].TimeMinutes)
}

func TestParseModelOutputLegacyGrouped(t *testing.T) {
	out := `{"title": "Toast", "ingredients": [["2 slices bread"], ["1 tbsp butter", "jam"], ["salt"]],
"instructions": ["Toast the bread.", "Spread butter and jam."]}`

	draft, err := parseModelOutput(out)
	require.NoError(t, err)

	require.Len(t, draft.Steps, 2)
	assert.Equal(t, []string{"2 slices bread"}, draft.Steps[0].Ingredients)
	assert.Equal(t, []string{"1 tbsp butter", "jam"}, draft.Steps[1].Ingredients)
	assert.Equal(t, []string{"salt"}, draft.Ingredients)
}

func TestParseModelOutputMixedIngredientEntries(t *testing.T) {
	out := `{"steps": [{"action": "Mix flour and milk", "ingredients": [
  {"name": "flour", "amount": 2, "unit": "cups"}, "1 cup milk", {"quantity": "1/2"}, true, {"item": "salt"}]}]}`

	draft, err := parseModelOutput(out)
	require.NoError(t, err)

	require.Len(t, draft.Steps, 1)
	assert.Equal(t, []string{"2 cups flour", "1 cup milk", "salt"}, draft.Steps[0].Ingredients)
}

func TestParseModelOutputLegacyGroupedMixed(t *testing.T) {
	out := `{"ingredients": [[{"ingredient": "bread", "amount": "2", "unit": "slices"}, "1 tbsp butter"], {"name": "jam"}],
"instructions": ["Butter the bread."]}`

	draft, err := parseModelOutput(out)
	require.NoError(t, err)

	require.Len(t, draft.Steps, 1)
	assert.Equal(t, []string{"2 slices bread", "1 tbsp butter"}, draft.Steps[0].Ingredients)
	assert.Equal(t, []string{"jam"}, draft.Ingredients)
}

func TestParseModelOutputGroupsWithoutInstructions(t *testing.T) {
	draft, err := parseModelOutput(`{"title": "Mise", "ingredients": [["1 onion"], [], ["2 carrots"]]}`)
	require.NoError(t, err)

	require.Len(t, draft.Steps, 2)
	assert.Equal(t, "Step 1", draft.Steps[0].Action)
	assert.Equal(t, "Step 2", draft.Steps[1].Action)
	assert.Equal(t, []string{"2 carrots"}, draft.Steps[1].Ingredients)
}

func TestParseModelOutputDefaults(t *testing.T) {
	draft, err := parseModelOutput(`{"title": "N/A", "base_servings": "unknown", "total_time_minutes": null}`)
	require.NoError(t, err)

	assert.Empty(t, draft.Title)
	assert.Equal(t, 1, draft.Servings)
	assert.Nil(t, draft.TotalTimeMinutes)
	assert.Empty(t, draft.Steps)
}

func TestParseModelOutputKeepsBracketedTitle(t *testing.T) {
	draft, err := parseModelOutput(`{"title": "(Vegan) Chili (GF)", "steps": ["Simmer the beans."]}`)
	require.NoError(t, err)
	assert.Equal(t, "(Vegan) Chili (GF)", draft.Title)

	draft, err = parseModelOutput(`{"title": "[Recipe Title]", "steps": ["Simmer the beans."]}`)
	require.NoError(t, err)
	assert.Empty(t, draft.Title)
}
