package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw    string
		name   string
		amount *float64
		unit   string
	}{
		{"2 cups flour", "flour", ptr(2), "cups"},
		{"1/2 teaspoon salt", "salt", ptr(0.5), "teaspoon"},
		{"3 eggs", "eggs", ptr(3), ""},
		{"500g sugar", "sugar", ptr(500), "g"},
		{"fresh parsley for garnish", "fresh parsley for garnish", nil, ""},
		{"salt to taste", "salt to taste", nil, ""},
		{"3 tablespoons butter", "butter", ptr(3), "tablespoons"},
		{"2 tbsp olive oil", "olive oil", ptr(2), "tbsp"},
		{"2 cups all-purpose flour", "all-purpose flour", ptr(2), "cups"},
		{"1.5 cups milk", "milk", ptr(1.5), "cups"},
		{"2 Cloves garlic, minced", "garlic, minced", ptr(2), "cloves"},
		{"pinch of salt", "of salt", nil, "pinch"},
		{"1 L water", "water", ptr(1), "l"},
		{"250 l milk", "milk", ptr(250), "l"},
		{"3 Tbig carrots", "Tbig carrots", ptr(3), ""},
		{"2 large eggs", "large eggs", ptr(2), ""},
		{"  4 slices bread  ", "bread", ptr(4), "slices"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.unit, got.Unit)
			if tt.amount == nil {
				assert.Nil(t, got.Amount)
			} else if assert.NotNil(t, got.Amount) {
				assert.InDelta(t, *tt.amount, *got.Amount, 1e-9)
			}
		})
	}
}

func TestParseWholeWordUnits(t *testing.T) {
	got := Parse("2 grammar books")
	assert.NotEqual(t, "gram", got.Unit)
	assert.Equal(t, "grammar books", got.Name)

	got = Parse("1 cupcake liner")
	assert.Empty(t, got.Unit)
	assert.Equal(t, "cupcake liner", got.Name)
}

func TestParseBadQuantities(t *testing.T) {
	tests := []struct {
		raw  string
		name string
		unit string
	}{
		{"1/0 cup sugar", "sugar", "cup"},
		{"1/2/3 cup sugar", "sugar", "cup"},
		{"1 1/2 cups flour", "flour", "cups"},
		{"0 cups water", "water", "cups"},
		{". cup oats", "oats", "cup"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Nil(t, got.Amount)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.unit, got.Unit)
		})
	}
}

func TestParseNeverLosesTheLine(t *testing.T) {
	for _, raw := range []string{"", "   ", "½ cup sugar", "!!!", "12", "cup"} {
		got := Parse(raw)
		if raw != "" && raw != "   " {
			assert.NotEmpty(t, got.Name, raw)
		}
	}
}

func TestParseNameIsStable(t *testing.T) {
	for _, raw := range []string{"2 cups flour", "500g sugar", "3 eggs", "1/2 teaspoon salt"} {
		first := Parse(raw)
		again := Parse(first.Name)
		assert.Nil(t, again.Amount, raw)
		assert.Empty(t, again.Unit, raw)
		assert.Equal(t, first.Name, again.Name, raw)
	}
}

func TestParseAll(t *testing.T) {
	got := ParseAll([]string{"2 eggs", "", "  ", "1 cup milk"})
	assert.Len(t, got, 2)
	assert.Equal(t, "eggs", got[0].Name)
	assert.Equal(t, "milk", got[1].Name)
}

func TestCanonicalUnit(t *testing.T) {
	assert.Equal(t, "tbsp", CanonicalUnit("Tablespoons"))
	assert.Equal(t, "g", CanonicalUnit("grams"))
	assert.Equal(t, "lb", CanonicalUnit("lbs"))
	assert.Equal(t, "handful", CanonicalUnit("Handful"))
}

func ptr(v float64) *float64 { return &v }
