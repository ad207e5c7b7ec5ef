package ingredient

import "strings"

// unitTokens is the controlled vocabulary recognized after a quantity. Order
// matters: each singular form precedes its plural so the alternation, which
// must end on a word boundary, tries the short form first and backtracks.
var unitTokens = []string{
	"cup", "cups", "tablespoon", "tablespoons", "tbsp", "teaspoon", "teaspoons", "tsp",
	"ounce", "ounces", "oz", "pound", "pounds", "lb", "lbs",
	"gram", "grams", "g", "kilogram", "kilograms", "kg",
	"milliliter", "milliliters", "ml", "liter", "liters", "l",
	"pinch", "dash", "clove", "cloves", "slice", "slices",
}

var canonicalUnits = map[string]string{
	"cup": "cup", "cups": "cup",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbsp": "tbsp",
	"teaspoon": "tsp", "teaspoons": "tsp", "tsp": "tsp",
	"ounce": "oz", "ounces": "oz", "oz": "oz",
	"pound": "lb", "pounds": "lb", "lb": "lb", "lbs": "lb",
	"gram": "g", "grams": "g", "g": "g",
	"kilogram": "kg", "kilograms": "kg", "kg": "kg",
	"milliliter": "ml", "milliliters": "ml", "ml": "ml",
	"liter": "l", "liters": "l", "l": "l",
	"pinch": "pinch", "dash": "dash",
	"clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
}

// CanonicalUnit maps any vocabulary spelling to its short form ("tablespoons"
// becomes "tbsp"). Unknown units come back lowercased and unchanged.
func CanonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if c, ok := canonicalUnits[u]; ok {
		return c
	}
	return u
}
