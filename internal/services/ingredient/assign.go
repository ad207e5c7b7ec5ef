package ingredient

import (
	"strings"

	"github.com/recipebox/larder/internal/recipe"
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "for": {},
	"and": {}, "or": {}, "in": {}, "on": {}, "with": {},
}

// Keywords returns the words of an ingredient name used for matching:
// lowercased, stopwords removed, three characters or longer.
func Keywords(name string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if _, stop := stopwords[w]; stop || len(w) <= 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Assign distributes ingredients over steps. Scanning steps in order, an
// unassigned ingredient goes to the first step whose lowercased action
// contains any of its keywords. Whatever is left is appended to step one, so
// every ingredient lands in exactly one slot. The result is indexed like
// actions; it is nil when there are no actions.
func Assign(actions []string, ingredients []recipe.Ingredient) [][]recipe.Ingredient {
	if len(actions) == 0 {
		return nil
	}

	slots := make([][]recipe.Ingredient, len(actions))
	for i := range slots {
		slots[i] = []recipe.Ingredient{}
	}

	keywords := make([][]string, len(ingredients))
	for i, ing := range ingredients {
		keywords[i] = Keywords(ing.Name)
	}

	assigned := make([]bool, len(ingredients))
	for si, action := range actions {
		text := strings.ToLower(action)
		for ii, ing := range ingredients {
			if assigned[ii] || !mentions(text, keywords[ii]) {
				continue
			}
			slots[si] = append(slots[si], ing)
			assigned[ii] = true
		}
	}

	for ii, ing := range ingredients {
		if !assigned[ii] {
			slots[0] = append(slots[0], ing)
		}
	}
	return slots
}

func mentions(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
