package validation

import (
	"regexp"
	"strings"
)

var placeholderValues = map[string]struct{}{
	"n/a": {}, "na": {}, "none": {}, "null": {}, "nil": {}, "unknown": {},
	"not specified": {}, "not available": {}, "tbd": {}, "todo": {},
	"untitled": {}, "recipe": {}, "follow recipe": {}, "...": {}, "-": {},
}

var (
	// One bracketed token and nothing else: "[title]" but not "(Vegan) Chili (GF)".
	bracketed  = regexp.MustCompile(`^[\[<{(][^\[<{(\]>})]*[\]>})]$`)
	repeatedX  = regexp.MustCompile(`(?i)^x{2,}$`)
	onlySymbol = regexp.MustCompile(`^[^\p{L}\p{N}]+$`)
)

// DetectPlaceholders reports whether text is filler a model emits when it
// has nothing real to say ("N/A", "[title]", "xxx", blank).
func DetectPlaceholders(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	if _, ok := placeholderValues[t]; ok {
		return true
	}
	return bracketed.MatchString(t) || repeatedX.MatchString(t) || onlySymbol.MatchString(t)
}
