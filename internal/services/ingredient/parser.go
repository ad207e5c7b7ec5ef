// Package ingredient turns free-text ingredient lines into structured
// ingredients and spreads them over recipe steps.
package ingredient

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/recipebox/larder/internal/recipe"
)

var (
	knownUnitPattern = regexp.MustCompile(`(?i)^([\d./\s]+)?\s*\b(` + strings.Join(unitTokens, "|") + `)\b\s*(.+)$`)
	// A quantity followed by an optional single letter. Only a standalone g or
	// l counts as a unit; any other letter starts the name ("3 Tbig carrots",
	// "2 large eggs").
	genericPattern = regexp.MustCompile(`^([\d./]+)\s*([a-zA-Z]?)(\s*)(.+)$`)
)

// Parse splits a raw ingredient line into amount, unit and name. It never
// fails: a line it cannot decompose comes back as a name-only ingredient.
func Parse(raw string) recipe.Ingredient {
	line := strings.TrimSpace(raw)

	if m := knownUnitPattern.FindStringSubmatch(line); m != nil {
		return recipe.Ingredient{
			Name:   nameOr(m[3], line),
			Amount: parseQuantity(m[1]),
			Unit:   strings.ToLower(m[2]),
		}
	}

	if m := genericPattern.FindStringSubmatch(line); m != nil {
		letter, gap, rest := m[2], m[3], m[4]
		ing := recipe.Ingredient{Amount: parseQuantity(m[1])}
		if unit := strings.ToLower(letter); (unit == "g" || unit == "l") && gap != "" {
			ing.Unit = unit
			ing.Name = nameOr(rest, line)
		} else {
			ing.Name = nameOr(letter+gap+rest, line)
		}
		return ing
	}

	return recipe.Ingredient{Name: line}
}

// ParseAll parses every non-blank line, preserving order.
func ParseAll(lines []string) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, Parse(l))
	}
	return out
}

func nameOr(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}

// parseQuantity evaluates "2", "1.5" or "1/2". Anything else, including
// zero, a zero denominator or more than one slash, yields nil.
func parseQuantity(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var v float64
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return nil
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil
		}
		den, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || den == 0 {
			return nil
		}
		v = num / den
	} else {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		v = n
	}

	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
