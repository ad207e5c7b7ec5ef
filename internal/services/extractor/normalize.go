package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/ingredient"
)

// PrepareIngredientsAction names the step synthesized when a recipe lists
// ingredients but no instructions.
const PrepareIngredientsAction = "Prepare ingredients"

// Draft is what a strategy hands to Build: the recipe header, the steps it
// found, and any ingredient lines it could not tie to a step.
type Draft struct {
	Title            string
	TotalTimeMinutes *int
	Servings         int
	Steps            []DraftStep
	// Loose lines are spread over Steps by keyword match.
	Ingredients []string
}

// DraftStep is a step as a strategy saw it. Ingredients listed here are
// kept on the step as given.
type DraftStep struct {
	Action      string
	TimeMinutes *int
	Ingredients []string
}

// Build turns a draft into a recipe. Both strategies go through here so
// ingredient parsing and step assignment happen exactly one way.
func Build(d Draft) *recipe.ExtractedRecipe {
	steps := make([]recipe.Step, 0, len(d.Steps))
	for _, ds := range d.Steps {
		action := strings.TrimSpace(ds.Action)
		if action == "" {
			continue
		}
		steps = append(steps, recipe.Step{
			Action:      action,
			TimeMinutes: ds.TimeMinutes,
			Ingredients: ingredient.ParseAll(ds.Ingredients),
		})
	}

	loose := ingredient.ParseAll(d.Ingredients)
	switch {
	case len(loose) == 0:
	case len(steps) == 0:
		steps = append(steps, recipe.Step{Action: PrepareIngredientsAction, Ingredients: loose})
	default:
		actions := make([]string, len(steps))
		for i, s := range steps {
			actions[i] = s.Action
		}
		for i, assigned := range ingredient.Assign(actions, loose) {
			steps[i].Ingredients = append(steps[i].Ingredients, assigned...)
		}
	}

	return recipe.New(d.Title, d.TotalTimeMinutes, d.Servings, steps)
}

// SplitLines returns the non-blank trimmed lines of s.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

var firstNumber = regexp.MustCompile(`\d+`)

// ServingsFromYields reads the first run of digits ("Makes 12 cookies" is 12).
// Anything without digits counts as one serving.
func ServingsFromYields(yields string) int {
	m := firstNumber.FindString(yields)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var stepPrefix = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)\-]?|\d+\s*[.)])\s*`)

// StripStepPrefix drops a leading "1.", "2)" or "Step 3:" label.
func StripStepPrefix(action string) string {
	return strings.TrimSpace(stepPrefix.ReplaceAllString(action, ""))
}

var durationPhrase = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?)\b`)

// DurationMinutes finds the first "<n> minutes" or "<n> hours" phrase in
// text. Hours are converted to minutes.
func DurationMinutes(text string) *int {
	m := durationPhrase.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		v *= 60
	}
	minutes := int(math.Round(v))
	if minutes <= 0 {
		return nil
	}
	return &minutes
}
