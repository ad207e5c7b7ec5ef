package validation

import (
	"fmt"
	"strings"
)

// Confidence represents certainty in the validation result
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MinRecipeTextLength is the shortest pasted text worth sending to the model.
const MinRecipeTextLength = 40

// ContentValidationResult contains the outcome of validation
type ContentValidationResult struct {
	IsValid    bool       `json:"is_valid"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Missing    []string   `json:"missing"`
}

// recipeKeywords for quick heuristic validation
var recipeKeywords = []string{
	// Cooking verbs
	"bake", "cook", "fry", "boil", "grill", "roast", "saute", "simmer", "steam",
	"mix", "whisk", "stir", "blend", "chop", "dice", "slice", "preheat", "knead",
	// Measures
	"ingredient", "cup", "tablespoon", "teaspoon", "tbsp", "tsp", "ounce", "oz", "gram", "ml", "liter",
	// Recipe terms
	"recipe", "serve", "serving", "minutes", "hours", "oven", "degrees",
	// Common ingredients
	"flour", "sugar", "salt", "pepper", "oil", "butter", "egg", "milk", "water", "garlic", "onion", "yeast",
}

// QuickValidate checks pasted recipe text before it is sent to the
// text-generation model. Text that is too short is rejected outright; text
// without any cooking vocabulary passes with medium confidence.
func QuickValidate(text string) ContentValidationResult {
	content := strings.TrimSpace(text)

	if len(content) < MinRecipeTextLength {
		reason := fmt.Sprintf("Text too short (%d chars). Need at least %d chars.", len(content), MinRecipeTextLength)
		if len(content) == 0 {
			reason = "No text provided"
		}
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceHigh,
			Reason:     reason,
			Missing:    []string{"sufficient content length"},
		}
	}

	lower := strings.ToLower(content)
	for _, kw := range recipeKeywords {
		if strings.Contains(lower, kw) {
			return ContentValidationResult{
				IsValid:    true,
				Confidence: ConfidenceHigh,
				Reason:     "Text passed quick validation",
				Missing:    []string{},
			}
		}
	}

	return ContentValidationResult{
		IsValid:    true,
		Confidence: ConfidenceMedium,
		Reason:     "Text has sufficient length but no common recipe keywords found",
		Missing:    []string{"recipe keywords"},
	}
}
