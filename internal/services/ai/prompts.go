package ai

import (
	"strings"
)

// NoRecipeSentinel is what the model is told to answer when the text holds no recipe.
const NoRecipeSentinel = "null"

const roleSection = `<ROLE>
You are a recipe extraction assistant. You read text taken from a web page or pasted by a user and return the recipe it contains as strict JSON.
</ROLE>`

const guidelinesSection = `<EXTRACTION_GUIDELINES>
Do NOT copy the example values below. Extract the ACTUAL recipe information from the text.

1. title: the real recipe title from the text
2. total_time_minutes: total time in minutes, or null if not mentioned
3. base_servings: how many servings the recipe makes, or 1 if not mentioned
4. steps: every instruction step in order. For each step:
   - action: the instruction text without any "1." or "Step 1:" prefix
   - time_minutes: minutes for this step if the text says so, otherwise null
   - ingredients: the ingredient lines used in this step, with their quantities and units as written
5. Every ingredient must appear in exactly one step.
</EXTRACTION_GUIDELINES>`

const outputFormatSection = `<OUTPUT_FORMAT>
{
  "title": "Recipe title",
  "total_time_minutes": 30,
  "base_servings": 4,
  "steps": [
    {"action": "Whisk the eggs with the milk.", "time_minutes": null, "ingredients": ["2 eggs", "1 cup milk"]},
    {"action": "Bake for 20 minutes.", "time_minutes": 20, "ingredients": []}
  ]
}
</OUTPUT_FORMAT>`

const instructionsSection = `<INSTRUCTIONS>
Return ONLY the JSON object, with no explanation before or after it.
If the text does not contain a recipe, return exactly: ` + NoRecipeSentinel + `
</INSTRUCTIONS>`

const textOpen = `<RECIPE_TEXT>
`

const textClose = `
</RECIPE_TEXT>

JSON output:`

// BuildExtractionPrompt wraps text in the fixed extraction instructions.
func BuildExtractionPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString(roleSection)
	sb.WriteString("\n\n")
	sb.WriteString(guidelinesSection)
	sb.WriteString("\n\n")
	sb.WriteString(outputFormatSection)
	sb.WriteString("\n\n")
	sb.WriteString(instructionsSection)
	sb.WriteString("\n\n")
	sb.WriteString(textOpen)
	sb.WriteString(text)
	sb.WriteString(textClose)

	return sb.String()
}
