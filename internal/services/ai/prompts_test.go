package ai

import (
	"strings"
	"testing"
)

func TestBuildExtractionPrompt(t *testing.T) {
	text := "Pancakes\n2 cups flour\nMix the flour."
	prompt := BuildExtractionPrompt(text)

	contains := []string{
		"<ROLE>",
		"<EXTRACTION_GUIDELINES>",
		"<OUTPUT_FORMAT>",
		"<INSTRUCTIONS>",
		"<RECIPE_TEXT>",
		`"steps"`,
		`"time_minutes"`,
		`"base_servings"`,
		"return exactly: null",
		text,
	}
	for _, s := range contains {
		if !strings.Contains(prompt, s) {
			t.Errorf("BuildExtractionPrompt() did not contain expected string: %s", s)
		}
	}

	if !strings.HasSuffix(prompt, "JSON output:") {
		t.Errorf("BuildExtractionPrompt() should end with the output cue")
	}
	if strings.Index(prompt, text) < strings.Index(prompt, "<INSTRUCTIONS>") {
		t.Errorf("recipe text should follow the instructions")
	}
}

func TestBuildExtractionPromptEmptyText(t *testing.T) {
	prompt := BuildExtractionPrompt("")
	if !strings.Contains(prompt, "<RECIPE_TEXT>\n\n</RECIPE_TEXT>") {
		t.Errorf("empty text should leave an empty recipe block")
	}
}
