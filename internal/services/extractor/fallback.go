package extractor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/recipebox/larder/internal/config"
	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/ai"
	"github.com/recipebox/larder/internal/services/llm"
)

// Generation settings for extraction: near-deterministic output, enough
// tokens for a long recipe, and a window that fits the truncated page.
var fallbackOptions = llm.Options{
	Temperature:   0.1,
	MaxTokens:     3000,
	ContextWindow: 4096,
}

// FallbackExtractor asks a text-generation model to read the recipe out of
// a page or pasted text.
type FallbackExtractor struct {
	generator     llm.Generator
	model         string
	maxTextLength int
	logger        *slog.Logger
}

func NewFallbackExtractor(generator llm.Generator, cfg *config.Config, logger *slog.Logger) *FallbackExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackExtractor{
		generator:     generator,
		model:         cfg.LLM.Model,
		maxTextLength: cfg.Extraction.MaxTextLength,
		logger:        logger,
	}
}

// Extract returns nil with no error when the model finds no recipe or
// answers with something unparseable. Only a failed request is an error.
func (f *FallbackExtractor) Extract(ctx context.Context, input, sourceURL string) (*recipe.ExtractedRecipe, error) {
	text := PrepareText(input, f.maxTextLength)
	if text == "" {
		f.logger.InfoContext(ctx, "Fallback skipped, no text to send", "source_url", sourceURL)
		return nil, nil
	}

	started := time.Now()
	output, err := f.generator.Generate(ctx, f.model, ai.BuildExtractionPrompt(text), fallbackOptions)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			f.logger.WarnContext(ctx, "Text-generation model returned an empty response", "model", f.model, "source_url", sourceURL)
			return nil, nil
		}
		return nil, apperrors.NewExtractionError("text-generation request failed", "FALLBACK_REQUEST_FAILED", err)
	}

	draft, err := parseModelOutput(output)
	if err != nil {
		f.logger.WarnContext(ctx, "No recipe in model output",
			"model", f.model,
			"source_url", sourceURL,
			"reason", err.Error(),
			"output_preview", Truncate(output, 200))
		return nil, nil
	}

	r := Build(draft)
	if len(r.Steps) == 0 {
		f.logger.WarnContext(ctx, "Model output had no usable steps", "model", f.model, "source_url", sourceURL)
		return nil, nil
	}

	f.logger.InfoContext(ctx, "Fallback extracted recipe",
		"title", r.Title,
		"steps", len(r.Steps),
		"ingredients", r.IngredientCount(),
		"chars_sent", len(text),
		"duration_ms", time.Since(started).Milliseconds())
	return r, nil
}
