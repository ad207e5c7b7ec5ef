package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/recipebox/larder/internal/config"
	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/logger"
	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/scraper"
	"github.com/recipebox/larder/internal/telemetry"
	"github.com/recipebox/larder/internal/validation"
)

const (
	strategyPrimary  = "primary"
	strategyFallback = "fallback"
	strategyNone     = "none"
)

var errFallbackEmpty = errors.New("fallback extractor found no recipe")

// Orchestrator is the entry point of the pipeline: validate, fetch, try the
// page's own markup, then optionally ask the model.
type Orchestrator struct {
	fetcher         scraper.Fetcher
	primary         Strategy
	fallback        Strategy
	fallbackEnabled bool
	logger          *slog.Logger
}

// NewOrchestrator wires the pipeline. fallback may be nil; it is only
// consulted when cfg.LLM.Enabled is set.
func NewOrchestrator(cfg *config.Config, fetcher scraper.Fetcher, primary, fallback Strategy, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		fetcher:         fetcher,
		primary:         primary,
		fallback:        fallback,
		fallbackEnabled: cfg.LLM.Enabled,
		logger:          log,
	}
}

// FallbackAvailable reports whether a fallback is wired and enabled.
func (o *Orchestrator) FallbackAvailable() bool {
	return o.fallback != nil && o.fallbackEnabled
}

// ExtractRecipe runs the whole pipeline for one URL. Invalid URLs fail
// before any network access.
func (o *Orchestrator) ExtractRecipe(ctx context.Context, rawURL string, allowFallback bool) (*recipe.ExtractedRecipe, error) {
	ctx, span := telemetry.Tracer("extractor").Start(ctx, "extractor.ExtractRecipe")
	defer span.End()
	started := time.Now()

	u, err := validation.ValidateURL(rawURL)
	if err != nil {
		o.record(ctx, strategyNone, "invalid_url", started)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	target := u.String()
	span.SetAttributes(attribute.String("recipe.url", target))
	log := o.logger.With("url", target, logger.WithTraceContext(ctx))

	ReportProgress(ctx, StageFetching)
	html, err := o.fetcher.Fetch(ctx, target)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.NewFetchError(err.Error(), "FETCH_FAILED", 0, err)
		}
		log.WarnContext(ctx, "Fetch failed", "error", err)
		o.record(ctx, strategyNone, "fetch_error", started)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	ReportProgress(ctx, StageExtracting)
	r, primaryErr := o.primary.Extract(ctx, html, target)
	if primaryErr == nil {
		r.SourceURL = target
		log.InfoContext(ctx, "Recipe extracted", "strategy", strategyPrimary, "steps", len(r.Steps))
		o.record(ctx, strategyPrimary, "success", started)
		span.SetAttributes(attribute.String("recipe.strategy", strategyPrimary))
		return r, nil
	}

	if !allowFallback || !o.FallbackAvailable() {
		log.WarnContext(ctx, "Primary extractor failed, fallback not attempted",
			"error", primaryErr,
			"allow_fallback", allowFallback,
			"fallback_available", o.FallbackAvailable())
		o.record(ctx, strategyPrimary, "failed", started)
		span.SetStatus(codes.Error, "primary extractor failed")
		return nil, apperrors.NewExtractionError("Recipe extraction failed", "EXTRACTION_FAILED", primaryErr)
	}

	log.WarnContext(ctx, "Primary extractor failed, attempting fallback", "error", primaryErr)
	metrics.FallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason(primaryErr))))

	ReportProgress(ctx, StageFallback)
	r, fallbackErr := o.fallback.Extract(ctx, html, target)
	if fallbackErr == nil && (r == nil || len(r.Steps) == 0) {
		fallbackErr = errFallbackEmpty
	}
	if fallbackErr != nil {
		log.ErrorContext(ctx, "Both extractors failed", "primary_error", primaryErr, "fallback_error", fallbackErr)
		o.record(ctx, strategyFallback, "failed", started)
		span.SetStatus(codes.Error, "both extractors failed")
		return nil, apperrors.NewExtractionError("Recipe extraction failed", "EXTRACTION_FAILED",
			fmt.Errorf("primary extractor: %w; fallback extractor: %w", primaryErr, fallbackErr))
	}

	r.SourceURL = target
	log.InfoContext(ctx, "Recipe extracted", "strategy", strategyFallback, "steps", len(r.Steps))
	o.record(ctx, strategyFallback, "success", started)
	span.SetAttributes(attribute.String("recipe.strategy", strategyFallback))
	return r, nil
}

// ExtractText sends pasted text straight to the fallback. sourceURL is only
// a reference stamped on the result; it is never fetched.
func (o *Orchestrator) ExtractText(ctx context.Context, text, sourceURL string) (*recipe.ExtractedRecipe, error) {
	ctx, span := telemetry.Tracer("extractor").Start(ctx, "extractor.ExtractText")
	defer span.End()
	started := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("Recipe text is required", "TEXT_REQUIRED", "Paste the recipe text and try again.")
	}
	if res := validation.QuickValidate(text); !res.IsValid {
		return nil, apperrors.NewValidationError(res.Reason, "TEXT_TOO_SHORT", "Paste the full recipe, including ingredients and steps.")
	}
	if !o.FallbackAvailable() {
		return nil, apperrors.NewExtractionError("Text extraction needs the text-generation fallback, which is disabled", "FALLBACK_DISABLED", nil)
	}

	ReportProgress(ctx, StageFallback)
	r, err := o.fallback.Extract(ctx, text, sourceURL)
	if err == nil && (r == nil || len(r.Steps) == 0) {
		err = errFallbackEmpty
	}
	if err != nil {
		o.logger.WarnContext(ctx, "Text extraction failed", "error", err, logger.WithTraceContext(ctx))
		o.record(ctx, strategyFallback, "failed", started)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, errFallbackEmpty) {
			return nil, apperrors.NewExtractionError("No recipe found in text", "NO_RECIPE_IN_TEXT", err)
		}
		return nil, apperrors.NewExtractionError("Recipe extraction failed", "EXTRACTION_FAILED", err)
	}

	r.SourceURL = strings.TrimSpace(sourceURL)
	o.record(ctx, strategyFallback, "success", started)
	return r, nil
}

func (o *Orchestrator) record(ctx context.Context, strategy, status string, started time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("status", status),
	)
	metrics.ExtractionsTotal.Add(ctx, 1, attrs)
	metrics.ExtractionDuration.Record(ctx, time.Since(started).Seconds(), attrs)
}

// reason labels why the primary strategy handed over to the fallback.
func reason(err error) string {
	if appErr, ok := apperrors.As(err); ok && appErr.ErrorCode != "" {
		return strings.ToLower(appErr.ErrorCode)
	}
	return "primary_failed"
}
