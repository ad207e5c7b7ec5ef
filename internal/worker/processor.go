package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/recipebox/larder/internal/cache"
	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/extractor"
)

// RecipeExtractor is the pipeline entry point the processor drives.
type RecipeExtractor interface {
	ExtractRecipe(ctx context.Context, url string, allowFallback bool) (*recipe.ExtractedRecipe, error)
}

type ExtractionProcessor struct {
	extractor RecipeExtractor
	recipes   cache.Recipes
	jobs      cache.Jobs
	metrics   *WorkerMetrics
	logger    *slog.Logger
}

func NewExtractionProcessor(
	ex RecipeExtractor,
	recipes cache.Recipes,
	jobs cache.Jobs,
	metrics *WorkerMetrics,
	logger *slog.Logger,
) *ExtractionProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionProcessor{
		extractor: ex,
		recipes:   recipes,
		jobs:      jobs,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handlers maps task types to this processor's handlers.
func (p *ExtractionProcessor) Handlers() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeExtractRecipe: p.HandleExtractRecipe,
	}
}

// HandleExtractRecipe runs one async extraction. Errors the caller cannot
// fix by waiting come back wrapped in asynq.SkipRetry.
func (p *ExtractionProcessor) HandleExtractRecipe(ctx context.Context, t *asynq.Task) error {
	started := time.Now()

	var payload ExtractRecipePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.metrics.RecordJob(ctx, t.Type(), "invalid_payload", time.Since(started).Seconds())
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	log := p.logger.With("job_id", payload.JobID, "url", payload.URL)
	log.InfoContext(ctx, "Processing extraction job")

	if r, ok := p.recipes.Get(ctx, payload.URL); ok {
		log.InfoContext(ctx, "Recipe served from cache")
		p.complete(ctx, log, payload.JobID, r)
		p.metrics.RecordJob(ctx, t.Type(), "cached", time.Since(started).Seconds())
		return nil
	}

	ctx = extractor.WithProgress(ctx, func(ctx context.Context, stage extractor.Stage) {
		status := cache.JobExtracting
		if stage == extractor.StageFetching {
			status = cache.JobFetching
		}
		p.update(ctx, log, payload.JobID, cache.JobUpdate{Status: status})
	})

	r, err := p.extractor.ExtractRecipe(ctx, payload.URL, payload.AllowFallback)
	if err != nil {
		return p.fail(ctx, log, t, payload.JobID, err, started)
	}

	p.recipes.Set(ctx, payload.URL, r)
	p.complete(ctx, log, payload.JobID, r)
	p.metrics.RecordJob(ctx, t.Type(), "completed", time.Since(started).Seconds())
	return nil
}

func (p *ExtractionProcessor) complete(ctx context.Context, log *slog.Logger, jobID string, r *recipe.ExtractedRecipe) {
	p.update(ctx, log, jobID, cache.JobUpdate{Status: cache.JobCompleted, Recipe: r})
	log.InfoContext(ctx, "Extraction job completed", "title", r.Title, "steps", len(r.Steps))
}

// fail records err on the job. A retryable error with attempts left puts
// the job back to pending; anything else fails it for good.
func (p *ExtractionProcessor) fail(ctx context.Context, log *slog.Logger, t *asynq.Task, jobID string, err error, started time.Time) error {
	update := cache.JobUpdate{Status: cache.JobFailed, Error: err.Error()}
	retryable := true
	if appErr, ok := apperrors.As(err); ok {
		update.ErrorCode = appErr.ErrorCode
		retryable = appErr.IsRetryable()
	}

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, hasMax := asynq.GetMaxRetry(ctx)
	if retryable && hasMax && retried < maxRetry {
		update.Status = cache.JobPending
	}

	p.update(ctx, log, jobID, update)
	p.metrics.RecordJob(ctx, t.Type(), "failed", time.Since(started).Seconds())
	p.metrics.RecordFailure(ctx, update.ErrorCode, retryable)
	log.WarnContext(ctx, "Extraction job failed",
		"error", err,
		"error_code", update.ErrorCode,
		"retryable", retryable,
		"retry", retried)

	if !retryable {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}

func (p *ExtractionProcessor) update(ctx context.Context, log *slog.Logger, jobID string, u cache.JobUpdate) {
	if err := p.jobs.Update(ctx, jobID, u); err != nil && !errors.Is(err, cache.ErrJobNotFound) {
		log.WarnContext(ctx, "Failed to update job status", "status", u.Status, "error", err)
	}
}
