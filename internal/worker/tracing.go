package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/telemetry"
)

// OTelMiddleware starts a consumer span per task. Extraction spans carry the
// job id and URL so a job can be found from its trace.
func OTelMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)
		queueName, _ := asynq.GetQueueName(ctx)
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		ctx, span := telemetry.Tracer("worker").Start(ctx, t.Type(), trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		span.SetAttributes(
			attribute.String("task.id", taskID),
			attribute.String("task.type", t.Type()),
			attribute.String("task.queue", queueName),
			attribute.Int("task.retry", retried),
			attribute.Int("task.max_retry", maxRetry),
		)
		if t.Type() == TypeExtractRecipe {
			var p ExtractRecipePayload
			if json.Unmarshal(t.Payload(), &p) == nil {
				span.SetAttributes(
					attribute.String("job.id", p.JobID),
					attribute.String("recipe.url", p.URL),
					attribute.Bool("recipe.allow_fallback", p.AllowFallback),
				)
			}
		}

		err := h.ProcessTask(ctx, t)
		if err == nil {
			return nil
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("task.skip_retry", errors.Is(err, asynq.SkipRetry)))
		if appErr, ok := apperrors.As(err); ok {
			span.SetAttributes(
				attribute.String("error.type", string(appErr.Type)),
				attribute.String("error.code", appErr.ErrorCode),
			)
		}
		return err
	})
}
