package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	apperrors "github.com/recipebox/larder/internal/errors"
)

// NewServer creates a new Asynq server for processing tasks
func NewServer(redisURL string, concurrency int, logger *slog.Logger) (*asynq.Server, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			// Non-retryable failures do not count against the queue's error rate.
			IsFailure: func(err error) bool {
				return !errors.Is(err, asynq.SkipRetry)
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				attrs := []any{"task_type", task.Type(), "error", err, "retry", retried, "max_retry", maxRetry}
				if appErr, ok := apperrors.As(err); ok {
					attrs = append(attrs, "error_code", appErr.ErrorCode)
				}
				logger.ErrorContext(ctx, "Task failed", attrs...)
			}),
		},
	), nil
}

// NewMux registers handlers behind the tracing middleware.
func NewMux(handlers map[string]asynq.HandlerFunc) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(OTelMiddleware)
	for taskType, handler := range handlers {
		mux.HandleFunc(taskType, handler)
	}
	return mux
}

// Start starts the server with the given handlers
func Start(srv *asynq.Server, handlers map[string]asynq.HandlerFunc) error {
	return srv.Start(NewMux(handlers))
}
