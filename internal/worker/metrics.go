package worker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkerMetrics counts extraction jobs by outcome. A nil *WorkerMetrics
// records nothing.
type WorkerMetrics struct {
	jobs     metric.Int64Counter
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

func NewWorkerMetrics() (*WorkerMetrics, error) {
	meter := otel.Meter("larder/worker")

	jobs, err := meter.Int64Counter(
		"worker.jobs.total",
		metric.WithDescription("Extraction jobs handled, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"worker.job.duration",
		metric.WithDescription("Time spent on one extraction job attempt"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 1, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"worker.job.failures.total",
		metric.WithDescription("Failed extraction attempts, by error code and whether asynq will retry"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &WorkerMetrics{jobs: jobs, duration: duration, failures: failures}, nil
}

// RecordJob records one attempt. status is completed, cached, failed or
// invalid_payload.
func (m *WorkerMetrics) RecordJob(ctx context.Context, jobType, status string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("task.type", jobType),
		attribute.String("status", status),
	)
	m.jobs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, seconds, attrs)
}

// RecordFailure counts a failed attempt. errorCode is empty for errors
// outside the AppError taxonomy.
func (m *WorkerMetrics) RecordFailure(ctx context.Context, errorCode string, retryable bool) {
	if m == nil {
		return
	}
	if errorCode == "" {
		errorCode = "unknown"
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error_code", errorCode),
		attribute.Bool("retryable", retryable),
	))
}
