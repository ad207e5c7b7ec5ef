package extractor

import "context"

// Stage is a point the pipeline reports as it works through a URL.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StageFallback   Stage = "fallback"
)

// ProgressFunc receives stage changes. It runs inline, so it must be quick.
type ProgressFunc func(ctx context.Context, stage Stage)

type progressKey struct{}

// WithProgress returns a context whose extractions report to fn.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress tells the ProgressFunc on ctx, if any, that stage began.
func ReportProgress(ctx context.Context, stage Stage) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(ctx, stage)
	}
}
