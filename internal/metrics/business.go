package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var noopMeter = noop.NewMeterProvider().Meter("larder/business")

var (
	// Extraction metrics
	ExtractionsTotal, _   = noopMeter.Int64Counter("recipe.extractions.total")
	ExtractionDuration, _ = noopMeter.Float64Histogram("recipe.extraction.duration")
	FallbackTotal, _      = noopMeter.Int64Counter("recipe.fallback.total")
	CacheLookupsTotal, _  = noopMeter.Int64Counter("recipe.cache.lookups.total")

	// External API metrics
	ExternalAPICallsTotal, _ = noopMeter.Int64Counter("external.api.calls.total")
	ExternalAPIDuration, _   = noopMeter.Float64Histogram("external.api.duration")

	// AI metrics
	AIGenerationDuration, _ = noopMeter.Float64Histogram("ai.generation.duration")
)

// Init swaps the no-op instruments for ones bound to the global meter
// provider. Call it after telemetry is configured.
func Init() error {
	meter := otel.Meter("larder/business")
	var err error

	ExtractionsTotal, err = meter.Int64Counter(
		"recipe.extractions.total",
		metric.WithDescription("Total number of recipe extractions by strategy and status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExtractionDuration, err = meter.Float64Histogram(
		"recipe.extraction.duration",
		metric.WithDescription("Duration of a full extraction, fetch included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return err
	}

	FallbackTotal, err = meter.Int64Counter(
		"recipe.fallback.total",
		metric.WithDescription("Total number of times the text-generation fallback was attempted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	CacheLookupsTotal, err = meter.Int64Counter(
		"recipe.cache.lookups.total",
		metric.WithDescription("Recipe cache lookups by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	AIGenerationDuration, err = meter.Float64Histogram(
		"ai.generation.duration",
		metric.WithDescription("Duration of LLM recipe generation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return err
	}

	return nil
}
