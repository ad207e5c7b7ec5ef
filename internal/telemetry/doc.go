// Package telemetry wires OpenTelemetry tracing, metrics and log export for
// the extraction service, its worker and the CLI.
//
// All three signals leave the process over OTLP/HTTP. The endpoint may carry
// a base path ("https://collector.example.com/otlp"), in which case the
// signal paths are derived from it. Go runtime metrics are exported on the
// same meter provider.
package telemetry
