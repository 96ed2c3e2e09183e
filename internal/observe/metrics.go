// Package observe provides application-wide observability primitives for
// the grammar correction service: OpenTelemetry metrics, distributed
// tracing, structured logging, and HTTP middleware that ties them
// together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all service metrics.
const meterName = "github.com/1ordo/illiterate-go"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// RuleBackendDuration tracks rule backend check/recheck latency.
	RuleBackendDuration metric.Float64Histogram

	// ModelBackendDuration tracks generative model completion latency.
	ModelBackendDuration metric.Float64Histogram

	// PipelineDuration tracks end-to-end orchestrator latency for a
	// single Process call.
	PipelineDuration metric.Float64Histogram

	// --- Counters ---

	// BackendRequests counts backend calls. Use with attributes:
	//   attribute.String("backend", "rule"|"model"), attribute.String("status", ...)
	BackendRequests metric.Int64Counter

	// BackendErrors counts backend call failures. Use with attribute:
	//   attribute.String("backend", "rule"|"model")
	BackendErrors metric.Int64Counter

	// ValidationOutcomes counts validator decisions. Use with attribute:
	//   attribute.String("outcome", "accepted"|"rejected"|"inconclusive")
	ValidationOutcomes metric.Int64Counter

	// FallbackUsed counts requests that fell back to the deterministic
	// rule-based correction instead of the model's output.
	FallbackUsed metric.Int64Counter

	// CacheOutcomes counts boundary-layer cache lookups. Use with attribute:
	//   attribute.String("outcome", "hit"|"miss"|"eviction")
	CacheOutcomes metric.Int64Counter

	// --- Gauges ---

	// InFlightRequests tracks the number of requests currently being
	// processed by the orchestrator.
	InFlightRequests metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// a network-bound, multi-backend request chain.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RuleBackendDuration, err = m.Float64Histogram("illiterate.rule_backend.duration",
		metric.WithDescription("Latency of rule backend check/recheck calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModelBackendDuration, err = m.Float64Histogram("illiterate.model_backend.duration",
		metric.WithDescription("Latency of model backend completion calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("illiterate.pipeline.duration",
		metric.WithDescription("End-to-end orchestrator latency for a single request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.BackendRequests, err = m.Int64Counter("illiterate.backend.requests",
		metric.WithDescription("Total backend calls by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("illiterate.backend.errors",
		metric.WithDescription("Total backend call failures by backend."),
	); err != nil {
		return nil, err
	}
	if met.ValidationOutcomes, err = m.Int64Counter("illiterate.validation.outcomes",
		metric.WithDescription("Total validator decisions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.FallbackUsed, err = m.Int64Counter("illiterate.fallback.used",
		metric.WithDescription("Total requests that used the rule-based fallback instead of the model's output."),
	); err != nil {
		return nil, err
	}
	if met.CacheOutcomes, err = m.Int64Counter("illiterate.cache.outcomes",
		metric.WithDescription("Total response cache lookups by outcome."),
	); err != nil {
		return nil, err
	}

	if met.InFlightRequests, err = m.Int64UpDownCounter("illiterate.in_flight_requests",
		metric.WithDescription("Number of requests currently being processed by the orchestrator."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("illiterate.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordBackendRequest is a convenience method that records a backend call
// counter increment with the standard attribute set.
func (m *Metrics) RecordBackendRequest(ctx context.Context, backend, status string) {
	m.BackendRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		),
	)
}

// RecordBackendError is a convenience method that records a backend error
// counter increment.
func (m *Metrics) RecordBackendError(ctx context.Context, backend string) {
	m.BackendErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// RecordValidationOutcome is a convenience method that records a validator
// decision counter increment.
func (m *Metrics) RecordValidationOutcome(ctx context.Context, outcome string) {
	m.ValidationOutcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordFallbackUsed is a convenience method that records a fallback-used
// counter increment.
func (m *Metrics) RecordFallbackUsed(ctx context.Context) {
	m.FallbackUsed.Add(ctx, 1)
}

// RecordCacheOutcome is a convenience method that records a cache lookup
// counter increment.
func (m *Metrics) RecordCacheOutcome(ctx context.Context, outcome string) {
	m.CacheOutcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}
