// Package observe provides application-wide observability primitives for
// Livecaps: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Livecaps metrics.
const meterName = "github.com/islamborghini/livecaps"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// CorrectionDuration tracks end-to-end transcript correction latency.
	CorrectionDuration metric.Float64Histogram

	// RetrievalDuration tracks candidate retrieval latency.
	RetrievalDuration metric.Float64Histogram

	// GenerativeDuration tracks generative correction latency.
	GenerativeDuration metric.Float64Histogram

	// IngestDuration tracks document ingestion latency.
	IngestDuration metric.Float64Histogram

	// --- Counters ---

	// CorrectionRequests counts correction requests. Use with attribute:
	//   attribute.String("status", ...)
	CorrectionRequests metric.Int64Counter

	// CorrectionsApplied counts individual replacements applied.
	CorrectionsApplied metric.Int64Counter

	// CandidatesRetrieved counts candidate terms retrieved across requests.
	CandidatesRetrieved metric.Int64Counter

	// DocumentsIngested counts reference documents ingested.
	DocumentsIngested metric.Int64Counter

	// TermsExtracted counts reference terms extracted from documents.
	TermsExtracted metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of sessions with a live corpus.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for live-caption latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.CorrectionDuration, err = m.Float64Histogram("livecaps.correction.duration",
		metric.WithDescription("End-to-end latency of transcript correction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RetrievalDuration, err = m.Float64Histogram("livecaps.retrieval.duration",
		metric.WithDescription("Latency of candidate retrieval."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GenerativeDuration, err = m.Float64Histogram("livecaps.generative.duration",
		metric.WithDescription("Latency of generative correction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IngestDuration, err = m.Float64Histogram("livecaps.ingest.duration",
		metric.WithDescription("Latency of reference document ingestion."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.CorrectionRequests, err = m.Int64Counter("livecaps.correction.requests",
		metric.WithDescription("Total correction requests by status."),
	); err != nil {
		return nil, err
	}
	if met.CorrectionsApplied, err = m.Int64Counter("livecaps.correction.applied",
		metric.WithDescription("Total transcript replacements applied."),
	); err != nil {
		return nil, err
	}
	if met.CandidatesRetrieved, err = m.Int64Counter("livecaps.retrieval.candidates",
		metric.WithDescription("Total candidate terms retrieved."),
	); err != nil {
		return nil, err
	}
	if met.DocumentsIngested, err = m.Int64Counter("livecaps.ingest.documents",
		metric.WithDescription("Total reference documents ingested."),
	); err != nil {
		return nil, err
	}
	if met.TermsExtracted, err = m.Int64Counter("livecaps.ingest.terms",
		metric.WithDescription("Total reference terms extracted from documents."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("livecaps.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("livecaps.active_sessions",
		metric.WithDescription("Number of sessions with a live corpus."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("livecaps.http.request.duration",
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

// RecordCorrection records one completed correction request: its latency, how
// many candidates were retrieved, how many replacements were applied, and
// whether any stage failed.
func (m *Metrics) RecordCorrection(ctx context.Context, d time.Duration, candidates, corrections int, failed bool) {
	status := "ok"
	if failed {
		status = "degraded"
	}
	m.CorrectionDuration.Record(ctx, d.Seconds())
	m.CorrectionRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)))
	m.CandidatesRetrieved.Add(ctx, int64(candidates))
	m.CorrectionsApplied.Add(ctx, int64(corrections))
}

// RecordIngest records one document ingestion: its latency and how many
// reference terms it produced.
func (m *Metrics) RecordIngest(ctx context.Context, d time.Duration, terms int) {
	m.IngestDuration.Record(ctx, d.Seconds())
	m.DocumentsIngested.Add(ctx, 1)
	m.TermsExtracted.Add(ctx, int64(terms))
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
