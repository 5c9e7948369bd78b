package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "address_verify"

// Metrics holds the Prometheus counters and histograms for the verification service.
type Metrics struct {
	// Verification metrics.
	Verifications        *prometheus.CounterVec   // labels: flow={address,zip}, outcome={valid,invalid,error}
	VerificationReasons  *prometheus.CounterVec   // labels: flow, reason
	VerificationDuration *prometheus.HistogramVec // labels: flow
	ZipFallbacks         *prometheus.CounterVec   // labels: kind={postal_query,reverse}, outcome={recovered,miss,error}

	// Event publishing metrics.
	EventsPublished     prometheus.Counter
	EventPublishErrors  prometheus.Counter
	EventBatchFailures  prometheus.Counter
	EventBatchSize      prometheus.Histogram
	EventPublishEnabled prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Verifications,
		m.VerificationReasons,
		m.VerificationDuration,
		m.ZipFallbacks,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventBatchFailures,
		m.EventBatchSize,
		m.EventPublishEnabled,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Completed verifications by flow and outcome.",
		}, []string{"flow", "outcome"}),
		VerificationReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_reasons_total",
			Help:      "Negative verdicts by flow and reason.",
		}, []string{"flow", "reason"}),
		VerificationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "End-to-end verification duration including geocoding.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"flow"}),
		ZipFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zip_fallbacks_total",
			Help:      "Postal-code fallback lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Verification events written to the event topic.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Verification events rejected before queuing.",
		}),
		EventBatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_batch_failures_total",
			Help:      "Failed attempts to write a batch of verification events.",
		}),
		EventBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_size",
			Help:      "Number of verification events per written batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		EventPublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_publish_enabled",
			Help:      "1 when verification events are published to Kafka, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Google Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when a geocoding key is configured, 0 otherwise.",
		}),
	}
}
