package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather backend.
type Metrics struct {
	// Upstream Open-Meteo calls.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={geocode,forecast,historical}, outcome={success,empty,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	UpstreamRetries  prometheus.Counter

	// Caller-side TTL cache.
	CacheLookups *prometheus.CounterVec // labels: kind={geocode,forecast,historical}, result={hit,miss}

	// Derived artifacts.
	VigilanceComputed *prometheus.CounterVec // labels: level={verte,jaune,orange,rouge}
	SnapshotsArchived *prometheus.CounterVec // labels: sink={disk,kafka}, outcome={success,error}

	// API surface.
	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route

	ServiceReady prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.UpstreamRetries,
		m.CacheLookups,
		m.VigilanceComputed,
		m.SnapshotsArchived,
		m.HTTPRequests,
		m.HTTPDuration,
		m.ServiceReady,
	)
	return m
}

// NewMetricsForTesting creates Metrics with no registry registration to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "upstream_requests_total",
			Help:      "Open-Meteo API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteo",
			Name:      "upstream_request_duration_seconds",
			Help:      "Open-Meteo API request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "upstream_retries_total",
			Help:      "Retry attempts against the Open-Meteo APIs.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "cache_lookups_total",
			Help:      "TTL cache lookups by request kind and result.",
		}, []string{"kind", "result"}),
		VigilanceComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "vigilance_computed_total",
			Help:      "Vigilance classifications by resulting level.",
		}, []string{"level"}),
		SnapshotsArchived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "snapshots_archived_total",
			Help:      "Forecast snapshots written to archive sinks.",
		}, []string{"sink", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "http_requests_total",
			Help:      "API requests by route and status class.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteo",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo",
			Name:      "service_ready",
			Help:      "1 once the service has completed a successful upstream fetch.",
		}),
	}
}
