package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "logfilter"
)

// Metrics contains the metrics exposed by the server and the filter library.
type Metrics struct {
	// Number of queries parsed, by mode and validity.
	Queries metrics.Counter
	// Number of diagnostics produced, by mode.
	Diagnostics metrics.Counter
	// Time spent tokenizing and parsing one query.
	ParseDuration metrics.Histogram
	// Tokens per parsed query.
	QueryTokens metrics.Histogram

	// Number of saved filters.
	Filters metrics.Gauge
	// Number of library snapshots written, by outcome.
	Snapshots metrics.Counter

	// Number of HTTP requests served, by route and status code.
	Requests metrics.Counter
}

// PrometheusMetrics returns Metrics backed by the default Prometheus
// registry. Optionally, labels can be provided along with their values
// ("foo", "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Queries: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "queries_total",
			Help:      "Number of queries parsed.",
		}, append(labels, "mode", "valid")).With(labelsAndValues...),
		Diagnostics: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "diagnostics_total",
			Help:      "Number of parse diagnostics produced.",
		}, append(labels, "mode")).With(labelsAndValues...),
		ParseDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "parse_duration_seconds",
			Help:      "Time spent tokenizing and parsing one query.",
			Buckets:   stdprometheus.ExponentialBuckets(0.000001, 4, 10),
		}, labels).With(labelsAndValues...),
		QueryTokens: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "query_tokens",
			Help:      "Tokens per parsed query.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 2, 10),
		}, labels).With(labelsAndValues...),
		Filters: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "saved_filters",
			Help:      "Number of saved filters.",
		}, labels).With(labelsAndValues...),
		Snapshots: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "snapshots_total",
			Help:      "Number of filter library snapshots written.",
		}, append(labels, "outcome")).With(labelsAndValues...),
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served.",
		}, append(labels, "route", "code")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Queries:       discard.NewCounter(),
		Diagnostics:   discard.NewCounter(),
		ParseDuration: discard.NewHistogram(),
		QueryTokens:   discard.NewHistogram(),
		Filters:       discard.NewGauge(),
		Snapshots:     discard.NewCounter(),
		Requests:      discard.NewCounter(),
	}
}

// ObserveParse records one parsed query.
func (m *Metrics) ObserveParse(mode string, tokens, diagnostics int, took time.Duration) {
	valid := "true"
	if diagnostics > 0 {
		valid = "false"
	}
	m.Queries.With("mode", mode, "valid", valid).Add(1)
	if diagnostics > 0 {
		m.Diagnostics.With("mode", mode).Add(float64(diagnostics))
	}
	m.ParseDuration.Observe(took.Seconds())
	m.QueryTokens.Observe(float64(tokens))
}
