package conformance

import (
	"github.com/c360studio/archcheck/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "archcheck"

// Metrics are the engine's Prometheus instruments.
type Metrics struct {
	filesAnalyzed prometheus.Counter
	parseFailures prometheus.Counter
	violations    *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewMetrics creates the instruments and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		filesAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_analyzed_total",
			Help:      "Total number of source files analyzed",
		}),
		parseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_failures_total",
			Help:      "Total number of files that could not be parsed",
		}),
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "violations_total",
			Help:      "Total number of reported violations by family and severity",
		}, []string{"family", "severity"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full analysis run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

func (m *Metrics) observeReport(r *model.Report) {
	m.runDuration.Observe(r.Duration.Seconds())
	for _, v := range r.Violations {
		m.violations.WithLabelValues(string(v.Family), string(v.Severity)).Inc()
	}
}
