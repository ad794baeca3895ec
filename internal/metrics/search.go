package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/search"
)

// Search outcome label values.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeConfigError = "config_error"
	OutcomeFault       = "fault"
	OutcomeInterrupted = "interrupted"
	OutcomeError       = "error"
)

// SearchMetrics records completed searches in Prometheus collectors. It
// implements search.Observer.
type SearchMetrics struct {
	searches   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	scanned    prometheus.Counter
	earlyExits prometheus.Counter
	workers    prometheus.Histogram
}

var _ search.Observer = (*SearchMetrics)(nil)

// NewSearchMetrics creates the search collectors under the given namespace
// and registers them with reg.
func NewSearchMetrics(namespace string, reg prometheus.Registerer) (*SearchMetrics, error) {
	m := &SearchMetrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed searches by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time from the first worker spawn to the join.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"outcome"}),
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_scanned_total",
			Help:      "Elements compared against a target across all workers.",
		}),
		earlyExits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_early_exits_total",
			Help:      "Workers that stopped because another worker found the target.",
		}),
		workers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_workers",
			Help:      "Worker count per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
	}
	for _, c := range []prometheus.Collector{m.searches, m.duration, m.scanned, m.earlyExits, m.workers} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SearchCompleted records one search.
func (m *SearchMetrics) SearchCompleted(report search.Report, err error) {
	outcome := Outcome(report, err)
	m.searches.WithLabelValues(outcome).Inc()
	if report.Segments != nil {
		m.duration.WithLabelValues(outcome).Observe(report.Duration.Seconds())
		m.scanned.Add(float64(report.Scanned()))
		m.earlyExits.Add(float64(report.EarlyExits()))
		m.workers.Observe(float64(report.Workers))
	}
}

// Outcome maps a search result to its metric label.
func Outcome(report search.Report, err error) string {
	var fault apperrors.WorkerFault
	var interrupted apperrors.InterruptedError
	switch {
	case err == nil && report.Found:
		return OutcomeFound
	case err == nil:
		return OutcomeNotFound
	case apperrors.IsConfigError(err):
		return OutcomeConfigError
	case errors.As(err, &fault):
		return OutcomeFault
	case errors.As(err, &interrupted):
		return OutcomeInterrupted
	}
	return OutcomeError
}
