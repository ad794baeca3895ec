package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/parsearch/internal/metrics"
	"github.com/agbru/parsearch/internal/search"
)

// metricsNamespace prefixes every collector exposed by the server.
const metricsNamespace = "parsearch"

// serverCollectors are registered once with the default Prometheus
// registry and shared by every Metrics value.
type serverCollectors struct {
	activeRequests  prometheus.Gauge
	requestsTotal   prometheus.Counter
	requestDuration *prometheus.HistogramVec
	rejected        *prometheus.CounterVec
	search          *metrics.SearchMetrics
}

var (
	collectorsOnce sync.Once
	collectors     *serverCollectors
)

func registerCollectors() *serverCollectors {
	collectorsOnce.Do(func() {
		c := &serverCollectors{
			activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "active_requests",
				Help:      "HTTP requests currently being served.",
			}),
			requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "HTTP requests served.",
			}),
			requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by status code.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"code"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_rejected_total",
				Help:      "Search requests rejected before running, by reason.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(c.activeRequests, c.requestsTotal, c.requestDuration, c.rejected)

		sm, err := metrics.NewSearchMetrics(metricsNamespace, prometheus.DefaultRegisterer)
		if err != nil {
			panic(err)
		}
		c.search = sm
		collectors = c
	})
	return collectors
}

// Metrics is the server's view of its Prometheus collectors.
type Metrics struct {
	*serverCollectors
	handler http.Handler
}

// NewMetrics returns Metrics backed by the process-wide collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		serverCollectors: registerCollectors(),
		handler:          promhttp.Handler(),
	}
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
	m.requestsTotal.Inc()
}

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveRequest records the latency of a finished request.
func (m *Metrics) ObserveRequest(code int, seconds float64) {
	m.requestDuration.WithLabelValues(strconv.Itoa(code)).Observe(seconds)
}

// Rejected counts a request turned away by the rate limiter or the
// admission semaphore.
func (m *Metrics) Rejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// Observer returns the search observer feeding the search collectors.
func (m *Metrics) Observer() search.Observer {
	return m.search
}

// WritePrometheus serves the Prometheus text exposition.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
