package proftile

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics holds prometheus instrumentation for Server.
type serverMetrics struct {
	requests            *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	responseSize         *prometheus.HistogramVec
	outstandingRequests  prometheus.Gauge
	backendFetchErrors   *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proftiles",
			Name:      "requests_total",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proftiles",
			Name:      "request_duration_seconds",
		}, []string{"route", "status"}),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proftiles",
			Name:      "response_size_bytes",
		}, []string{"route"}),
		outstandingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "proftiles",
			Name:      "outstanding_requests",
		}),
		backendFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proftiles",
			Name:      "backend_fetch_errors_total",
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.requestDuration, m.responseSize, m.outstandingRequests, m.backendFetchErrors)
	}
	return m
}

// requestTracker times a single HTTP request.
type requestTracker struct {
	start   time.Time
	route   string
	metrics *serverMetrics
}

func (m *serverMetrics) startRequest(route string) *requestTracker {
	return &requestTracker{start: time.Now(), route: route, metrics: m}
}

func (r *requestTracker) finish(status, responseSize int) {
	statusString := strconv.Itoa(status)
	r.metrics.requests.WithLabelValues(r.route, statusString).Inc()
	r.metrics.requestDuration.WithLabelValues(r.route, statusString).Observe(time.Since(r.start).Seconds())
	if responseSize > 0 {
		r.metrics.responseSize.WithLabelValues(r.route).Observe(float64(responseSize))
	}
}
