package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for flow counters.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the HTTP and authorization flow collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	CodesIssued    prometheus.Counter
	CodesSwept     prometheus.Counter
	TokenExchanges *prometheus.CounterVec
	UserInfo       *prometheus.CounterVec
	Logins         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Passing a
// fresh prometheus.NewRegistry() keeps tests isolated from the default one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		CodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth_codes_issued_total",
			Help: "Authorization codes issued.",
		}),
		CodesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth_codes_swept_total",
			Help: "Expired authorization codes removed by the sweeper.",
		}),
		TokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_token_exchanges_total",
			Help: "Token endpoint calls by result.",
		}, []string{"result"}),
		UserInfo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_userinfo_requests_total",
			Help: "Userinfo calls by result.",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.CodesIssued, m.CodesSwept, m.TokenExchanges, m.UserInfo, m.Logins,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Instrument records in-flight, count and latency per route pattern. The
// pattern is only known after the mux has matched, so it is read once the
// handler returns.
func (m *Metrics) Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		start := time.Now()

		sw := NewStatusWriter(w)
		next(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(sw.Status())
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	}
}

// StatusWriter remembers the status code written by a handler.
type StatusWriter struct {
	http.ResponseWriter
	code int
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	if sw, ok := w.(*StatusWriter); ok {
		return sw
	}
	return &StatusWriter{ResponseWriter: w, code: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Status() int {
	return w.code
}

func (w *StatusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
