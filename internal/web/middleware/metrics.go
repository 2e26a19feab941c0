package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	route    func(path string) string
}

// NewMetrics registers the HTTP collectors with reg. route maps a request
// path to the label value; it should collapse unknown paths into one value
// to keep label cardinality bounded.
func NewMetrics(reg prometheus.Registerer, route func(path string) string) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survey",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		route: route,
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Middleware observes every request passing through it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrapResponseWriter(w)

		next.ServeHTTP(ww, r)

		route := m.route(r.URL.Path)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
