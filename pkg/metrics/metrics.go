// Package metrics owns the Prometheus registry and the collectors the
// service exposes on /metrics.
package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/clientes/pkg/middleware"
)

// Blob operation results.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultError   = "error"
)

// Metrics holds a private registry and the service collectors.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	blobOps  *prometheus.CounterVec
}

// New creates a registry with process, runtime, HTTP, and blob collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed by method, path, and status.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		blobOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_operations_total",
			Help:      "Blob store operations by operation and result.",
		}, []string{"op", "result"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.inflight,
		m.blobOps,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Register adds c, ignoring collectors that are already registered.
func (m *Metrics) Register(c prometheus.Collector) error {
	if err := m.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// RegisterDB exposes connection pool statistics for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.Register(collectors.NewDBStatsCollector(db, name))
}

// BlobOperation counts one blob store call.
func (m *Metrics) BlobOperation(op, result string) {
	m.blobOps.WithLabelValues(op, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware instruments requests with count, latency, and inflight metrics.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			path := NormalizePath(r.URL.Path)

			m.inflight.Inc()
			start := time.Now()
			rec := middleware.NewStatusRecorder(w)

			defer func() {
				m.inflight.Dec()
				m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
				m.requests.WithLabelValues(method, path, strconv.Itoa(rec.Status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// NormalizePath collapses numeric segments to ":n" so client keys and page
// numbers do not explode label cardinality.
func NormalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}

	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segments {
		if isDigits(seg) {
			segments[i] = ":n"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
