// Package metrics provides Prometheus metrics for iconward.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan outcomes.
const (
	ScanCacheHit = "cache_hit"
	ScanRescan   = "rescan"
	ScanAbsent   = "absent"
)

var (
	// Scan metrics
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconward_scans_total",
			Help: "Total custom icon directory scans by outcome",
		},
		[]string{"outcome"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iconward_scan_duration_seconds",
			Help:    "Time spent scanning the custom icon directory",
			Buckets: prometheus.DefBuckets,
		},
	)

	iconsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconward_icons_rejected_total",
			Help: "Total custom icon files rejected during full rescans",
		},
		[]string{"reason"},
	)

	customIcons = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iconward_custom_icons",
			Help: "Number of custom icons accepted by the latest scan",
		},
	)

	// Catalog metrics
	catalogBuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iconward_catalog_builds_total",
			Help: "Total icon catalog builds",
		},
	)

	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconward_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iconward_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// WebSocket metrics
	websocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iconward_websocket_clients",
			Help: "Number of connected live-update clients",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordScan records one scan and its duration.
func RecordScan(outcome string, duration time.Duration) {
	scansTotal.WithLabelValues(outcome).Inc()
	scanDuration.Observe(duration.Seconds())
}

// RecordRejection records a rejected custom icon.
func RecordRejection(reason string) {
	iconsRejectedTotal.WithLabelValues(reason).Inc()
}

// SetCustomIcons sets the number of accepted custom icons.
func SetCustomIcons(count int) {
	customIcons.Set(float64(count))
}

// RecordCatalogBuild records a catalog build.
func RecordCatalogBuild() {
	catalogBuildsTotal.Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetWebsocketClients sets the number of connected websocket clients.
func SetWebsocketClients(count int) {
	websocketClients.Set(float64(count))
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(rw.ResponseWriter).Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics. Requests
// are labelled with the matched route pattern to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
