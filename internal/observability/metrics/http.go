package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PortalMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	accessRecordsTotal *prometheus.CounterVec
	summariesTotal     *prometheus.CounterVec
	summaryDuration    *prometheus.HistogramVec
	downloadsTotal     *prometheus.CounterVec
	provisionTotal     *prometheus.CounterVec
}

func NewPortalMetrics(service string) *PortalMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	accessRecordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "access_records_total",
			Help:      "Access submissions by status.",
		},
		[]string{"service", "status"},
	)
	summariesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "summaries_total",
			Help:      "Material summaries by outcome.",
		},
		[]string{"service", "outcome"},
	)
	summaryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "summary_duration_seconds",
			Help:      "Summary model latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"service"},
	)
	downloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "downloads_total",
			Help:      "Downloads by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	provisionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "provision_total",
			Help:      "Material provisioning runs by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		accessRecordsTotal,
		summariesTotal,
		summaryDuration,
		downloadsTotal,
		provisionTotal,
	)

	return &PortalMetrics{
		service:            service,
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		accessRecordsTotal: accessRecordsTotal,
		summariesTotal:     summariesTotal,
		summaryDuration:    summaryDuration,
		downloadsTotal:     downloadsTotal,
		provisionTotal:     provisionTotal,
	}
}

func (m *PortalMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PortalMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/materials/"):
		return "/materials/{name}"
	default:
		return path
	}
}

func (m *PortalMetrics) ObserveAccessRecord(status string) {
	if status == "" {
		status = "unknown"
	}
	m.accessRecordsTotal.WithLabelValues(m.service, status).Inc()
}

func (m *PortalMetrics) ObserveSummary(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.summariesTotal.WithLabelValues(m.service, outcome).Inc()
	if duration > 0 {
		m.summaryDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	}
}

func (m *PortalMetrics) RecordDownload(kind, status string) {
	m.downloadsTotal.WithLabelValues(m.service, kind, status).Inc()
}

func (m *PortalMetrics) RecordProvision(result string) {
	m.provisionTotal.WithLabelValues(m.service, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
