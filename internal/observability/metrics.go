package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API, scan loop, and
// notification paths.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	firesArmedTotal        prometheus.Counter
	staleFiresSkippedTotal prometheus.Counter
	pushesSentTotal        *prometheus.CounterVec
	pushesFailedTotal      *prometheus.CounterVec
	snoozesTotal           prometheus.Counter
	actionsTotal           *prometheus.CounterVec
	scanDuration           prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "medremind",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		firesArmedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "fires_armed_total",
				Help:      "Total number of reminder fires armed by the scan loop.",
			},
		),
		staleFiresSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "stale_fires_skipped_total",
				Help:      "Total number of fires dropped because the log entry was no longer pending at send time.",
			},
		),
		pushesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "pushes_sent_total",
				Help:      "Total number of push notifications delivered to the gateway, by trigger source.",
			},
			[]string{"source"},
		),
		pushesFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "pushes_failed_total",
				Help:      "Total number of push attempts that failed, by trigger source and reason.",
			},
			[]string{"source", "reason"},
		),
		snoozesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "snoozes_total",
				Help:      "Total number of reminders snoozed by users.",
			},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medremind",
				Name:      "actions_total",
				Help:      "Total number of user actions applied to log entries.",
			},
			[]string{"action"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "medremind",
				Name:      "scan_duration_seconds",
				Help:      "Duration of one scan loop tick in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.firesArmedTotal,
		m.staleFiresSkippedTotal,
		m.pushesSentTotal,
		m.pushesFailedTotal,
		m.snoozesTotal,
		m.actionsTotal,
		m.scanDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncFireArmed() {
	if m == nil {
		return
	}
	m.firesArmedTotal.Inc()
}

func (m *Metrics) IncStaleFireSkipped() {
	if m == nil {
		return
	}
	m.staleFiresSkippedTotal.Inc()
}

func (m *Metrics) IncPushSent(source string) {
	if m == nil {
		return
	}
	m.pushesSentTotal.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *Metrics) IncPushFailed(source string, reason string) {
	if m == nil {
		return
	}
	m.pushesFailedTotal.WithLabelValues(normalizeLabel(source), normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncSnooze() {
	if m == nil {
		return
	}
	m.snoozesTotal.Inc()
}

func (m *Metrics) IncAction(action string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *Metrics) ObserveScanDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.scanDuration.Observe(seconds)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
