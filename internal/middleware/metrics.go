package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors in a private
// registry exposed on /metrics.
type Metrics struct {
    Registry *prometheus.Registry

    inFlight    prometheus.Gauge
    requests    *prometheus.CounterVec
    duration    *prometheus.HistogramVec
    cache       *prometheus.CounterVec
    rateLimited *prometheus.CounterVec
}

// NewMetrics registers the HTTP, cache and rate-limit collectors plus the
// process and Go runtime collectors.
func NewMetrics() *Metrics {
    m := &Metrics{
        Registry: prometheus.NewRegistry(),
        inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "fyyur",
            Subsystem: "http",
            Name:      "inflight_requests",
            Help:      "Current number of in-flight HTTP requests.",
        }),
        requests: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "fyyur",
            Subsystem: "http",
            Name:      "requests_total",
            Help:      "Total number of HTTP requests handled.",
        }, []string{"method", "route", "status"}),
        duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
            Namespace: "fyyur",
            Subsystem: "http",
            Name:      "request_duration_seconds",
            Help:      "Duration of HTTP requests.",
            Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
        }, []string{"method", "route"}),
        cache: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "fyyur",
            Subsystem: "cache",
            Name:      "lookups_total",
            Help:      "Page cache lookups by result (hit, miss, bypass).",
        }, []string{"result"}),
        rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "fyyur",
            Subsystem: "ratelimit",
            Name:      "rejections_total",
            Help:      "Requests rejected by the rate limiter, by backend.",
        }, []string{"backend"}),
    }
    m.Registry.MustRegister(
        m.inFlight,
        m.requests,
        m.duration,
        m.cache,
        m.rateLimited,
        collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
        collectors.NewGoCollector(),
    )
    return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
    h := echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
    return func(c echo.Context) error {
        c.Response().Header().Set("Cache-Control", "no-store")
        return h(c)
    }
}

// Middleware records request count, status and latency per route
// template, so /venues/1 and /venues/2 share one series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().URL.Path == "/metrics" {
                return next(c)
            }
            start := time.Now()
            m.inFlight.Inc()
            defer m.inFlight.Dec()

            err := next(c)

            status := c.Response().Status
            if err != nil {
                // The error handler has not run yet; report what it will send.
                status = http.StatusInternalServerError
                if he, ok := err.(*echo.HTTPError); ok {
                    status = he.Code
                }
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            method := strings.ToUpper(c.Request().Method)
            m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
            m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
            return err
        }
    }
}

func (m *Metrics) cacheResult(result string) {
    if m != nil {
        m.cache.WithLabelValues(result).Inc()
    }
}

func (m *Metrics) rejected(backend string) {
    if m != nil {
        m.rateLimited.WithLabelValues(backend).Inc()
    }
}
