package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/harmock/pkg/intercept"
)

// DefaultBuckets are the request duration histogram buckets in seconds.
// They start low since most responses are served from memory, and reach
// into the seconds for replayed network timings.
var DefaultBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Collector holds the harmock metrics and implements intercept.Observer.
// Each Collector owns its registry so several servers, or tests, can run in
// one process.
type Collector struct {
	registry *prometheus.Registry
	start    time.Time

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	routesActive    prometheus.Gauge
	reloadsTotal    *prometheus.CounterVec
}

// New creates a Collector with Go runtime and process collectors registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		start:    time.Now(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmock_requests_total",
				Help: "Total number of intercepted requests by outcome, method and status.",
			},
			[]string{"outcome", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harmock_request_duration_seconds",
				Help:    "Duration of intercepted requests in seconds, including replayed delays.",
				Buckets: DefaultBuckets,
			},
			[]string{"outcome"},
		),
		routesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "harmock_routes",
				Help: "Current number of registered routes.",
			},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmock_reloads_total",
				Help: "Total number of archive reloads by result.",
			},
			[]string{"result"},
		),
	}

	uptime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "harmock_uptime_seconds",
			Help: "Seconds since the server started.",
		},
		func() float64 { return time.Since(c.start).Seconds() },
	)

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.routesActive,
		c.reloadsTotal,
		uptime,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRequest implements intercept.Observer.
func (c *Collector) ObserveRequest(outcome intercept.Outcome, method string, status int, duration time.Duration) {
	statusLabel := "none"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	c.requestsTotal.With(prometheus.Labels{
		"outcome": string(outcome),
		"method":  methodLabel(method),
		"status":  statusLabel,
	}).Inc()
	c.requestDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

// methodLabel bounds the method label to the standard verbs. Proxied
// traffic can carry arbitrary extension methods.
func methodLabel(method string) string {
	switch m := strings.ToUpper(method); m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace:
		return m
	default:
		return "other"
	}
}

// ObserveRoutes implements intercept.Observer.
func (c *Collector) ObserveRoutes(count int) {
	c.routesActive.Set(float64(count))
}

// ObserveReload records an archive reload attempt.
func (c *Collector) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.reloadsTotal.WithLabelValues(result).Inc()
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the metrics in the Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var _ intercept.Observer = (*Collector)(nil)
