// Package metrics exposes Prometheus metrics for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render modes.
const (
	ModeAbsolute   = "absolute"
	ModeNormalized = "normalized"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Rows per loaded table
	DatasetRows *prometheus.GaugeVec

	// Time spent reading and shaping the dataset at startup
	LoadDuration prometheus.Histogram

	// Figure renders by mode
	Renders *prometheus.CounterVec

	RenderDuration prometheus.Histogram

	// HTTP requests by route and status code
	Requests *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec

	RateLimited prometheus.Counter
}

// New creates a registry with the Go and process collectors and registers
// every dashboard metric on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DatasetRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "previaje_dataset_rows",
			Help: "Rows loaded per table",
		}, []string{"table"}),

		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "previaje_dataset_load_duration_seconds",
			Help:    "Duration of the startup dataset load",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "previaje_figure_renders_total",
			Help: "Total figure renders by mode",
		}, []string{"mode"}),

		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "previaje_figure_render_duration_seconds",
			Help:    "Duration of one map and scatter render",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),

		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "previaje_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "code"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "previaje_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "previaje_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limit",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SetTableRows records the row count of a loaded table.
func (m *Metrics) SetTableRows(table string, rows int) {
	if m != nil {
		m.DatasetRows.WithLabelValues(table).Set(float64(rows))
	}
}

// ObserveLoad records the duration of the dataset load.
func (m *Metrics) ObserveLoad(d time.Duration) {
	if m != nil {
		m.LoadDuration.Observe(d.Seconds())
	}
}

// ObserveRender records one render.
func (m *Metrics) ObserveRender(normalize bool, d time.Duration) {
	if m == nil {
		return
	}
	mode := ModeAbsolute
	if normalize {
		mode = ModeNormalized
	}
	m.Renders.WithLabelValues(mode).Inc()
	m.RenderDuration.Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncrementRateLimited counts a rejected request.
func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
