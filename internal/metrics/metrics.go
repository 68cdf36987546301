// Package metrics holds the prometheus collectors of the preview service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "labelkit"

// Export outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics records request and export activity. It is itself a
// prometheus.Collector so it can be registered in one call.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	exportsTotal    *prometheus.CounterVec
	exportDuration  *prometheus.HistogramVec
	exportBytes     *prometheus.HistogramVec
	validations     *prometheus.CounterVec
	sceneObjects    prometheus.Histogram
}

// New creates the collectors and registers them in registry. A nil
// registry gets a fresh one.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}
	m.init()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) init() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "exports_total",
			Help:      "Total number of scene exports",
		},
		[]string{"format", "status"},
	)
	m.exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "export_duration_seconds",
			Help:      "Time taken to render a scene",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"format"},
	)
	m.exportBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "export_size_bytes",
			Help:      "Size of rendered output",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB to 16MiB
		},
		[]string{"format"},
	)
	m.validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validations_total",
			Help:      "Total number of scene validations",
		},
		[]string{"result"},
	)
	m.sceneObjects = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "scene_objects",
			Help:      "Number of top-level objects in received scenes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.exportsTotal,
		m.exportDuration,
		m.exportBytes,
		m.validations,
		m.sceneObjects,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordExport counts one export. size is ignored for failed exports.
func (m *Metrics) RecordExport(format string, d time.Duration, size int, err error) {
	if err != nil {
		m.exportsTotal.WithLabelValues(format, StatusError).Inc()
		return
	}
	m.exportsTotal.WithLabelValues(format, StatusSuccess).Inc()
	m.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	m.exportBytes.WithLabelValues(format).Observe(float64(size))
}

// RecordValidation counts one validation with its outcome.
func (m *Metrics) RecordValidation(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validations.WithLabelValues(result).Inc()
}

// ObserveScene records the size of a received scene.
func (m *Metrics) ObserveScene(objects int) {
	m.sceneObjects.Observe(float64(objects))
}
