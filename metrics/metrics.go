// Package metrics - Prometheus instrumentation for the video analysis
// service. Metric names, labels, and buckets follow the service's
// monitoring contract; the engine itself never records metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's metric set on its own registry, so
// tests can build isolated collectors without double-registration
// panics.
type Collector struct {
	registry *prometheus.Registry

	videosProcessed prometheus.Counter
	processingErrs  *prometheus.CounterVec
	motionDetected  prometheus.Counter
	processingTime  prometheus.Gauge
	durations       prometheus.Histogram
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		videosProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "videos_processed_total",
			Help: "Total number of videos processed",
		}),
		processingErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "videos_processing_errors_total",
			Help: "Total number of processing errors",
		}, []string{"error_type"}),
		motionDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "videos_motion_detected_total",
			Help: "Total number of videos with detected motion",
		}),
		processingTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "videos_processing_time_seconds",
			Help: "Average video processing time in seconds",
		}),
		durations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "processing_duration_seconds",
			Help:    "Video processing duration distribution",
			Buckets: []float64{0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0},
		}),
	}

	c.registry.MustRegister(c.videosProcessed, c.processingErrs, c.motionDetected, c.processingTime, c.durations)
	return c
}

// RecordVideoProcessed counts a successfully processed video.
func (c *Collector) RecordVideoProcessed() {
	c.videosProcessed.Inc()
}

// RecordProcessingError counts a processing failure by error type.
func (c *Collector) RecordProcessingError(errorType string) {
	c.processingErrs.WithLabelValues(errorType).Inc()
}

// RecordMotionDetected counts a video classified as containing motion.
func (c *Collector) RecordMotionDetected() {
	c.motionDetected.Inc()
}

// UpdateProcessingTime records the duration of one analysis pass.
func (c *Collector) UpdateProcessingTime(seconds float64) {
	c.processingTime.Set(seconds)
	c.durations.Observe(seconds)
}

// Handler serves the Prometheus exposition format for this
// collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
