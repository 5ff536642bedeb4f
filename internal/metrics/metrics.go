// Package metrics exports Prometheus metrics for table extraction batches.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsawler/gridshot"
)

// Recorder holds Prometheus metrics for the extraction pipeline. It
// implements gridshot.Observer.
//
// Every Recorder owns its registry, so several can coexist in one process
// (tests, embedded servers) without duplicate registration panics.
//
// Metrics:
//   - gridshot_images_total{status} - images processed, "ok" or "failed"
//   - gridshot_ocr_duration_seconds - histogram of engine call latency
//   - gridshot_rows_total{stage} - rows seen at "raw", "kept" and "duplicate"
//   - gridshot_batches_total - completed batches
//   - gridshot_batch_duration_seconds - histogram of batch wall time
type Recorder struct {
	registry *prometheus.Registry

	ImagesTotal   *prometheus.CounterVec
	OCRDuration   prometheus.Histogram
	RowsTotal     *prometheus.CounterVec
	BatchesTotal  prometheus.Counter
	BatchDuration prometheus.Histogram
}

// NewRecorder creates a Recorder with a fresh registry that also carries
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ImagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridshot_images_total",
				Help: "Total number of images processed",
			},
			[]string{"status"}, // "ok" or "failed"
		),
		OCRDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gridshot_ocr_duration_seconds",
				Help:    "Duration of OCR engine calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridshot_rows_total",
				Help: "Total number of table rows by pipeline stage",
			},
			[]string{"stage"}, // "raw", "kept", "duplicate"
		),
		BatchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gridshot_batches_total",
				Help: "Total number of completed batches",
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gridshot_batch_duration_seconds",
				Help:    "Duration of batches in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
	}
}

// ObserveImage records one image result.
func (r *Recorder) ObserveImage(res gridshot.ImageResult) {
	if res.Failed() {
		r.ImagesTotal.WithLabelValues("failed").Inc()
	} else {
		r.ImagesTotal.WithLabelValues("ok").Inc()
	}
	if res.OCRDuration > 0 {
		r.OCRDuration.Observe(res.OCRDuration.Seconds())
	}
}

// ObserveBatch records a completed batch.
func (r *Recorder) ObserveBatch(stats gridshot.BatchStats) {
	r.BatchesTotal.Inc()
	r.BatchDuration.Observe(stats.Duration.Seconds())
	r.RowsTotal.WithLabelValues("raw").Add(float64(stats.RawRows))
	r.RowsTotal.WithLabelValues("kept").Add(float64(stats.KeptRows))
	r.RowsTotal.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

var _ gridshot.Observer = (*Recorder)(nil)
