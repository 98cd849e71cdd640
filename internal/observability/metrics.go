package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// directivity pipeline.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ResultsProduced  prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Compute engine metrics.
	ComputeDuration *prometheus.HistogramVec // labels: method={uniform_grid,uniform_grid_jitter,latin_hypercube,monte_carlo,fixed}
	HypocentreCount prometheus.Histogram
	SiteCount       prometheus.Histogram
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss}
	CacheEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "directivity",
			Name:      "requests_consumed_total",
			Help:      "Total job requests read from the request topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "directivity",
			Name:      "results_produced_total",
			Help:      "Total results written to the result topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "directivity",
			Name:      "transform_errors_total",
			Help:      "Total requests that failed to parse or compute.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "directivity",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "directivity",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "directivity",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-compute-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.25, 1, 5, 15, 30, 60},
		}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "directivity",
			Name:      "compute_duration_seconds",
			Help:      "Duration of one hypocentre sweep by sampling method.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		HypocentreCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "directivity",
			Name:      "hypocentres_per_request",
			Help:      "Number of hypocentres swept per job request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		SiteCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "directivity",
			Name:      "sites_per_request",
			Help:      "Number of sites evaluated per job request.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "directivity",
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"result"}),
		CacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "directivity",
			Name:      "result_cache_enabled",
			Help:      "1 when the result cache is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ComputeDuration,
		m.HypocentreCount,
		m.SiteCount,
		m.CacheLookups,
		m.CacheEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "directivity", Name: "requests_consumed_total"}),
		ResultsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "directivity", Name: "results_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "directivity", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "directivity", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "directivity", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "directivity", Name: "batch_processing_duration_seconds"}),
		ComputeDuration:         prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "directivity", Name: "compute_duration_seconds"}, []string{"method"}),
		HypocentreCount:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "directivity", Name: "hypocentres_per_request"}),
		SiteCount:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "directivity", Name: "sites_per_request"}),
		CacheLookups:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "directivity", Name: "result_cache_lookups_total"}, []string{"result"}),
		CacheEnabled:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "directivity", Name: "result_cache_enabled"}),
	}
}
