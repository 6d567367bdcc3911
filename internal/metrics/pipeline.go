package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "pipeline_requests_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"}, // "ok" / "degraded"
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geodex",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"}, // "intent" / "geocode" / "spatial" / "retrieve" / "synthesize"
	)

	PipelineResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "geodex",
			Name:      "pipeline_results_returned",
			Help:      "Number of dataset results returned per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "geocode_requests_total",
			Help:      "Total number of geocoding lookups",
		},
		[]string{"status"}, // "success" / "not_found" / "error"
	)

	SpatialFilterTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "spatial_filter_total",
			Help:      "Spatial filter outcomes",
		},
		[]string{"outcome"}, // "hit" / "empty" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineResultsReturned)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(SpatialFilterTotal)
	pipelineMetricsRegistered = true
}
