package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clauseguard_http_requests_total",
	Help: "Total number of HTTP requests labelled by path and status",
}, []string{"path", "status"})

var providerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clauseguard_provider_calls_total",
	Help: "Model provider invocations labelled by provider and outcome",
}, []string{"provider", "outcome"})

var chunksExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "clauseguard_chunks_exhausted_total",
	Help: "Chunks that produced no valid findings after all retry attempts",
})

var documentsAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clauseguard_documents_analyzed_total",
	Help: "Documents that finished analysis labelled by final status",
}, []string{"status"})

var jobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "clauseguard_analysis_jobs_in_flight",
	Help: "Analysis jobs currently being processed",
})

var analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "clauseguard_analysis_duration_seconds",
	Help:    "End-to-end duration of a single document analysis",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300},
})

var providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "clauseguard_provider_latency_seconds",
	Help:    "Latency of model provider calls",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"provider"})

func ObserveHTTPRequest(path, status string) {
	httpRequestsTotal.WithLabelValues(path, status).Inc()
}

func ObserveProviderCall(provider, outcome string, elapsed time.Duration) {
	providerCallsTotal.WithLabelValues(provider, outcome).Inc()
	providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func IncrementChunksExhausted() {
	chunksExhaustedTotal.Inc()
}

func ObserveDocumentAnalyzed(status string, elapsed time.Duration) {
	documentsAnalyzedTotal.WithLabelValues(status).Inc()
	analysisDuration.Observe(elapsed.Seconds())
}

func IncrementJobsInFlight() {
	jobsInFlight.Inc()
}

func DecrementJobsInFlight() {
	jobsInFlight.Dec()
}
