package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	importRowsTotal       *prometheus.CounterVec
	importBatchesTotal    *prometheus.CounterVec
	marksheetComputations prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marksheet_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marksheet_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marksheet_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		importRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marksheet_import_rows_total",
			Help: "Spreadsheet import rows processed, by sheet and outcome.",
		}, []string{"sheet", "outcome"})

		importBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marksheet_import_batches_total",
			Help: "Workbook import requests processed, by result.",
		}, []string{"result"})

		marksheetComputations = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marksheet_computations_total",
			Help: "Marksheet computation runs performed.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			importRowsTotal,
			importBatchesTotal,
			marksheetComputations,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ImportRows exposes the per-row import outcome counter.
func ImportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return importRowsTotal
}

// ImportBatches exposes the per-request import result counter.
func ImportBatches() *prometheus.CounterVec {
	RegisterMetrics()
	return importBatchesTotal
}

// MarksheetComputations exposes the computation run counter.
func MarksheetComputations() prometheus.Counter {
	RegisterMetrics()
	return marksheetComputations
}
