// Package metrics defines the Prometheus collectors for the image repository.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session metrics
var (
	SessionOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "imagerepo_session_open",
			Help: "Whether a database session is currently open (1) or not (0)",
		},
	)

	ConnectAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagerepo_connect_attempts_total",
			Help: "Total number of connect requests by outcome",
		},
		[]string{"outcome"}, // "opened", "reused", "failed"
	)
)

// Insert metrics
var (
	ImagesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagerepo_images_inserted_total",
			Help: "Total number of image rows inserted",
		},
	)

	ImageBytesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagerepo_image_bytes_inserted_total",
			Help: "Total number of payload bytes inserted",
		},
	)

	InsertFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagerepo_insert_failures_total",
			Help: "Total number of failed image inserts by reason",
		},
		[]string{"reason"}, // "io", "insert"
	)
)

// Operation metrics
var (
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagerepo_operation_duration_seconds",
			Help:    "Duration of repository operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)
)

// ObserveOperation records how long an operation took and how it ended.
func ObserveOperation(operation, status string, start time.Time) {
	OperationDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}
