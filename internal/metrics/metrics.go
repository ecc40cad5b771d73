// Package metrics records per-run pipeline metrics and pushes them to a Prometheus Pushgateway.
//
// A batch run exits before it could be scraped, so metrics are collected in a
// private registry and pushed once at the end of the run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "movie_etl"

// Recorder holds the metrics of one pipeline run
type Recorder struct {
	registry *prometheus.Registry

	// RowsRead counts rows read per input dataset (movies, ratings).
	RowsRead *prometheus.CounterVec
	// Lookups counts metadata lookups by outcome status.
	Lookups *prometheus.CounterVec
	// RowsInserted counts rows written per table.
	RowsInserted *prometheus.CounterVec
	// RunDuration is the wall time of the last run.
	RunDuration prometheus.Gauge
	// LastSuccess is the unix time of the last successful run.
	LastSuccess prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		RowsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_read_total",
				Help:      "Total number of rows read from the input files",
			},
			[]string{"dataset"},
		),
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Total number of metadata lookups by outcome",
			},
			[]string{"status"},
		),
		RowsInserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_inserted_total",
				Help:      "Total number of rows inserted per table",
			},
			[]string{"table"},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run in seconds",
			},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful run",
			},
		),
	}
}

// Registry returns the registry the metrics are registered with
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRowsRead adds n rows for the dataset
func (r *Recorder) RecordRowsRead(dataset string, n int) {
	r.RowsRead.WithLabelValues(dataset).Add(float64(n))
}

// RecordLookup adds n lookups with the given status
func (r *Recorder) RecordLookup(status string, n int) {
	r.Lookups.WithLabelValues(status).Add(float64(n))
}

// RecordRowsInserted adds n inserted rows for the table
func (r *Recorder) RecordRowsInserted(table string, n int64) {
	r.RowsInserted.WithLabelValues(table).Add(float64(n))
}

// RecordRun sets the run duration and, for successful runs, the success timestamp
func (r *Recorder) RecordRun(duration time.Duration, finishedAt time.Time, success bool) {
	r.RunDuration.Set(duration.Seconds())
	if success {
		r.LastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// Push sends all metrics to the Pushgateway at url, replacing the job's previous group
func (r *Recorder) Push(ctx context.Context, url string, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
