package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the application
type Metrics struct {
	SyncRuns          *prometheus.CounterVec
	SyncDuration      prometheus.Histogram
	LastSuccessfulRun prometheus.Gauge
	RecordsChanged    *prometheus.CounterVec
	SyncErrors        *prometheus.CounterVec
	Nominations       *prometheus.CounterVec
	RepoQueryDuration *prometheus.HistogramVec
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SyncRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "laurel_sync_runs_total",
			Help: "Total directory sync runs by terminal status.",
		}, []string{"status"}),
		SyncDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "laurel_sync_duration_seconds",
			Help:    "Duration of a full directory sync.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastSuccessfulRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "laurel_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful directory sync.",
		}),
		RecordsChanged: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "laurel_sync_records_changed_total",
			Help: "Employee records written by sync, by operation.",
		}, []string{"operation"}), // create, update, deactivate
		SyncErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "laurel_sync_record_errors_total",
			Help: "Non-fatal per-record sync errors, by operation.",
		}, []string{"operation"}),
		Nominations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "laurel_nominations_total",
			Help: "Nomination attempts by result.",
		}, []string{"result"}),
		RepoQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "laurel_repository_query_duration_seconds",
			Help:    "Duration of repository calls made by sync.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}),
	}

	m.SyncRuns.WithLabelValues("success")
	m.SyncRuns.WithLabelValues("partial")
	m.SyncRuns.WithLabelValues("failure")

	return m
}

// NewNop returns metrics registered with a private registry, for callers
// that do not export them
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
