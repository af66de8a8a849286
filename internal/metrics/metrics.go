package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themis_passes_total",
		Help: "Reconciliation passes started.",
	})

	PassesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themis_passes_skipped_total",
		Help: "Passes skipped because one was already running.",
	})

	GamesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themis_games_fetched_total",
		Help: "Box-score documents fetched, by league.",
	}, []string{"league"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themis_fetch_errors_total",
		Help: "Provider fetch failures, by league.",
	}, []string{"league"})

	MutationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themis_mutations_submitted_total",
		Help: "Event mutations submitted, by league and action.",
	}, []string{"league", "action"})

	BatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themis_batch_failures_total",
		Help: "Bulk update submissions dropped, by league.",
	}, []string{"league"})

	LastPassDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "themis_last_pass_duration_seconds",
		Help: "Wall time of the most recent reconciliation pass.",
	})
)
