package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	autosaveRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corkboard_client",
			Name:      "autosave_runs_total",
			Help:      "Autosave attempts by outcome (saved, synced, failed).",
		},
		[]string{"outcome"},
	)

	autosaveRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "corkboard_client",
			Name:      "autosave_retries_total",
			Help:      "Individual save attempts that failed and were retried.",
		},
	)
)
