package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querycache_lookups_total",
		Help: "Cache lookups by resource and result (fresh, stale, miss).",
	}, []string{"resource", "result"})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querycache_fetches_total",
		Help: "Backend fetches by resource and outcome.",
	}, []string{"resource", "outcome"})

	sharedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querycache_shared_fetches_total",
		Help: "Reads served by joining an in-flight fetch.",
	}, []string{"resource"})

	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querycache_invalidations_total",
		Help: "Resource invalidations by origin.",
	}, []string{"resource", "origin"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querycache_mutations_total",
		Help: "Mutations by name and outcome.",
	}, []string{"mutation", "outcome"})

	entriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "querycache_entries",
		Help: "Entries currently held.",
	})
)
