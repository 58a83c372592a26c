package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_fetch_pages_total",
		Help: "Pages fetched, by quota resource",
	}, []string{"resource"})

	itemsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_fetch_items_total",
		Help: "Items fetched, by quota resource",
	}, []string{"resource"})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_fetch_errors_total",
		Help: "Failed page requests, by quota resource and kind",
	}, []string{"resource", "kind"})

	fetchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_fetch_outcomes_total",
		Help: "Finished fetch loops, by quota resource and final state",
	}, []string{"resource", "state"})
)
