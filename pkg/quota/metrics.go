package quota

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for quota arbitration.
var (
	quotaRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "twharvest_quota_remaining",
		Help: "Calls remaining in the current window, as last reported by rate_limit_status",
	}, []string{"resource", "endpoint", "credential"})

	statusQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_rate_limit_status_queries_total",
		Help: "Total number of rate_limit_status calls",
	}, []string{"resource"})

	statusQueriesPacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_rate_limit_status_paced_total",
		Help: "Total number of rate_limit_status calls held back by client-side pacing",
	}, []string{"resource"})

	credentialSwitchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_credential_switches_total",
		Help: "Total number of times the arbiter changed the active credential",
	}, []string{"resource"})

	rateLimitSleepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twharvest_rate_limit_sleeps_total",
		Help: "Total number of waits for a quota window to reset",
	}, []string{"resource"})

	rateLimitSleepSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "twharvest_rate_limit_sleep_seconds",
		Help:    "Duration of waits for a quota window to reset",
		Buckets: []float64{5, 30, 60, 180, 300, 600, 900},
	})
)
