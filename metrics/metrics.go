package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PhaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedwars_phase_transitions_total",
			Help: "Total match phase transitions",
		},
		[]string{"phase"},
	)

	OnlinePlayers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedwars_online_players",
			Help: "Players currently online",
		},
	)

	ResourcesSpawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedwars_resources_spawned_total",
			Help: "Total spawned resource units",
		},
		[]string{"tier"}, // bronze|iron|gold
	)

	Eliminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedwars_eliminations_total",
			Help: "Total player deaths by outcome",
		},
		[]string{"outcome"}, // respawn|final
	)

	ScheduledTaskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedwars_scheduled_task_failures_total",
			Help: "Total panics recovered in scheduled tasks",
		},
		[]string{"task"},
	)

	StatsOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedwars_stats_operations_total",
			Help: "Total player statistics operations",
		},
		[]string{"result"}, // success|failure|dropped
	)

	StatsOperationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bedwars_stats_operation_duration_seconds",
			Help:    "Duration of player statistics operations",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(PhaseTransitions)
	prometheus.MustRegister(OnlinePlayers)
	prometheus.MustRegister(ResourcesSpawned)
	prometheus.MustRegister(Eliminations)
	prometheus.MustRegister(ScheduledTaskFailures)
	prometheus.MustRegister(StatsOperations)
	prometheus.MustRegister(StatsOperationDuration)
}

// Handler serves all registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
