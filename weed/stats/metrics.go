package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "SeaweedFS"
)

var (
	Gather = prometheus.NewRegistry()

	RaidzMapCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "raidz",
			Name:      "map_total",
			Help:      "Counter of block addresses resolved to child extents.",
		}, []string{"type"})

	RaidzParityRotationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "raidz",
			Name:      "parity_rotations",
			Help:      "Counter of single-parity maps that swapped their first two columns.",
		})

	RaidzMapErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "raidz",
			Name:      "map_errors",
			Help:      "Counter of block addresses that could not be resolved.",
		}, []string{"reason"})

	RaidzColumnsHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "raidz",
			Name:      "accessed_columns",
			Help:      "Bucketed histogram of columns touched per resolved block.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}, []string{"type"})
)

func init() {
	Gather.MustRegister(RaidzMapCounter)
	Gather.MustRegister(RaidzParityRotationCounter)
	Gather.MustRegister(RaidzMapErrorCounter)
	Gather.MustRegister(RaidzColumnsHistogram)
}

// MetricsHandler serves the registry in the prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Gather, promhttp.HandlerOpts{})
}
