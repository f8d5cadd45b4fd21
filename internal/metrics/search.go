package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lookdex",
			Name:      "queries_total",
			Help:      "Total number of search queries",
		},
		[]string{"status"}, // "ok" / "malformed" / "empty" / "error"
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lookdex",
			Name:      "query_duration_seconds",
			Help:      "Query compile and execute duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"sort"},
	)

	CompileCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lookdex",
			Name:      "compile_cache_total",
			Help:      "Shared compiled-plan cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CompileFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lookdex",
			Name:      "compile_failures_total",
			Help:      "Total query compile failures",
		},
		[]string{"kind"}, // "malformed" / "fatal" / "other"
	)

	FacetScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lookdex",
			Name:      "facet_scans_total",
			Help:      "Total uncapped scans run for facet counts",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(CompileCacheTotal)
	prometheus.MustRegister(CompileFailuresTotal)
	prometheus.MustRegister(FacetScansTotal)
	searchMetricsRegistered = true
}
