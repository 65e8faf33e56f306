package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"floor-planner/internal/pathfind"
)

var (
	// Registry is the dedicated Prometheus registry for the planner
	Registry = prometheus.NewRegistry()
	// Searches counts A* searches by outcome (found, not_found)
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "floorplan_searches_total", Help: "A* searches by outcome."},
		[]string{"outcome"},
	)
	// SearchExpanded records how many nodes each search popped from the frontier
	SearchExpanded = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "floorplan_search_expanded_nodes", Help: "Nodes expanded per A* search.", Buckets: prometheus.ExponentialBuckets(1, 2, 12)},
	)
	// SearchDuration records search latency in seconds
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "floorplan_search_duration_seconds", Help: "A* search duration in seconds.", Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10)},
	)
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Searches)
		Registry.MustRegister(SearchExpanded)
		Registry.MustRegister(SearchDuration)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// ObserveSearch is a pathfind.Observer feeding the search collectors.
func ObserveSearch(_, _ string, r pathfind.Result) {
	outcome := "not_found"
	if r.Found {
		outcome = "found"
	}
	Searches.WithLabelValues(outcome).Inc()
	SearchExpanded.Observe(float64(r.Expanded))
	SearchDuration.Observe(r.Elapsed.Seconds())
}

var _ pathfind.Observer = ObserveSearch
