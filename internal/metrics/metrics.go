package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// ProviderRequests counts directions provider attempts by outcome
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "directions_provider_requests_total", Help: "Directions provider attempts by outcome."},
		[]string{"outcome"},
	)
	// ProviderLatency tracks directions provider round trips in seconds
	ProviderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "directions_provider_latency_seconds", Help: "Directions provider latency in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}},
	)

	// DispatchOutcomes counts closest-vehicle searches by result
	DispatchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_outcomes_total", Help: "Closest-vehicle searches by result."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(ProviderLatency)
		Registry.MustRegister(DispatchOutcomes)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
