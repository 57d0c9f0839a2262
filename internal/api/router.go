package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"truck-dispatch-service/internal/api/handlers"
	"truck-dispatch-service/internal/metrics"
	"truck-dispatch-service/internal/ports"
	"truck-dispatch-service/internal/services"
)

// Dependencies of the HTTP API. Areas, Vehicles and Routes may be nil when
// no store is configured; requests must then carry their own data.
type Deps struct {
	Optimizer services.RouteOptimizer
	Finder    handlers.Dispatcher
	Areas     ports.HighRiskAreaRepository
	Vehicles  ports.VehicleRepository
	Routes    ports.RouteRepository

	VehicleSearchPrecision uint
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Optimizer: d.Optimizer,
		Areas:     d.Areas,
		Routes:    d.Routes,
	}
	dispatchHandler := &handlers.DispatchHandler{
		Finder:          d.Finder,
		Areas:           d.Areas,
		Vehicles:        d.Vehicles,
		SearchPrecision: d.VehicleSearchPrecision,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/dispatch", dispatchHandler.Dispatch)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	known := map[string]bool{
		"/health":          true,
		"/routes/optimize": true,
		"/dispatch":        true,
		"/metrics":         true,
	}
	return requestIDMiddleware(loggingMiddleware(known, mux))
}
