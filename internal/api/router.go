package api

import (
	"net/http"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/handlers"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters). repo and cache may be nil when the corresponding
// backing services are not configured.
func NewRouter(provider ports.RoutingProvider, cache ports.DistanceCache, repo ports.StopRepository) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Provider: provider, Cache: cache}
	tripHandler := &handlers.TripHandler{Repo: repo, Provider: provider, Cache: cache}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/routes/insert-stop", routeHandler.InsertStop)
	mux.HandleFunc("/trips/optimize-day", tripHandler.OptimizeDay)

	return requestIDMiddleware(loggingMiddleware(mux))
}
