package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes. Metrics from gatherer are served on /metrics.
func SetupRoutes(handler *Handler, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/scans", handler.RunScan).Methods("POST")
	api.HandleFunc("/scans/latest", handler.GetLatest).Methods("GET")
	api.HandleFunc("/scans/latest/csv", handler.GetLatestCSV).Methods("GET")

	return r
}
