package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wavepick/internal/api"
	"wavepick/internal/ilp"
	"wavepick/internal/metrics"
)

func main() {
	srv, err := api.NewServer(ilp.Solver{})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	metrics.RegisterDefault()

	mux := http.NewServeMux()

	// Instances
	mux.HandleFunc("/v1/instances", srv.RateLimit(srv.InstancesHandler))
	mux.HandleFunc("/v1/instances/", srv.RateLimit(srv.InstanceByIDHandler))

	// Solve jobs
	mux.HandleFunc("/v1/solve", srv.RateLimit(srv.SolveHandler))
	mux.HandleFunc("/v1/jobs", srv.RateLimit(srv.JobsIndexHandler))
	mux.HandleFunc("/v1/jobs/ws", srv.JobsWSHandler)
	mux.HandleFunc("/v1/jobs/", srv.JobByIDHandler) // includes /events/stream

	// Admin
	mux.HandleFunc("/v1/admin/solver-stats", srv.SolverStatsHandler)

	// Health
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)

	// Prometheus
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
