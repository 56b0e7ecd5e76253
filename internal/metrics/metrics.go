package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolveJobs counts solve jobs by terminal status.
	SolveJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solve_jobs_total", Help: "Solve jobs by terminal status."},
		[]string{"status"},
	)
	// SolveDuration tracks end-to-end solve durations in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solve job duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 180, 600}},
	)
	// SolverGenerations counts optimizer generations across all jobs.
	SolverGenerations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_generations_total", Help: "Optimizer generations executed."},
	)
	// SolverBestFitness exposes the best fitness of the most recent
	// generation per running job.
	SolverBestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "solver_best_fitness", Help: "Best fitness seen by a running solve job."},
		[]string{"job"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolveJobs)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolverGenerations)
		Registry.MustRegister(SolverBestFitness)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
