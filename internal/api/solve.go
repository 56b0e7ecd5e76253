package api

import (
	"context"
	"log"
	"time"

	"wavepick/internal/metrics"
	"wavepick/internal/model"
	"wavepick/internal/wave"
)

// progressEvery gates how often generation progress is published; small
// instances run thousands of generations per second.
const progressEvery = 10

// runJob executes one solve job to completion. It is started on its own
// goroutine by the solve handler. The solver reports no errors; store
// failures are logged and do not stop the run, which always marks the job
// done and publishes the terminal event.
func (s *Server) runJob(job model.Job, inst model.Instance, seed wave.SeedSolver) {
	ctx := context.Background()
	started := time.Now()

	job.Status = model.JobRunning
	job.StartedAt = started.UTC()
	if err := s.Store.UpdateJob(ctx, job); err != nil {
		log.Printf("job %s: mark running: %v", job.ID, err)
	}
	s.Broker.Publish(job.ID, SolveEvent{JobID: job.ID, Type: EventStarted, Status: model.JobRunning})

	in := wave.NewContext(model.ItemMaps(inst.Orders), model.ItemMaps(inst.Aisles),
		inst.NItems, inst.WaveSizeLB, inst.WaveSizeUB, job.Seed)

	if seed == nil {
		seed = wave.NoSeed{}
	}
	driver := wave.NewIWOA(in, seed)
	if job.Population > 0 {
		driver.PopulationSize = job.Population
	}
	driver.OnGeneration = func(gen int, best float64) {
		metrics.SolverGenerations.Inc()
		metrics.SolverBestFitness.WithLabelValues(job.ID).Set(best)
		if gen%progressEvery == 0 {
			s.Broker.Publish(job.ID, SolveEvent{
				JobID:       job.ID,
				Type:        EventProgress,
				Status:      model.JobRunning,
				Generation:  gen,
				BestFitness: best,
			})
		}
	}

	result, stats := driver.Solve(stopwatchFor(job.BudgetMs))

	job.Status = model.JobDone
	job.Wave = model.NewWaveOut(in, result)
	job.FinishedAt = time.Now().UTC()
	if err := s.Store.UpdateJob(ctx, job); err != nil {
		log.Printf("job %s: save result: %v", job.ID, err)
	}
	if err := s.Store.SaveSolverStats(ctx, job.TenantID, job.ID, statsMap(stats)); err != nil {
		log.Printf("job %s: save stats: %v", job.ID, err)
	}

	metrics.SolveJobs.WithLabelValues(job.Status).Inc()
	metrics.SolveDuration.Observe(time.Since(started).Seconds())
	metrics.SolverBestFitness.DeleteLabelValues(job.ID)

	s.Broker.Publish(job.ID, SolveEvent{
		JobID:       job.ID,
		Type:        EventDone,
		Status:      job.Status,
		Generation:  stats.Generations,
		BestFitness: stats.BestFitness,
		Objective:   job.Wave.Objective,
		Feasible:    job.Wave.Feasible,
	})
	log.Printf("job %s: done in %v, objective %.3f, feasible %v, %d generations",
		job.ID, time.Since(started), job.Wave.Objective, job.Wave.Feasible, stats.Generations)
}

// stopwatchFor backdates a stopwatch so that the solver's fixed runtime
// wall leaves exactly budgetMs of headroom.
func stopwatchFor(budgetMs int64) *wave.Stopwatch {
	sw := wave.NewStopwatch()
	if budgetMs > 0 && budgetMs < wave.MaxRuntime {
		sw.Start = sw.Start.Add(-time.Duration(wave.MaxRuntime-budgetMs) * time.Millisecond)
	}
	return sw
}

func statsMap(st wave.Stats) map[string]any {
	m := map[string]any{
		"generations":  st.Generations,
		"evaluations":  st.Evaluations,
		"improvements": st.Improvements,
		"bestFitness":  st.BestFitness,
	}
	if len(st.Snapshots) > 0 {
		snaps := make([]map[string]any, 0, len(st.Snapshots))
		for _, snap := range st.Snapshots {
			snaps = append(snaps, map[string]any{"generation": snap.Generation, "bestFitness": snap.BestFitness})
		}
		m["snapshots"] = snaps
	}
	return m
}
