package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wavepick/internal/model"
	"wavepick/internal/store"
	"wavepick/internal/wave"
)

func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// InstancesHandler serves POST /v1/instances and GET /v1/instances.
func (s *Server) InstancesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	switch r.Method {
	case http.MethodPost:
		var in model.InstanceIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			badRequest(w, err.Error(), r.URL.Path)
			return
		}
		if err := validateInstance(in); err != nil {
			writeProblem(w, http.StatusUnprocessableEntity, "invalid instance", err.Error(), r.URL.Path)
			return
		}
		inst, err := s.Store.CreateInstance(ctx, tenant, in)
		if err != nil {
			storeError(w, err, r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, inst)
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, next, err := s.Store.ListInstances(ctx, tenant, r.URL.Query().Get("cursor"), limit)
		if err != nil {
			storeError(w, err, r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		methodNotAllowed(w, r.URL.Path)
	}
}

// InstanceByIDHandler serves GET /v1/instances/{id}.
func (s *Server) InstanceByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r.URL.Path)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/instances/")
	inst, err := s.Store.GetInstance(ctx, tenant, id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "instance", r.URL.Path)
		return
	}
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// SolveHandler serves POST /v1/solve: it creates a job and runs it on a
// background goroutine.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r.URL.Path)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error(), r.URL.Path)
		return
	}
	inst, err := s.Store.GetInstance(ctx, tenant, req.InstanceID)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "instance", r.URL.Path)
		return
	}
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	if req.TimeBudgetMs < 0 || req.TimeBudgetMs > wave.MaxRuntime {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid budget",
			fmt.Sprintf("timeBudgetMs must be in [0, %d]", wave.MaxRuntime), r.URL.Path)
		return
	}

	job := model.Job{
		TenantID:   tenant,
		InstanceID: inst.ID,
		Status:     model.JobQueued,
		Seed:       req.Seed,
		Population: req.PopulationSize,
		BudgetMs:   req.TimeBudgetMs,
	}
	job, err = s.Store.CreateJob(ctx, job)
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	seed := s.Seed
	if req.SkipSeedSolver {
		seed = wave.NoSeed{}
	}
	go s.runJob(job, inst, seed)
	writeJSON(w, http.StatusAccepted, job)
}

// JobsIndexHandler serves GET /v1/jobs.
func (s *Server) JobsIndexHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r.URL.Path)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, next, err := s.Store.ListJobs(ctx, tenant, r.URL.Query().Get("instanceId"), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// JobByIDHandler serves GET /v1/jobs/{id} and /v1/jobs/{id}/events/stream.
func (s *Server) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r.URL.Path)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id, ok := strings.CutSuffix(rest, "/events/stream"); ok {
		s.streamJobEvents(w, r, tenant, id)
		return
	}
	job, err := s.Store.GetJob(ctx, tenant, rest)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "job", r.URL.Path)
		return
	}
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// streamJobEvents bridges broker events for one job onto an SSE response.
// The broker replays the latest event on subscribe and closes the channel
// after the terminal event, so the stream ends with the job.
func (s *Server) streamJobEvents(w http.ResponseWriter, r *http.Request, tenant, id string) {
	if _, err := s.Store.GetJob(r.Context(), tenant, id); err != nil {
		notFound(w, "job", r.URL.Path)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			payload, _ := json.Marshal(evt)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			flusher.Flush()
			if evt.Terminal() {
				return
			}
		}
	}
}

// SolverStatsHandler serves GET /v1/admin/solver-stats?jobId=...
func (s *Server) SolverStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, tenant := s.withTenant(r)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r.URL.Path)
		return
	}
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		badRequest(w, "jobId required", r.URL.Path)
		return
	}
	stats, err := s.Store.ListSolverStats(ctx, tenant, jobID)
	if err != nil {
		storeError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": stats})
}

func validateInstance(in model.InstanceIn) error {
	if in.NItems < 1 {
		return fmt.Errorf("nItems must be at least 1")
	}
	if in.WaveSizeLB < 0 || in.WaveSizeLB > in.WaveSizeUB {
		return fmt.Errorf("wave size bounds must satisfy 0 <= LB <= UB")
	}
	for kind, lists := range map[string][][]model.ItemCount{"orders": in.Orders, "aisles": in.Aisles} {
		for i, list := range lists {
			for _, ic := range list {
				if ic.Item < 0 || ic.Item >= in.NItems {
					return fmt.Errorf("%s[%d]: item %d out of range", kind, i, ic.Item)
				}
				if ic.Qty < 1 {
					return fmt.Errorf("%s[%d]: quantity must be positive", kind, i)
				}
			}
		}
	}
	return nil
}
