package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"wavepick/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	instances map[string]model.Instance // id -> instance
	instTen   map[string][]string       // tenant -> instance ids
	jobs      map[string]model.Job      // id -> job
	jobsTen   map[string][]string       // tenant -> job ids
	stats     map[string][]map[string]any
}

func NewMemory() *Memory {
	return &Memory{
		instances: map[string]model.Instance{},
		instTen:   map[string][]string{},
		jobs:      map[string]model.Job{},
		jobsTen:   map[string][]string{},
		stats:     map[string][]map[string]any{},
	}
}

func (m *Memory) CreateInstance(ctx context.Context, tenantID string, in model.InstanceIn) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst := model.Instance{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Name:       in.Name,
		NItems:     in.NItems,
		NOrders:    len(in.Orders),
		NAisles:    len(in.Aisles),
		Orders:     in.Orders,
		Aisles:     in.Aisles,
		WaveSizeLB: in.WaveSizeLB,
		WaveSizeUB: in.WaveSizeUB,
		CreatedAt:  time.Now().UTC(),
	}
	m.instances[inst.ID] = inst
	m.instTen[tenantID] = append(m.instTen[tenantID], inst.ID)
	return inst, nil
}

func (m *Memory) GetInstance(ctx context.Context, tenantID, id string) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok || inst.TenantID != tenantID {
		return model.Instance{}, ErrNotFound
	}
	return inst, nil
}

func (m *Memory) ListInstances(ctx context.Context, tenantID, cursor string, limit int) ([]model.Instance, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	ids := m.instTen[tenantID]
	out := []model.Instance{}
	next := ""
	for _, id := range page(ids, cursor, limit) {
		inst := m.instances[id]
		inst.Orders, inst.Aisles = nil, nil // listing stays light
		out = append(out, inst)
		next = id
	}
	if len(out) < limit || len(out) == 0 {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) CreateJob(ctx context.Context, job model.Job) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.CreatedAt = time.Now().UTC()
	m.jobs[job.ID] = job
	m.jobsTen[job.TenantID] = append(m.jobsTen[job.TenantID], job.ID)
	return job, nil
}

func (m *Memory) GetJob(ctx context.Context, tenantID, id string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.TenantID != tenantID {
		return model.Job{}, ErrNotFound
	}
	return job, nil
}

func (m *Memory) UpdateJob(ctx context.Context, job model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *Memory) ListJobs(ctx context.Context, tenantID, instanceID, cursor string, limit int) ([]model.Job, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	ids := m.jobsTen[tenantID]
	if instanceID != "" {
		filtered := []string{}
		for _, id := range ids {
			if m.jobs[id].InstanceID == instanceID {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	}
	out := []model.Job{}
	next := ""
	for _, id := range page(ids, cursor, limit) {
		out = append(out, m.jobs[id])
		next = id
	}
	if len(out) < limit || len(out) == 0 {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) SaveSolverStats(ctx context.Context, tenantID, jobID string, stats map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[tenantID+"/"+jobID] = append(m.stats[tenantID+"/"+jobID], stats)
	return nil
}

func (m *Memory) ListSolverStats(ctx context.Context, tenantID, jobID string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any{}, m.stats[tenantID+"/"+jobID]...), nil
}

func page(ids []string, cursor string, limit int) []string {
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
