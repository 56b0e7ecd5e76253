package store

import (
	"context"
	"errors"
	"testing"

	"wavepick/internal/model"
)

func testInstanceIn() model.InstanceIn {
	return model.InstanceIn{
		Name:       "tiny",
		NItems:     1,
		Orders:     [][]model.ItemCount{{{Item: 0, Qty: 5}}},
		Aisles:     [][]model.ItemCount{{{Item: 0, Qty: 10}}},
		WaveSizeLB: 1,
		WaveSizeUB: 10,
	}
}

func TestMemoryInstances(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	inst, err := m.CreateInstance(ctx, "t1", testInstanceIn())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.ID == "" || inst.NOrders != 1 || inst.NAisles != 1 {
		t.Fatalf("instance: %+v", inst)
	}

	got, err := m.GetInstance(ctx, "t1", inst.ID)
	if err != nil || got.ID != inst.ID {
		t.Fatalf("get: %v %+v", err, got)
	}

	// tenant isolation
	if _, err := m.GetInstance(ctx, "t2", inst.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-tenant get: %v, want ErrNotFound", err)
	}

	items, next, err := m.ListInstances(ctx, "t1", "", 10)
	if err != nil || len(items) != 1 || next != "" {
		t.Fatalf("list: %v, %d items, next %q", err, len(items), next)
	}
}

func TestMemoryJobsLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	inst, _ := m.CreateInstance(ctx, "t1", testInstanceIn())
	job, err := m.CreateJob(ctx, model.Job{TenantID: "t1", InstanceID: inst.ID, Status: model.JobQueued})
	if err != nil || job.ID == "" {
		t.Fatalf("create job: %v %+v", err, job)
	}

	job.Status = model.JobDone
	job.Wave = &model.WaveOut{Orders: []int{0}, Aisles: []int{0}, TotalUnits: 5, Objective: 5, Feasible: true}
	if err := m.UpdateJob(ctx, job); err != nil {
		t.Fatalf("update job: %v", err)
	}

	got, err := m.GetJob(ctx, "t1", job.ID)
	if err != nil || got.Status != model.JobDone || got.Wave == nil || got.Wave.TotalUnits != 5 {
		t.Fatalf("get job: %v %+v", err, got)
	}

	if err := m.UpdateJob(ctx, model.Job{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v, want ErrNotFound", err)
	}

	jobs, _, err := m.ListJobs(ctx, "t1", inst.ID, "", 10)
	if err != nil || len(jobs) != 1 {
		t.Fatalf("list jobs: %v, %d items", err, len(jobs))
	}
	jobs, _, _ = m.ListJobs(ctx, "t1", "other-instance", "", 10)
	if len(jobs) != 0 {
		t.Fatalf("filtered list: %d items, want 0", len(jobs))
	}
}

func TestMemorySolverStats(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.SaveSolverStats(ctx, "t1", "j1", map[string]any{"generations": 3}); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	stats, err := m.ListSolverStats(ctx, "t1", "j1")
	if err != nil || len(stats) != 1 || stats[0]["generations"] != 3 {
		t.Fatalf("list stats: %v %+v", err, stats)
	}
	if stats, _ := m.ListSolverStats(ctx, "t2", "j1"); len(stats) != 0 {
		t.Fatalf("cross-tenant stats: %+v", stats)
	}
}
