package store

import (
	"context"
	"errors"

	"wavepick/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Instances
	CreateInstance(ctx context.Context, tenantID string, in model.InstanceIn) (model.Instance, error)
	GetInstance(ctx context.Context, tenantID, id string) (model.Instance, error)
	ListInstances(ctx context.Context, tenantID, cursor string, limit int) (items []model.Instance, nextCursor string, err error)

	// Solve jobs
	CreateJob(ctx context.Context, job model.Job) (model.Job, error)
	GetJob(ctx context.Context, tenantID, id string) (model.Job, error)
	UpdateJob(ctx context.Context, job model.Job) error
	ListJobs(ctx context.Context, tenantID, instanceID, cursor string, limit int) ([]model.Job, string, error)

	// Solver run statistics, keyed by job
	SaveSolverStats(ctx context.Context, tenantID, jobID string, stats map[string]any) error
	ListSolverStats(ctx context.Context, tenantID, jobID string) ([]map[string]any, error)
}

var ErrNotFound = errors.New("not found")
