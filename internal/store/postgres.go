package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"wavepick/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// MigrateDir applies the .sql files of dir in lexical order. Dev helper;
// production deployments run migrations out of band.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateInstance(ctx context.Context, tenantID string, in model.InstanceIn) (model.Instance, error) {
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
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO instances (id, tenant_id, name, n_items, n_orders, n_aisles, orders, aisles, wave_lb, wave_ub, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inst.ID, tenantID, inst.Name, inst.NItems, inst.NOrders, inst.NAisles,
		toJSON(inst.Orders), toJSON(inst.Aisles), inst.WaveSizeLB, inst.WaveSizeUB, inst.CreatedAt)
	if err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

func (p *Postgres) GetInstance(ctx context.Context, tenantID, id string) (model.Instance, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, n_items, n_orders, n_aisles, orders, aisles, wave_lb, wave_ub, created_at
		 FROM instances WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	var inst model.Instance
	var orders, aisles []byte
	err := row.Scan(&inst.ID, &inst.TenantID, &inst.Name, &inst.NItems, &inst.NOrders, &inst.NAisles,
		&orders, &aisles, &inst.WaveSizeLB, &inst.WaveSizeUB, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instance{}, ErrNotFound
	}
	if err != nil {
		return model.Instance{}, err
	}
	if err := json.Unmarshal(orders, &inst.Orders); err != nil {
		return model.Instance{}, err
	}
	if err := json.Unmarshal(aisles, &inst.Aisles); err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

func (p *Postgres) ListInstances(ctx context.Context, tenantID, cursor string, limit int) ([]model.Instance, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, n_items, n_orders, n_aisles, wave_lb, wave_ub, created_at
		 FROM instances WHERE tenant_id=$1 AND id > $2 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.Instance{}
	next := ""
	for rows.Next() {
		var inst model.Instance
		if err := rows.Scan(&inst.ID, &inst.TenantID, &inst.Name, &inst.NItems, &inst.NOrders, &inst.NAisles,
			&inst.WaveSizeLB, &inst.WaveSizeUB, &inst.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, inst)
		next = inst.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) CreateJob(ctx context.Context, job model.Job) (model.Job, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.CreatedAt = time.Now().UTC()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO jobs (id, tenant_id, instance_id, status, seed, population, budget_ms, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		job.ID, job.TenantID, job.InstanceID, job.Status, job.Seed, job.Population, job.BudgetMs, job.CreatedAt)
	if err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func (p *Postgres) GetJob(ctx context.Context, tenantID, id string) (model.Job, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, instance_id, status, seed, population, budget_ms, error, result, created_at, started_at, finished_at
		 FROM jobs WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanJob(row)
}

func (p *Postgres) UpdateJob(ctx context.Context, job model.Job) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE jobs SET status=$1, error=$2, result=$3, started_at=$4, finished_at=$5 WHERE id=$6`,
		job.Status, job.Error, toJSON(job.Wave), nullTime(job.StartedAt), nullTime(job.FinishedAt), job.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (p *Postgres) ListJobs(ctx context.Context, tenantID, instanceID, cursor string, limit int) ([]model.Job, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, tenant_id, instance_id, status, seed, population, budget_ms, error, result, created_at, started_at, finished_at
		 FROM jobs WHERE tenant_id=$1 AND ($2='' OR instance_id=$2) AND id > $3 ORDER BY id LIMIT $4`,
		tenantID, instanceID, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.Job{}
	next := ""
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, job)
		next = job.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) SaveSolverStats(ctx context.Context, tenantID, jobID string, stats map[string]any) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solver_stats (tenant_id, job_id, stats, created_at) VALUES ($1,$2,$3,$4)`,
		tenantID, jobID, toJSON(stats), time.Now().UTC())
	return err
}

func (p *Postgres) ListSolverStats(ctx context.Context, tenantID, jobID string) ([]map[string]any, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT stats FROM solver_stats WHERE tenant_id=$1 AND job_id=$2 ORDER BY created_at`, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []map[string]any{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.Job, error) {
	var job model.Job
	var result []byte
	var errMsg sql.NullString
	var started, finished sql.NullTime
	err := row.Scan(&job.ID, &job.TenantID, &job.InstanceID, &job.Status, &job.Seed, &job.Population,
		&job.BudgetMs, &errMsg, &result, &job.CreatedAt, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, ErrNotFound
	}
	if err != nil {
		return model.Job{}, err
	}
	job.Error = errMsg.String
	if started.Valid {
		job.StartedAt = started.Time
	}
	if finished.Valid {
		job.FinishedAt = finished.Time
	}
	if len(result) > 0 && string(result) != "null" {
		job.Wave = &model.WaveOut{}
		if err := json.Unmarshal(result, job.Wave); err != nil {
			return model.Job{}, err
		}
	}
	return job, nil
}

func toJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
