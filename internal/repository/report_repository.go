package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

// ReportRepository provides persistence for asynchronous report jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a queued report job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.ReportPending
	}

	const query = `INSERT INTO report_jobs (id, type, status, params, requested_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		job.ID, job.Type, job.Status, job.Params, job.RequestedBy, job.CreatedAt, job.UpdatedAt); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID loads a report job including its payload.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, type, status, params, content_type, payload, error, requested_by, created_at, updated_at
		FROM report_jobs WHERE id = $1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByRequester returns recent jobs requested by a user, newest first,
// without payloads.
func (r *ReportRepository) ListByRequester(ctx context.Context, userID string, limit int) ([]models.ReportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, type, status, params, content_type, error, requested_by, created_at, updated_at
		FROM report_jobs WHERE requested_by = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, userID); err != nil {
		return nil, fmt.Errorf("list report jobs: %w", err)
	}
	return jobs, nil
}

// MarkRunning flags a job as picked up by a worker.
func (r *ReportRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE report_jobs SET status = 'RUNNING', updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark report running: %w", err)
	}
	return nil
}

// Complete stores the rendered payload and marks the job done.
func (r *ReportRepository) Complete(ctx context.Context, id, contentType string, payload []byte) error {
	const query = `UPDATE report_jobs SET status = 'DONE', content_type = $2, payload = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, contentType, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete report job: %w", err)
	}
	return nil
}

// Fail records a worker failure.
func (r *ReportRepository) Fail(ctx context.Context, id, message string) error {
	const query = `UPDATE report_jobs SET status = 'FAILED', error = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, message, time.Now().UTC()); err != nil {
		return fmt.Errorf("fail report job: %w", err)
	}
	return nil
}

// DeleteOlderThan purges finished jobs past the retention window and returns
// the number removed.
func (r *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM report_jobs WHERE status IN ('DONE', 'FAILED') AND updated_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge report jobs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge report jobs: %w", err)
	}
	return affected, nil
}
