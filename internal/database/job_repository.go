package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// JobRepository handles database operations for scrape jobs.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, website_id, status, started_at, finished_at, log,
	pages_scraped, pages_matched, created_at, updated_at
`

// Create inserts a new pending job for the given website and returns it.
func (r *JobRepository) Create(ctx context.Context, websiteID int64) (*domain.ScrapeJob, error) {
	job := &domain.ScrapeJob{
		ID:        uuid.NewString(),
		WebsiteID: websiteID,
		Status:    domain.JobStatusPending,
	}

	query := `
		INSERT INTO scrape_jobs (id, website_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, job.ID, job.WebsiteID, job.Status).
		Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrape job: %w", err)
	}

	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob
	query := `SELECT ` + jobColumns + ` FROM scrape_jobs WHERE id = $1`

	err := r.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get scrape job: %w", err)
	}

	return &job, nil
}

// Update persists a job snapshot produced by a state transition.
func (r *JobRepository) Update(ctx context.Context, job *domain.ScrapeJob) error {
	query := `
		UPDATE scrape_jobs
		SET status = $1, started_at = $2, finished_at = $3, log = $4,
		    pages_scraped = $5, pages_matched = $6, updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Status,
		job.StartedAt,
		job.FinishedAt,
		job.Log,
		job.PagesScraped,
		job.PagesMatched,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scrape job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update scrape job: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update scrape job: %w", ErrJobNotFound)
	}

	return nil
}

// List retrieves jobs, newest first, optionally filtered by status.
func (r *JobRepository) List(ctx context.Context, status string, limit, offset int) ([]*domain.ScrapeJob, error) {
	var jobs []*domain.ScrapeJob
	var query string
	var args []any

	if status != "" {
		query = `SELECT ` + jobColumns + `
			FROM scrape_jobs
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		args = []any{status, limit, offset}
	} else {
		query = `SELECT ` + jobColumns + `
			FROM scrape_jobs
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	err := r.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrape jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.ScrapeJob{}
	}

	return jobs, nil
}
