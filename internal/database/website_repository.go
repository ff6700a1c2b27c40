package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// WebsiteRepository handles database operations for websites. Admin
// tooling owns these rows; the pipeline reads them and stamps
// last_scraped_at after each run.
type WebsiteRepository struct {
	db *sqlx.DB
}

// NewWebsiteRepository creates a new website repository.
func NewWebsiteRepository(db *sqlx.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

const websiteColumns = `
	id, url, label, rate_limit_per_minute, active,
	last_scraped_at, settings, created_at, updated_at
`

// GetByID retrieves a website by its ID.
func (r *WebsiteRepository) GetByID(ctx context.Context, id int64) (*domain.Website, error) {
	var website domain.Website
	query := `SELECT ` + websiteColumns + ` FROM websites WHERE id = $1`

	err := r.db.GetContext(ctx, &website, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrWebsiteNotFound, id)
		}
		return nil, fmt.Errorf("failed to get website: %w", err)
	}

	return &website, nil
}

// List retrieves all websites ordered by label.
func (r *WebsiteRepository) List(ctx context.Context) ([]*domain.Website, error) {
	var websites []*domain.Website
	query := `SELECT ` + websiteColumns + ` FROM websites ORDER BY label, id`

	err := r.db.SelectContext(ctx, &websites, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}

	if websites == nil {
		websites = []*domain.Website{}
	}

	return websites, nil
}

// ListActive retrieves websites eligible for scheduled scraping.
func (r *WebsiteRepository) ListActive(ctx context.Context) ([]*domain.Website, error) {
	var websites []*domain.Website
	query := `SELECT ` + websiteColumns + ` FROM websites WHERE active = TRUE ORDER BY id`

	err := r.db.SelectContext(ctx, &websites, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active websites: %w", err)
	}

	if websites == nil {
		websites = []*domain.Website{}
	}

	return websites, nil
}

// UpdateLastScraped stamps the website's last_scraped_at. The pipeline
// never touches any other website field.
func (r *WebsiteRepository) UpdateLastScraped(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE websites SET last_scraped_at = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last_scraped_at: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update last_scraped_at: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update last_scraped_at: %w", ErrWebsiteNotFound)
	}

	return nil
}
