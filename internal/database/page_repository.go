package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// PageRepository persists keyword-matched articles with insert-or-merge
// deduplication on (canonical_url, content_hash).
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new page repository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

const pageColumns = `
	id, website_id, url, canonical_url, title, meta_description,
	publish_date, content_text, content_html, content_hash, language,
	scraped_at, matched_keywords, images, created_at, updated_at
`

// ContentHash returns the hex-encoded SHA-256 fingerprint of the content text.
func ContentHash(contentText string) string {
	h := sha256.Sum256([]byte(contentText))
	return hex.EncodeToString(h[:])
}

// Save stores an extracted article with its keyword matches. When a row
// with the same (canonical_url, content_hash) already exists, the new
// matches are appended to that row's matched_keywords and the existing
// row is returned otherwise unchanged. The unique constraint arbitrates
// concurrent writers: a loser of an insert race falls back to the merge
// path instead of producing a duplicate row.
func (r *PageRepository) Save(
	ctx context.Context,
	websiteID int64,
	data *domain.ArticleData,
	matches []domain.KeywordMatch,
	sourceURL string,
	now time.Time,
) (*domain.ScrapedPage, bool, error) {
	contentHash := ContentHash(data.ContentText)

	publishDate := data.PublishDate
	if publishDate == nil {
		publishDate = &now
	}

	page := &domain.ScrapedPage{
		WebsiteID:       websiteID,
		URL:             sourceURL,
		CanonicalURL:    data.CanonicalURL,
		Title:           data.Title,
		MetaDescription: data.MetaDescription,
		PublishDate:     publishDate,
		ContentText:     data.ContentText,
		ContentHTML:     data.ContentHTML,
		ContentHash:     contentHash,
		Language:        data.Language,
		ScrapedAt:       now,
		MatchedKeywords: domain.KeywordMatchList(matches),
		Images:          domain.StringList(data.Images),
	}

	inserted, err := r.insert(ctx, page)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return page, true, nil
	}

	merged, err := r.merge(ctx, data.CanonicalURL, contentHash, matches)
	if err == nil {
		return merged, false, nil
	}

	// The existing row can disappear between the conflict and the merge
	// (admin delete). One more insert attempt covers that window.
	if errors.Is(err, ErrPageNotFound) {
		inserted, retryErr := r.insert(ctx, page)
		if retryErr != nil {
			return nil, false, retryErr
		}
		if inserted {
			return page, true, nil
		}
	}

	return nil, false, err
}

// insert attempts the initial write. Returns false when the unique
// constraint on (canonical_url, content_hash) suppressed the insert.
func (r *PageRepository) insert(ctx context.Context, page *domain.ScrapedPage) (bool, error) {
	query := `
		INSERT INTO scraped_pages (
			website_id, url, canonical_url, title, meta_description,
			publish_date, content_text, content_html, content_hash,
			language, scraped_at, matched_keywords, images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (canonical_url, content_hash) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		page.WebsiteID,
		page.URL,
		page.CanonicalURL,
		page.Title,
		page.MetaDescription,
		page.PublishDate,
		page.ContentText,
		page.ContentHTML,
		page.ContentHash,
		page.Language,
		page.ScrapedAt,
		page.MatchedKeywords,
		page.Images,
	).Scan(&page.ID, &page.CreatedAt, &page.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert scraped page: %w", err)
	}

	return true, nil
}

// merge appends matches to the existing fingerprinted row. Repeats in the
// match list are tolerated; title and content are never overwritten.
func (r *PageRepository) merge(
	ctx context.Context,
	canonicalURL, contentHash string,
	matches []domain.KeywordMatch,
) (*domain.ScrapedPage, error) {
	var page domain.ScrapedPage
	query := `
		UPDATE scraped_pages
		SET matched_keywords = COALESCE(matched_keywords, '[]'::jsonb) || $1::jsonb,
		    updated_at = NOW()
		WHERE canonical_url = $2 AND content_hash = $3
		RETURNING ` + pageColumns

	err := r.db.GetContext(ctx, &page, query, domain.KeywordMatchList(matches), canonicalURL, contentHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to merge scraped page matches: %w", err)
	}

	return &page, nil
}

// GetByFingerprint retrieves a page by its dedup key.
func (r *PageRepository) GetByFingerprint(
	ctx context.Context,
	canonicalURL, contentHash string,
) (*domain.ScrapedPage, error) {
	var page domain.ScrapedPage
	query := `SELECT ` + pageColumns + `
		FROM scraped_pages
		WHERE canonical_url = $1 AND content_hash = $2`

	err := r.db.GetContext(ctx, &page, query, canonicalURL, contentHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get scraped page: %w", err)
	}

	return &page, nil
}

// Search runs a full-text query over the tsvector column, newest first.
// This is the read surface the external browsing UI queries.
func (r *PageRepository) Search(ctx context.Context, term string, limit, offset int) ([]*domain.ScrapedPage, error) {
	var pages []*domain.ScrapedPage
	query := `SELECT ` + pageColumns + `
		FROM scraped_pages
		WHERE content_tsv @@ plainto_tsquery('english', $1)
		ORDER BY publish_date DESC NULLS LAST, id DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &pages, query, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search scraped pages: %w", err)
	}

	if pages == nil {
		pages = []*domain.ScrapedPage{}
	}

	return pages, nil
}
