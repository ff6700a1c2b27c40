package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema defines the pipeline's tables. Statements are idempotent so the
// migrate command can be re-run safely.
const schema = `
CREATE TABLE IF NOT EXISTS websites (
    id                    BIGSERIAL PRIMARY KEY,
    url                   TEXT NOT NULL UNIQUE,
    label                 TEXT NOT NULL,
    rate_limit_per_minute INTEGER NOT NULL DEFAULT 10
        CHECK (rate_limit_per_minute BETWEEN 1 AND 100),
    active                BOOLEAN NOT NULL DEFAULT TRUE,
    last_scraped_at       TIMESTAMPTZ,
    settings              JSONB,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS topics (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS keywords (
    id         BIGSERIAL PRIMARY KEY,
    topic_id   BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
    keyword    TEXT NOT NULL,
    match_type TEXT NOT NULL DEFAULT 'phrase'
        CHECK (match_type IN ('exact', 'phrase', 'regex'))
);

CREATE INDEX IF NOT EXISTS keywords_topic_id_keyword_idx
    ON keywords (topic_id, keyword);

CREATE TABLE IF NOT EXISTS scrape_jobs (
    id            TEXT PRIMARY KEY,
    website_id    BIGINT NOT NULL REFERENCES websites(id) ON DELETE CASCADE,
    status        TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'running', 'completed', 'failed')),
    started_at    TIMESTAMPTZ,
    finished_at   TIMESTAMPTZ,
    log           TEXT,
    pages_scraped INTEGER NOT NULL DEFAULT 0 CHECK (pages_scraped >= 0),
    pages_matched INTEGER NOT NULL DEFAULT 0 CHECK (pages_matched >= 0),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS scrape_jobs_website_id_status_idx
    ON scrape_jobs (website_id, status);
CREATE INDEX IF NOT EXISTS scrape_jobs_created_at_idx
    ON scrape_jobs (created_at);

CREATE TABLE IF NOT EXISTS scraped_pages (
    id               BIGSERIAL PRIMARY KEY,
    website_id       BIGINT NOT NULL REFERENCES websites(id) ON DELETE CASCADE,
    url              TEXT NOT NULL,
    canonical_url    TEXT NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    publish_date     TIMESTAMPTZ,
    content_text     TEXT NOT NULL,
    content_html     TEXT,
    content_hash     CHAR(64) NOT NULL,
    language         TEXT NOT NULL DEFAULT '',
    scraped_at       TIMESTAMPTZ NOT NULL,
    matched_keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
    images           JSONB NOT NULL DEFAULT '[]'::jsonb,
    content_tsv      TSVECTOR,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT scraped_pages_unique_page UNIQUE (canonical_url, content_hash)
);

CREATE INDEX IF NOT EXISTS scraped_pages_content_hash_idx
    ON scraped_pages (content_hash);
CREATE INDEX IF NOT EXISTS scraped_pages_scraped_at_idx
    ON scraped_pages (scraped_at);
CREATE INDEX IF NOT EXISTS scraped_pages_publish_date_idx
    ON scraped_pages (publish_date);
CREATE INDEX IF NOT EXISTS scraped_pages_content_tsv_idx
    ON scraped_pages USING GIN (content_tsv);
`

// tsvectorTrigger keeps content_tsv current so the external browsing UI
// can run full-text queries without touching the pipeline.
const tsvectorTrigger = `
CREATE OR REPLACE FUNCTION scraped_pages_tsvector_update() RETURNS trigger AS $$
BEGIN
    NEW.content_tsv :=
        setweight(to_tsvector('english', coalesce(NEW.title, '')), 'A') ||
        setweight(to_tsvector('english', coalesce(NEW.meta_description, '')), 'B') ||
        setweight(to_tsvector('english', coalesce(NEW.content_text, '')), 'C');
    RETURN NEW;
END
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS scraped_pages_tsvector_trigger ON scraped_pages;
CREATE TRIGGER scraped_pages_tsvector_trigger
    BEFORE INSERT OR UPDATE ON scraped_pages
    FOR EACH ROW EXECUTE FUNCTION scraped_pages_tsvector_update();
`

// Migrate applies the schema and trigger definitions.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, tsvectorTrigger); err != nil {
		return fmt.Errorf("failed to apply tsvector trigger: %w", err)
	}
	return nil
}
