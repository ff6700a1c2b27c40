// Package domain provides domain models used across the application.
package domain

import (
	"net/url"
	"time"
)

// Rate limit bounds for a website's configured requests per minute.
const (
	MinRateLimitPerMinute = 1
	MaxRateLimitPerMinute = 100
)

// Website represents a configured news site the pipeline scrapes.
// Admin tooling owns these rows; the pipeline only touches last_scraped_at.
type Website struct {
	ID                 int64      `db:"id"                    json:"id"`
	URL                string     `db:"url"                   json:"url"`
	Label              string     `db:"label"                 json:"label"`
	RateLimitPerMinute int        `db:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	Active             bool       `db:"active"                json:"active"`
	LastScrapedAt      *time.Time `db:"last_scraped_at"       json:"last_scraped_at,omitempty"`
	Settings           JSONBMap   `db:"settings"              json:"settings,omitempty"`
	CreatedAt          time.Time  `db:"created_at"            json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"            json:"updated_at"`
}

// Host returns the hostname portion of the website URL, or the raw URL
// when it cannot be parsed.
func (w *Website) Host() string {
	parsed, err := url.Parse(w.URL)
	if err != nil || parsed.Host == "" {
		return w.URL
	}
	return parsed.Hostname()
}
