package domain

import "time"

// MaxPageImages caps the number of image URLs stored per page.
const MaxPageImages = 10

// ScrapedPage is a persisted, keyword-matched article. Uniqueness is on
// (canonical_url, content_hash); that pair is the dedup key.
type ScrapedPage struct {
	ID              int64            `db:"id"               json:"id"`
	WebsiteID       int64            `db:"website_id"       json:"website_id"`
	URL             string           `db:"url"              json:"url"`
	CanonicalURL    string           `db:"canonical_url"    json:"canonical_url"`
	Title           string           `db:"title"            json:"title"`
	MetaDescription string           `db:"meta_description" json:"meta_description"`
	PublishDate     *time.Time       `db:"publish_date"     json:"publish_date,omitempty"`
	ContentText     string           `db:"content_text"     json:"content_text"`
	ContentHTML     *string          `db:"content_html"     json:"content_html,omitempty"`
	ContentHash     string           `db:"content_hash"     json:"content_hash"`
	Language        string           `db:"language"         json:"language"`
	ScrapedAt       time.Time        `db:"scraped_at"       json:"scraped_at"`
	MatchedKeywords KeywordMatchList `db:"matched_keywords" json:"matched_keywords"`
	Images          StringList       `db:"images"           json:"images"`
	CreatedAt       time.Time        `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"       json:"updated_at"`
}

// Excerpt returns the first n runes of the content text for listings.
func (p *ScrapedPage) Excerpt(n int) string {
	runes := []rune(p.ContentText)
	if len(runes) <= n {
		return p.ContentText
	}
	return string(runes[:n]) + "…"
}

// Thumbnail returns the first extracted image URL, or empty.
func (p *ScrapedPage) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ArticleData is the normalized output of content extraction, before
// matching and persistence. Every field degrades independently: absence
// of one never blocks extraction of the others.
type ArticleData struct {
	Title           string
	MetaDescription string
	CanonicalURL    string
	PublishDate     *time.Time
	ContentText     string
	ContentHTML     *string
	Images          []string
	Language        string
}
