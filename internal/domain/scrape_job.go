package domain

import (
	"fmt"
	"time"
)

// Job statuses. A job moves pending -> running -> {completed, failed};
// completed and failed are terminal.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ScrapeJob tracks one execution attempt of the pipeline against one website.
type ScrapeJob struct {
	ID           string     `db:"id"            json:"id"`
	WebsiteID    int64      `db:"website_id"    json:"website_id"`
	Status       string     `db:"status"        json:"status"`
	StartedAt    *time.Time `db:"started_at"    json:"started_at,omitempty"`
	FinishedAt   *time.Time `db:"finished_at"   json:"finished_at,omitempty"`
	Log          *string    `db:"log"           json:"log,omitempty"`
	PagesScraped int        `db:"pages_scraped" json:"pages_scraped"`
	PagesMatched int        `db:"pages_matched" json:"pages_matched"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final status.
func (j ScrapeJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Duration returns the wall-clock run time, or zero when the job has not
// both started and finished.
func (j ScrapeJob) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// Start transitions the job to running. The receiver is not mutated; the
// updated snapshot is returned so transitions can be tested without a store.
func (j ScrapeJob) Start(now time.Time) (ScrapeJob, error) {
	if j.Status != JobStatusPending {
		return j, fmt.Errorf("cannot start job in status %q", j.Status)
	}
	j.Status = JobStatusRunning
	j.StartedAt = &now
	return j, nil
}

// Complete transitions the job to completed with final counts. Zero
// matches is a valid outcome, not a failure.
func (j ScrapeJob) Complete(now time.Time, pagesScraped, pagesMatched int, summary string) (ScrapeJob, error) {
	if j.Status != JobStatusRunning {
		return j, fmt.Errorf("cannot complete job in status %q", j.Status)
	}
	j.Status = JobStatusCompleted
	j.FinishedAt = &now
	j.PagesScraped = pagesScraped
	j.PagesMatched = pagesMatched
	j.Log = &summary
	return j, nil
}

// Fail transitions the job to failed, recording the reason and whatever
// counts were accumulated before the failure.
func (j ScrapeJob) Fail(now time.Time, reason string, pagesScraped, pagesMatched int) (ScrapeJob, error) {
	if j.IsTerminal() {
		return j, fmt.Errorf("cannot fail job in status %q", j.Status)
	}
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.PagesScraped = pagesScraped
	j.PagesMatched = pagesMatched
	j.Log = &reason
	return j, nil
}
