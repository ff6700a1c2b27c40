package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

func pendingJob() domain.ScrapeJob {
	return domain.ScrapeJob{
		ID:        "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		WebsiteID: 1,
		Status:    domain.JobStatusPending,
	}
}

func TestScrapeJob_StartFromPending(t *testing.T) {
	t.Parallel()

	now := time.Now()
	job, err := pendingJob().Start(now)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)
	assert.Equal(t, now, *job.StartedAt)
	assert.Nil(t, job.FinishedAt)
}

func TestScrapeJob_StartRejectsNonPending(t *testing.T) {
	t.Parallel()

	for _, status := range []string{
		domain.JobStatusRunning,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	} {
		job := pendingJob()
		job.Status = status

		_, err := job.Start(time.Now())
		assert.Error(t, err, "status %s", status)
	}
}

func TestScrapeJob_CompleteRecordsCounts(t *testing.T) {
	t.Parallel()

	started, err := pendingJob().Start(time.Now())
	require.NoError(t, err)

	finished := time.Now().Add(30 * time.Second)
	job, err := started.Complete(finished, 5, 2, "Scraped 5 pages, 2 matched")
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 5, job.PagesScraped)
	assert.Equal(t, 2, job.PagesMatched)
	require.NotNil(t, job.Log)
	assert.Contains(t, *job.Log, "2 matched")
	assert.True(t, job.IsTerminal())
}

func TestScrapeJob_CompleteWithZeroMatchesIsValid(t *testing.T) {
	t.Parallel()

	started, err := pendingJob().Start(time.Now())
	require.NoError(t, err)

	job, err := started.Complete(time.Now(), 3, 0, "Scraped 3 pages, 0 matched")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
}

func TestScrapeJob_FailFromRunningKeepsPartialCounts(t *testing.T) {
	t.Parallel()

	started, err := pendingJob().Start(time.Now())
	require.NoError(t, err)

	job, err := started.Fail(time.Now(), "Scrape failed: HTTP 503", 2, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Equal(t, 2, job.PagesScraped)
	assert.Equal(t, 1, job.PagesMatched)
	require.NotNil(t, job.Log)
	assert.Equal(t, "Scrape failed: HTTP 503", *job.Log)
}

func TestScrapeJob_TerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	started, err := pendingJob().Start(time.Now())
	require.NoError(t, err)

	completed, err := started.Complete(time.Now(), 1, 1, "done")
	require.NoError(t, err)

	_, err = completed.Fail(time.Now(), "late failure", 0, 0)
	assert.Error(t, err)

	failed, err := started.Fail(time.Now(), "boom", 0, 0)
	require.NoError(t, err)

	_, err = failed.Start(time.Now())
	assert.Error(t, err)
}

func TestScrapeJob_Duration(t *testing.T) {
	t.Parallel()

	job := pendingJob()
	assert.Zero(t, job.Duration())

	start := time.Now()
	end := start.Add(42 * time.Second)
	job.StartedAt = &start
	job.FinishedAt = &end
	assert.Equal(t, 42*time.Second, job.Duration())
}
