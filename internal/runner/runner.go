// Package runner dispatches scrape jobs with bounded concurrency and
// attempt-level retry.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/logger"
	"github.com/jonesrussell/newsgrabber/internal/scraper"
)

// Default dispatch settings.
const (
	DefaultPoolSize       = 4
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 5 * time.Minute
)

// DefaultBackoff returns the default delays between attempts.
func DefaultBackoff() []time.Duration {
	return []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute}
}

// Scraper runs one scrape attempt.
type Scraper interface {
	Scrape(ctx context.Context, website *domain.Website, job domain.ScrapeJob) (*scraper.Outcome, error)
}

// JobStore reads and finalizes jobs after exhausted attempts.
type JobStore interface {
	GetByID(ctx context.Context, id string) (*domain.ScrapeJob, error)
	Update(ctx context.Context, job *domain.ScrapeJob) error
}

// Config holds dispatch settings.
type Config struct {
	PoolSize       int
	MaxAttempts    int
	Backoff        []time.Duration
	AttemptTimeout time.Duration
}

// WithDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if len(c.Backoff) == 0 {
		c.Backoff = DefaultBackoff()
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	return c
}

// Runner executes dispatched jobs on a bounded pool. An attempt error
// (timeout, panic, store unavailable) triggers redispatch with backoff;
// per-article failures inside a run never do.
type Runner struct {
	scraper Scraper
	jobs    JobStore
	log     logger.Interface
	cfg     Config
	sem     chan struct{}
	wg      sync.WaitGroup
}

// New creates a runner.
func New(s Scraper, jobs JobStore, log logger.Interface, cfg Config) *Runner {
	cfg = cfg.WithDefaults()

	return &Runner{
		scraper: s,
		jobs:    jobs,
		log:     log,
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.PoolSize),
	}
}

// Dispatch schedules a job for execution and returns immediately. The
// goroutine blocks on a pool slot, then runs the attempt loop.
func (r *Runner) Dispatch(ctx context.Context, website *domain.Website, job *domain.ScrapeJob) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		select {
		case r.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-r.sem }()

		r.run(ctx, website, *job)
	}()
}

// Drain blocks until all dispatched jobs have finished.
func (r *Runner) Drain() {
	r.wg.Wait()
}

// run drives the attempt loop for one job.
func (r *Runner) run(ctx context.Context, website *domain.Website, job domain.ScrapeJob) {
	log := r.log.With("job_id", job.ID, "website_id", website.ID)

	for attempt := 1; ; attempt++ {
		err := r.attempt(ctx, website, job)
		if err == nil {
			return
		}

		log.Error("scrape attempt failed",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxAttempts,
			"error", err.Error(),
		)

		if attempt >= r.cfg.MaxAttempts {
			break
		}

		if !r.sleep(ctx, r.backoffFor(attempt)) {
			break
		}
	}

	r.ensureFailed(job.ID)
}

// attempt runs one scrape under the attempt timeout, converting panics
// into errors so a bad page can't take the dispatcher down.
func (r *Runner) attempt(ctx context.Context, website *domain.Website, job domain.ScrapeJob) (err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scrape panicked: %v", rec)
		}
	}()

	_, err = r.scraper.Scrape(attemptCtx, website, job)
	return err
}

func (r *Runner) backoffFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(r.cfg.Backoff) {
		idx = len(r.cfg.Backoff) - 1
	}
	return r.cfg.Backoff[idx]
}

// sleep waits out the backoff; returns false when ctx ends first.
func (r *Runner) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// ensureFailed finalizes the job after exhausted attempts, unless an
// attempt already marked it terminal.
func (r *Runner) ensureFailed(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		r.log.Error("load job after exhausted attempts", "job_id", jobID, "error", err.Error())
		return
	}

	if job.IsTerminal() {
		return
	}

	failed, err := job.Fail(time.Now(), "all scrape attempts failed", job.PagesScraped, job.PagesMatched)
	if err != nil {
		return
	}

	if err := r.jobs.Update(ctx, &failed); err != nil {
		r.log.Error("mark job failed after exhausted attempts", "job_id", jobID, "error", err.Error())
	}
}
