package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// DefaultSweepInterval is how often the scheduler creates jobs for
// active websites.
const DefaultSweepInterval = time.Hour

// WebsiteLister selects websites eligible for scheduled scraping.
type WebsiteLister interface {
	ListActive(ctx context.Context) ([]*domain.Website, error)
}

// JobCreator creates pending jobs.
type JobCreator interface {
	Create(ctx context.Context, websiteID int64) (*domain.ScrapeJob, error)
}

// Sweeper periodically creates and dispatches jobs for every active
// website.
type Sweeper struct {
	cron     *cron.Cron
	websites WebsiteLister
	jobs     JobCreator
	runner   *Runner
	log      logger.Interface
	interval time.Duration
}

// NewSweeper creates a sweeper with the given interval (default hourly).
func NewSweeper(
	websites WebsiteLister,
	jobs JobCreator,
	r *Runner,
	log logger.Interface,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		cron:     cron.New(),
		websites: websites,
		jobs:     jobs,
		runner:   r,
		log:      log,
		interval: interval,
	}
}

// Start runs one immediate sweep, then schedules recurring sweeps.
func (s *Sweeper) Start(ctx context.Context) error {
	s.Sweep(ctx)

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", "sweep_interval", s.interval.String())

	return nil
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.runner.Drain()
	s.log.Info("scheduler stopped")
}

// Sweep creates a pending job per active website and dispatches them.
func (s *Sweeper) Sweep(ctx context.Context) {
	websites, err := s.websites.ListActive(ctx)
	if err != nil {
		s.log.Error("list active websites", "error", err.Error())
		return
	}

	s.log.Info("sweep started", "active_websites", len(websites))

	for _, website := range websites {
		job, err := s.jobs.Create(ctx, website.ID)
		if err != nil {
			s.log.Error("create job", "website_id", website.ID, "error", err.Error())
			continue
		}

		s.runner.Dispatch(ctx, website, job)
	}
}
