// Package scraper orchestrates a full scrape run against one website:
// homepage fetch, link discovery, per-article fetch/extract/match/save,
// and job lifecycle bookkeeping.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/fetcher"
	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// Default run limits.
const (
	DefaultMaxArticlesPerRun = 3
	DefaultMaxContentAgeDays = 7
)

// Fetcher retrieves raw pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Result, error)
}

// Extractor discovers article links and parses article pages.
type Extractor interface {
	DiscoverArticleLinks(html, baseURL string) ([]string, error)
	ExtractContent(html, pageURL string) (*domain.ArticleData, error)
}

// Matcher evaluates keyword rules against an article.
type Matcher interface {
	Match(ctx context.Context, title, contentText string) ([]domain.KeywordMatch, error)
}

// PageStore persists matched articles.
type PageStore interface {
	Save(
		ctx context.Context,
		websiteID int64,
		data *domain.ArticleData,
		matches []domain.KeywordMatch,
		sourceURL string,
		now time.Time,
	) (*domain.ScrapedPage, bool, error)
}

// JobStore persists job state transitions.
type JobStore interface {
	Update(ctx context.Context, job *domain.ScrapeJob) error
}

// WebsiteStore records scrape activity on the website row.
type WebsiteStore interface {
	UpdateLastScraped(ctx context.Context, id int64, at time.Time) error
}

// Config holds run limits.
type Config struct {
	MaxArticlesPerRun int
	// MaxContentAgeDays skips articles published earlier than this many
	// days ago; 0 disables the age filter.
	MaxContentAgeDays int
}

// WithDefaults returns a copy of the config with invalid values replaced
// by defaults. MaxContentAgeDays of 0 is kept: it turns the age filter off.
func (c Config) WithDefaults() Config {
	if c.MaxArticlesPerRun <= 0 {
		c.MaxArticlesPerRun = DefaultMaxArticlesPerRun
	}
	if c.MaxContentAgeDays < 0 {
		c.MaxContentAgeDays = DefaultMaxContentAgeDays
	}
	return c
}

// Outcome summarizes a finished run.
type Outcome struct {
	PagesScraped int
	PagesMatched int
	Summary      string
}

// Orchestrator runs the scrape pipeline. A returned error means the
// attempt itself broke (store unavailable, context cancelled) and the
// caller may redispatch; per-article failures are absorbed into the job
// log and never produce an error.
type Orchestrator struct {
	fetcher  Fetcher
	extract  Extractor
	matcher  Matcher
	pages    PageStore
	jobs     JobStore
	websites WebsiteStore
	log      logger.Interface
	cfg      Config
	now      func() time.Time
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	f Fetcher,
	e Extractor,
	m Matcher,
	pages PageStore,
	jobs JobStore,
	websites WebsiteStore,
	log logger.Interface,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		fetcher:  f,
		extract:  e,
		matcher:  m,
		pages:    pages,
		jobs:     jobs,
		websites: websites,
		log:      log,
		cfg:      cfg.WithDefaults(),
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Scrape executes one run for the given website and pending job.
func (o *Orchestrator) Scrape(ctx context.Context, website *domain.Website, job domain.ScrapeJob) (*Outcome, error) {
	running, err := job.Start(o.now())
	if err != nil {
		return nil, err
	}
	if err := o.jobs.Update(ctx, &running); err != nil {
		return nil, fmt.Errorf("mark job running: %w", err)
	}

	log := o.log.With("website_id", website.ID, "job_id", job.ID)
	log.Info("scrape started", "url", website.URL)

	homepage, err := o.fetcher.Fetch(ctx, website.URL)
	if err != nil {
		reason := fmt.Sprintf("homepage fetch failed: %v", err)
		log.Error("scrape aborted", "error", err.Error())
		return o.fail(ctx, running, reason, 0, 0)
	}

	links, err := o.extract.DiscoverArticleLinks(homepage.HTML, website.URL)
	if err != nil {
		return o.fail(ctx, running, fmt.Sprintf("link discovery failed: %v", err), 0, 0)
	}

	if len(links) > o.cfg.MaxArticlesPerRun {
		links = links[:o.cfg.MaxArticlesPerRun]
	}

	run := &runState{limiter: NewRateLimiter(website.RateLimitPerMinute)}

	for _, link := range links {
		if err := o.scrapeArticle(ctx, website, run, link); err != nil {
			// Context gone: mark what we have and surface the error so
			// the dispatcher can retry the attempt.
			o.failBestEffort(running, err.Error(), run)
			return nil, err
		}
	}

	if err := o.websites.UpdateLastScraped(ctx, website.ID, o.now()); err != nil {
		log.Error("update last_scraped_at failed", "error", err.Error())
		run.record("update last_scraped_at failed: %v", err)
	}

	summary := run.summary()
	completed, err := running.Complete(o.now(), run.scraped, run.matched, summary)
	if err != nil {
		return nil, err
	}
	if err := o.jobs.Update(ctx, &completed); err != nil {
		return nil, fmt.Errorf("mark job completed: %w", err)
	}

	log.Info("scrape completed", "pages_scraped", run.scraped, "pages_matched", run.matched)

	return &Outcome{PagesScraped: run.scraped, PagesMatched: run.matched, Summary: summary}, nil
}

// scrapeArticle handles one candidate link. Only context failures
// propagate; everything else is recorded and swallowed.
func (o *Orchestrator) scrapeArticle(ctx context.Context, website *domain.Website, run *runState, link string) error {
	if err := run.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	page, err := o.fetcher.Fetch(ctx, link)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		run.record("fetch failed: %s: %v", link, err)
		return nil
	}

	data, err := o.extract.ExtractContent(page.HTML, link)
	if err != nil {
		run.record("extract failed: %s: %v", link, err)
		return nil
	}

	run.scraped++

	if o.tooOld(data.PublishDate) {
		run.record("skipped (too old): %s", link)
		return nil
	}

	matches, err := o.matcher.Match(ctx, data.Title, data.ContentText)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		run.record("match failed: %s: %v", link, err)
		return nil
	}

	if len(matches) == 0 {
		run.record("no keyword match: %s", link)
		return nil
	}

	_, created, err := o.pages.Save(ctx, website.ID, data, matches, link, o.now())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		run.record("save failed: %s: %v", link, err)
		return nil
	}

	run.matched++
	if created {
		run.record("saved: %s (%d keywords)", link, len(matches))
	} else {
		run.record("merged into existing page: %s", link)
	}

	return nil
}

// tooOld applies the content age cutoff. Articles without a publish
// date pass; the store stamps them with the scrape time.
func (o *Orchestrator) tooOld(publishDate *time.Time) bool {
	if o.cfg.MaxContentAgeDays == 0 || publishDate == nil {
		return false
	}
	cutoff := o.now().AddDate(0, 0, -o.cfg.MaxContentAgeDays)
	return publishDate.Before(cutoff)
}

// fail marks the job failed and reports the run as a handled outcome.
func (o *Orchestrator) fail(ctx context.Context, running domain.ScrapeJob, reason string, scraped, matched int) (*Outcome, error) {
	failed, err := running.Fail(o.now(), reason, scraped, matched)
	if err != nil {
		return nil, err
	}
	if err := o.jobs.Update(ctx, &failed); err != nil {
		return nil, fmt.Errorf("mark job failed: %w", err)
	}

	return &Outcome{PagesScraped: scraped, PagesMatched: matched, Summary: reason}, nil
}

// failBestEffort records a failure with a detached context; the original
// context is already cancelled when this runs.
func (o *Orchestrator) failBestEffort(running domain.ScrapeJob, reason string, run *runState) {
	failed, err := running.Fail(o.now(), reason, run.scraped, run.matched)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.jobs.Update(ctx, &failed); err != nil {
		o.log.Error("mark job failed after cancellation", "job_id", failed.ID, "error", err.Error())
	}
}

// runState accumulates counters and the human-readable log for one run.
type runState struct {
	limiter *RateLimiter
	scraped int
	matched int
	lines   []string
}

func (r *runState) record(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *runState) summary() string {
	head := fmt.Sprintf("scraped %d pages, matched %d", r.scraped, r.matched)
	if len(r.lines) == 0 {
		return head
	}
	return head + "\n" + strings.Join(r.lines, "\n")
}
