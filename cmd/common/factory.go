package common

import (
	"github.com/jonesrussell/newsgrabber/internal/database"
	"github.com/jonesrussell/newsgrabber/internal/extractor"
	"github.com/jonesrussell/newsgrabber/internal/fetcher"
	"github.com/jonesrussell/newsgrabber/internal/matcher"
	"github.com/jonesrussell/newsgrabber/internal/runner"
	"github.com/jonesrussell/newsgrabber/internal/scraper"
)

// Pipeline bundles the wired scrape pipeline and its repositories.
type Pipeline struct {
	Websites *database.WebsiteRepository
	Jobs     *database.JobRepository
	Pages    *database.PageRepository
	Runner   *runner.Runner
}

// NewPipeline wires the full fetch-extract-match-store pipeline from the
// loaded configuration.
func NewPipeline(deps *Deps) *Pipeline {
	websiteRepo := database.NewWebsiteRepository(deps.DB)
	jobRepo := database.NewJobRepository(deps.DB)
	pageRepo := database.NewPageRepository(deps.DB)
	keywordRepo := database.NewKeywordRepository(deps.DB)

	fetch := fetcher.NewClient(fetcher.Config{
		UserAgent:          deps.Config.Scraper.UserAgent,
		Timeout:            deps.Config.Scraper.FetchTimeout,
		MaxContentSize:     deps.Config.Scraper.MaxContentSize,
		InsecureSkipVerify: deps.Config.Scraper.InsecureSkipVerify,
	}, deps.Logger)

	extract := extractor.NewContentExtractor(extractor.Config{
		StoreRawHTML: deps.Config.Scraper.StoreRawHTML,
	})

	match := matcher.NewKeywordMatcher(keywordRepo, deps.Logger)

	orchestrator := scraper.NewOrchestrator(
		fetch,
		extract,
		match,
		pageRepo,
		jobRepo,
		websiteRepo,
		deps.Logger,
		scraper.Config{
			MaxArticlesPerRun: deps.Config.Scraper.MaxArticlesPerRun,
			MaxContentAgeDays: deps.Config.Scraper.MaxContentAgeDays,
		},
	)

	jobRunner := runner.New(orchestrator, jobRepo, deps.Logger, runner.Config{
		PoolSize:       deps.Config.Scheduler.WorkerPoolSize,
		MaxAttempts:    deps.Config.Scheduler.MaxRetries,
		Backoff:        deps.Config.Scheduler.RetryBackoff,
		AttemptTimeout: deps.Config.Scheduler.AttemptTimeout,
	})

	return &Pipeline{
		Websites: websiteRepo,
		Jobs:     jobRepo,
		Pages:    pageRepo,
		Runner:   jobRunner,
	}
}
