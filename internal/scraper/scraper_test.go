package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/fetcher"
	"github.com/jonesrussell/newsgrabber/internal/logger"
	"github.com/jonesrussell/newsgrabber/internal/scraper"
)

type fakeFetcher struct {
	pages  map[string]string
	errors map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetcher.Result, error) {
	if err, ok := f.errors[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &fetcher.FetchError{URL: url, StatusCode: 404}
	}
	return &fetcher.Result{HTML: html, StatusCode: 200}, nil
}

type fakeExtractor struct {
	links    []string
	articles map[string]*domain.ArticleData
}

func (f *fakeExtractor) DiscoverArticleLinks(_, _ string) ([]string, error) {
	return f.links, nil
}

func (f *fakeExtractor) ExtractContent(_, pageURL string) (*domain.ArticleData, error) {
	data, ok := f.articles[pageURL]
	if !ok {
		return nil, fmt.Errorf("no article for %s", pageURL)
	}
	return data, nil
}

type fakeMatcher struct {
	matches map[string][]domain.KeywordMatch
}

func (f *fakeMatcher) Match(_ context.Context, title, _ string) ([]domain.KeywordMatch, error) {
	return f.matches[title], nil
}

type savedPage struct {
	websiteID int64
	sourceURL string
	matches   []domain.KeywordMatch
}

type fakePageStore struct {
	saved   []savedPage
	saveErr error
}

func (f *fakePageStore) Save(
	_ context.Context,
	websiteID int64,
	data *domain.ArticleData,
	matches []domain.KeywordMatch,
	sourceURL string,
	_ time.Time,
) (*domain.ScrapedPage, bool, error) {
	if f.saveErr != nil {
		return nil, false, f.saveErr
	}
	f.saved = append(f.saved, savedPage{websiteID: websiteID, sourceURL: sourceURL, matches: matches})
	return &domain.ScrapedPage{Title: data.Title}, true, nil
}

type fakeJobStore struct {
	updates []domain.ScrapeJob
}

func (f *fakeJobStore) Update(_ context.Context, job *domain.ScrapeJob) error {
	f.updates = append(f.updates, *job)
	return nil
}

func (f *fakeJobStore) lastStatus() string {
	if len(f.updates) == 0 {
		return ""
	}
	return f.updates[len(f.updates)-1].Status
}

type fakeWebsiteStore struct {
	lastScraped map[int64]time.Time
}

func (f *fakeWebsiteStore) UpdateLastScraped(_ context.Context, id int64, at time.Time) error {
	if f.lastScraped == nil {
		f.lastScraped = map[int64]time.Time{}
	}
	f.lastScraped[id] = at
	return nil
}

func testWebsite() *domain.Website {
	return &domain.Website{
		ID:                 7,
		URL:                "https://news.example.com",
		Label:              "Example News",
		RateLimitPerMinute: 100,
		Active:             true,
	}
}

func pendingJob() domain.ScrapeJob {
	return domain.ScrapeJob{ID: "job-1", WebsiteID: 7, Status: domain.JobStatusPending}
}

func recentArticle(title string) *domain.ArticleData {
	publishDate := time.Now().Add(-24 * time.Hour)
	return &domain.ArticleData{
		Title:        title,
		CanonicalURL: "https://news.example.com/" + title,
		ContentText:  "Body for " + title,
		PublishDate:  &publishDate,
	}
}

func TestScrape_HappyPath(t *testing.T) {
	articleURL := "https://news.example.com/local/story-one"

	fetch := &fakeFetcher{pages: map[string]string{
		"https://news.example.com": "<html>home</html>",
		articleURL:                 "<html>article</html>",
	}}
	extract := &fakeExtractor{
		links:    []string{articleURL},
		articles: map[string]*domain.ArticleData{articleURL: recentArticle("story-one")},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"story-one": {{KeywordID: 1, Keyword: "story", MatchType: domain.MatchExact}},
	}}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}
	websites := &fakeWebsiteStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, websites, logger.NewNoOp(), scraper.Config{})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 1, outcome.PagesMatched)
	assert.Equal(t, domain.JobStatusCompleted, jobs.lastStatus())

	require.Len(t, pages.saved, 1)
	assert.Equal(t, int64(7), pages.saved[0].websiteID)
	assert.Equal(t, articleURL, pages.saved[0].sourceURL)

	_, stamped := websites.lastScraped[7]
	assert.True(t, stamped, "last_scraped_at should be stamped")
}

func TestScrape_HomepageFetchFailure(t *testing.T) {
	fetch := &fakeFetcher{errors: map[string]error{
		"https://news.example.com": &fetcher.FetchError{URL: "https://news.example.com", StatusCode: 503},
	}}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, &fakeExtractor{}, &fakeMatcher{}, &fakePageStore{}, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.PagesScraped)
	assert.Equal(t, 0, outcome.PagesMatched)
	assert.Equal(t, domain.JobStatusFailed, jobs.lastStatus())
	assert.Contains(t, outcome.Summary, "503")
}

func TestScrape_ArticleFetchFailureContinues(t *testing.T) {
	goodURL := "https://news.example.com/local/good"
	badURL := "https://news.example.com/local/bad"

	fetch := &fakeFetcher{
		pages: map[string]string{
			"https://news.example.com": "home",
			goodURL:                    "article",
		},
		errors: map[string]error{
			badURL: &fetcher.FetchError{URL: badURL, StatusCode: 500},
		},
	}
	extract := &fakeExtractor{
		links:    []string{badURL, goodURL},
		articles: map[string]*domain.ArticleData{goodURL: recentArticle("good")},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"good": {{KeywordID: 1, Keyword: "good"}},
	}}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 1, outcome.PagesMatched)
	assert.Equal(t, domain.JobStatusCompleted, jobs.lastStatus())
	assert.Contains(t, outcome.Summary, "fetch failed")
}

func TestScrape_OldArticleScrapedNotPersisted(t *testing.T) {
	articleURL := "https://news.example.com/archive/old-story"
	oldDate := time.Now().AddDate(0, 0, -30)
	article := recentArticle("old-story")
	article.PublishDate = &oldDate

	fetch := &fakeFetcher{pages: map[string]string{
		"https://news.example.com": "home",
		articleURL:                 "article",
	}}
	extract := &fakeExtractor{
		links:    []string{articleURL},
		articles: map[string]*domain.ArticleData{articleURL: article},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"old-story": {{KeywordID: 1, Keyword: "story"}},
	}}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{MaxContentAgeDays: 7})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 0, outcome.PagesMatched)
	assert.Empty(t, pages.saved)
	assert.Contains(t, outcome.Summary, "too old")
}

func TestScrape_ZeroMaxAgeDisablesAgeFilter(t *testing.T) {
	articleURL := "https://news.example.com/archive/old-story"
	oldDate := time.Now().AddDate(0, 0, -30)
	article := recentArticle("old-story")
	article.PublishDate = &oldDate

	fetch := &fakeFetcher{pages: map[string]string{
		"https://news.example.com": "home",
		articleURL:                 "article",
	}}
	extract := &fakeExtractor{
		links:    []string{articleURL},
		articles: map[string]*domain.ArticleData{articleURL: article},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"old-story": {{KeywordID: 1, Keyword: "story"}},
	}}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{MaxContentAgeDays: 0})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 1, outcome.PagesMatched)
	require.Len(t, pages.saved, 1)
	assert.Equal(t, articleURL, pages.saved[0].sourceURL)
}

func TestScrape_NoMatchNotPersisted(t *testing.T) {
	articleURL := "https://news.example.com/local/boring"

	fetch := &fakeFetcher{pages: map[string]string{
		"https://news.example.com": "home",
		articleURL:                 "article",
	}}
	extract := &fakeExtractor{
		links:    []string{articleURL},
		articles: map[string]*domain.ArticleData{articleURL: recentArticle("boring")},
	}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, &fakeMatcher{}, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 0, outcome.PagesMatched)
	assert.Empty(t, pages.saved)
	assert.Equal(t, domain.JobStatusCompleted, jobs.lastStatus())
}

func TestScrape_SaveFailureContinues(t *testing.T) {
	articleURL := "https://news.example.com/local/story"

	fetch := &fakeFetcher{pages: map[string]string{
		"https://news.example.com": "home",
		articleURL:                 "article",
	}}
	extract := &fakeExtractor{
		links:    []string{articleURL},
		articles: map[string]*domain.ArticleData{articleURL: recentArticle("story")},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"story": {{KeywordID: 1, Keyword: "story"}},
	}}
	pages := &fakePageStore{saveErr: errors.New("disk full")}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.PagesScraped)
	assert.Equal(t, 0, outcome.PagesMatched)
	assert.Equal(t, domain.JobStatusCompleted, jobs.lastStatus())
	assert.Contains(t, outcome.Summary, "save failed")
}

func TestScrape_CapsArticlesPerRun(t *testing.T) {
	var links []string
	articles := map[string]*domain.ArticleData{}
	for i := 0; i < 5; i++ {
		u := fmt.Sprintf("https://news.example.com/local/story-%d", i)
		links = append(links, u)
		articles[u] = recentArticle(fmt.Sprintf("story-%d", i))
	}

	pagesHTML := map[string]string{"https://news.example.com": "home"}
	for u := range articles {
		pagesHTML[u] = "article"
	}

	fetch := &fakeFetcher{pages: pagesHTML}
	extract := &fakeExtractor{links: links, articles: articles}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, &fakeMatcher{}, &fakePageStore{}, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{MaxArticlesPerRun: 2})

	outcome, err := o.Scrape(context.Background(), testWebsite(), pendingJob())
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.PagesScraped)
}

// cancellingFetcher cancels the run's context after a fixed number of
// fetches, simulating an attempt timeout mid-run.
type cancellingFetcher struct {
	inner  *fakeFetcher
	cancel context.CancelFunc
	after  int
	calls  int
}

func (f *cancellingFetcher) Fetch(ctx context.Context, url string) (*fetcher.Result, error) {
	f.calls++
	if f.calls > f.after {
		f.cancel()
		return nil, ctx.Err()
	}
	return f.inner.Fetch(ctx, url)
}

func TestScrape_CancelledAttemptKeepsPartialCounts(t *testing.T) {
	firstURL := "https://news.example.com/local/first"
	secondURL := "https://news.example.com/local/second"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetch := &cancellingFetcher{
		inner: &fakeFetcher{pages: map[string]string{
			"https://news.example.com": "home",
			firstURL:                   "article",
		}},
		cancel: cancel,
		after:  2, // homepage plus the first article
	}
	extract := &fakeExtractor{
		links:    []string{firstURL, secondURL},
		articles: map[string]*domain.ArticleData{firstURL: recentArticle("first")},
	}
	match := &fakeMatcher{matches: map[string][]domain.KeywordMatch{
		"first": {{KeywordID: 1, Keyword: "first"}},
	}}
	pages := &fakePageStore{}
	jobs := &fakeJobStore{}

	o := scraper.NewOrchestrator(fetch, extract, match, pages, jobs, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	_, err := o.Scrape(ctx, testWebsite(), pendingJob())
	require.ErrorIs(t, err, context.Canceled)

	require.NotEmpty(t, jobs.updates)
	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.JobStatusFailed, final.Status)
	assert.Equal(t, 1, final.PagesScraped)
	assert.Equal(t, 1, final.PagesMatched)
}

func TestScrape_RejectsNonPendingJob(t *testing.T) {
	o := scraper.NewOrchestrator(&fakeFetcher{}, &fakeExtractor{}, &fakeMatcher{}, &fakePageStore{}, &fakeJobStore{}, &fakeWebsiteStore{}, logger.NewNoOp(), scraper.Config{})

	job := pendingJob()
	job.Status = domain.JobStatusCompleted

	_, err := o.Scrape(context.Background(), testWebsite(), job)
	assert.Error(t, err)
}
