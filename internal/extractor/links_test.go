package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsgrabber/internal/extractor"
)

func TestDiscoverArticleLinks_FiltersAndOrders(t *testing.T) {
	html := `
		<html><body>
			<a href="https://news.example.com/politics/council-votes">Council votes</a>
			<a href="/local/bridge-repair-funding">Bridge repair</a>
			<a href="//news.example.com/sports/finals-recap">Finals recap</a>
			<a href="business/factory-opens">Factory opens</a>
			<a href="/2024/03/flood-warning-issued">Flood warning</a>
			<a href="/tag/housing">Housing tag</a>
			<a href="/category/opinion">Opinion</a>
			<a href="https://other.example.org/politics/external-story">External</a>
			<a href="/">Home</a>
			<a href="#top">Back to top</a>
			<a href="mailto:tips@news.example.com">Send a tip</a>
			<a href="/assets/logo.png">Logo</a>
		</body></html>
	`

	e := extractor.NewContentExtractor(extractor.Config{})

	links, err := e.DiscoverArticleLinks(html, "https://news.example.com/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://news.example.com/politics/council-votes",
		"https://news.example.com/local/bridge-repair-funding",
		"https://news.example.com/sports/finals-recap",
		"https://news.example.com/business/factory-opens",
		"https://news.example.com/2024/03/flood-warning-issued",
	}, links)
}

func TestDiscoverArticleLinks_Deduplicates(t *testing.T) {
	html := `
		<a href="/local/story-one">First mention</a>
		<a href="/local/story-one">Second mention</a>
		<a href="/local/story-one#comments">Anchor variant</a>
	`

	e := extractor.NewContentExtractor(extractor.Config{})

	links, err := e.DiscoverArticleLinks(html, "https://news.example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news.example.com/local/story-one"}, links)
}

func TestDiscoverArticleLinks_DepthLimit(t *testing.T) {
	html := `
		<a href="/a/b/c/d/e/f">Six deep</a>
		<a href="/a/b/c/d/e/f/g">Seven deep</a>
	`

	e := extractor.NewContentExtractor(extractor.Config{})

	links, err := e.DiscoverArticleLinks(html, "https://news.example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news.example.com/a/b/c/d/e/f"}, links)
}

func TestDiscoverArticleLinks_EmptyPage(t *testing.T) {
	e := extractor.NewContentExtractor(extractor.Config{})

	links, err := e.DiscoverArticleLinks("<html><body></body></html>", "https://news.example.com/")
	require.NoError(t, err)
	assert.Empty(t, links)
}
