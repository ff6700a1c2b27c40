package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Path depth bounds for article candidates. Single-segment paths are
// usually sections; anything deeper than six segments is usually not an
// article either, but the ceiling mostly guards against calendar and
// facet URLs.
const (
	minPathDepth = 1
	maxPathDepth = 6
)

// excludedSegments marks non-article sections by path segment.
var excludedSegments = map[string]struct{}{
	"tag": {}, "tags": {},
	"category": {}, "categories": {},
	"author": {}, "authors": {},
	"page": {}, "search": {},
	"login": {}, "register": {}, "signup": {},
	"admin": {}, "wp-admin": {}, "wp-login.php": {},
	"feed": {}, "feeds": {}, "rss": {},
	"privacy": {}, "privacy-policy": {},
	"terms": {}, "terms-of-service": {},
	"contact": {}, "about": {},
	"subscribe": {}, "newsletter": {},
	"cart": {}, "checkout": {},
}

// excludedExtensions marks static assets and machine feeds.
var excludedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".css", ".js", ".json", ".xml",
	".pdf", ".zip", ".gz",
	".mp3", ".mp4", ".avi", ".mov",
}

// DiscoverArticleLinks collects candidate article URLs from a listing
// page. Links are absolutized against baseURL, restricted to the same
// host, filtered by path shape, and returned deduplicated in document
// order.
func (e *ContentExtractor) DiscoverArticleLinks(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")

		candidate := absolutize(base, href)
		if candidate == nil {
			return
		}

		if !isArticlePath(base, candidate) {
			return
		}

		normalized := candidate.String()
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links, nil
}

// absolutize resolves href against base, rejecting non-navigational
// schemes. Fragments are dropped so anchor variants dedupe together.
func absolutize(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}

	resolved.Fragment = ""
	return resolved
}

// isArticlePath applies the same-host, depth, and denylist checks.
func isArticlePath(base, candidate *url.URL) bool {
	if !strings.EqualFold(candidate.Host, base.Host) {
		return false
	}

	path := strings.Trim(candidate.Path, "/")
	if path == "" {
		return false
	}

	lowerPath := strings.ToLower(path)
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return false
		}
	}

	segments := strings.Split(lowerPath, "/")
	if len(segments) < minPathDepth || len(segments) > maxPathDepth {
		return false
	}

	for _, segment := range segments {
		if _, excluded := excludedSegments[segment]; excluded {
			return false
		}
	}

	return true
}
