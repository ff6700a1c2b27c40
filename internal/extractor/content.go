// Package extractor turns raw HTML into structured article data and
// discovers article links on listing pages.
package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// contentStrategy locates a candidate content block. Strategies run in
// priority order; the first whose extracted text clears minChars wins.
type contentStrategy struct {
	name     string
	minChars int
	find     func(doc *goquery.Document) *goquery.Selection
}

// ContentExtractor parses article pages with goquery.
type ContentExtractor struct {
	cfg        Config
	strategies []contentStrategy
}

// NewContentExtractor creates an extractor from the given config.
func NewContentExtractor(cfg Config) *ContentExtractor {
	cfg = cfg.WithDefaults()

	return &ContentExtractor{
		cfg: cfg,
		strategies: []contentStrategy{
			{
				name:     "cms_selectors",
				minChars: minSelectorChars,
				find: func(doc *goquery.Document) *goquery.Selection {
					return doc.Find(".entry-content, .post-content, .article-body, .article-content, .story-body, [itemprop='articleBody']").First()
				},
			},
			{
				name:     "semantic_elements",
				minChars: minSelectorChars,
				find: func(doc *goquery.Document) *goquery.Selection {
					return doc.Find("article, main, [role='main']").First()
				},
			},
			{
				name:     "largest_block",
				minChars: minStructuralChars,
				find:     findLargestTextBlock,
			},
		},
	}
}

// ExtractContent parses an article page into structured data. Fields
// degrade independently: a page with no recognizable content block still
// yields title, canonical URL, and the rest.
func (e *ContentExtractor) ExtractContent(html, pageURL string) (*domain.ArticleData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	data := &domain.ArticleData{
		Title:           extractTitle(doc),
		MetaDescription: extractMetaDescription(doc),
		CanonicalURL:    extractCanonicalURL(doc, pageURL),
		PublishDate:     extractPublishDate(doc),
		Language:        extractLanguage(doc),
	}

	content := e.selectContent(doc)
	if content != nil {
		data.ContentText = e.extractText(content)

		if e.cfg.StoreRawHTML {
			if raw := sanitizedHTML(content); raw != "" {
				data.ContentHTML = &raw
			}
		}
	}

	data.Images = extractImages(doc, content, pageURL)

	return data, nil
}

// selectContent runs the strategies in order and returns a cleaned clone
// of the first block whose text clears the strategy's threshold.
func (e *ContentExtractor) selectContent(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range e.strategies {
		sel := strategy.find(doc)
		if sel == nil || sel.Length() == 0 {
			continue
		}

		cleaned := e.cleanClone(sel)
		if len(e.extractText(cleaned)) >= strategy.minChars {
			return cleaned
		}
	}

	return nil
}

// cleanClone strips boilerplate from a detached copy so the document
// stays intact for the other field extractors.
func (e *ContentExtractor) cleanClone(sel *goquery.Selection) *goquery.Selection {
	clone := sel.Clone()
	clone.Find(strings.Join(e.cfg.RemoveSelectors, ", ")).Remove()
	return clone
}

// extractText builds content text paragraph-wise. Paragraphs shorter
// than the minimum are captions and bylines more often than prose.
func (e *ContentExtractor) extractText(sel *goquery.Selection) string {
	var paragraphs []string

	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := collapseWhitespace(p.Text())
		if len(text) > minParagraphChars {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}

	return collapseWhitespace(sel.Text())
}

// findLargestTextBlock picks the div/section/article with the most text,
// requiring at least two paragraphs so link farms don't qualify.
func findLargestTextBlock(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0

	doc.Find("div, section, article").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p").Length() < 2 {
			return
		}

		if textLen := len(collapseWhitespace(s.Text())); textLen > bestLen {
			best = s
			bestLen = textLen
		}
	})

	return best
}

func extractTitle(doc *goquery.Document) string {
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractMetaDescription(doc *goquery.Document) string {
	if ogDesc, exists := doc.Find("meta[property='og:description']").Attr("content"); exists {
		if desc := strings.TrimSpace(ogDesc); desc != "" {
			return desc
		}
	}

	if desc, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		return strings.TrimSpace(desc)
	}

	return ""
}

func extractCanonicalURL(doc *goquery.Document, pageURL string) string {
	if canonical, exists := doc.Find("link[rel='canonical']").Attr("href"); exists {
		if c := absolutizeAgainst(pageURL, strings.TrimSpace(canonical)); c != "" {
			return c
		}
	}

	if ogURL, exists := doc.Find("meta[property='og:url']").Attr("content"); exists {
		if c := strings.TrimSpace(ogURL); c != "" {
			return c
		}
	}

	return pageURL
}

// absolutizeAgainst resolves a possibly-relative URL against the fetched
// page URL, or returns empty when either side is unusable.
func absolutizeAgainst(pageURL, raw string) string {
	if raw == "" {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}

// publishDateProbes lists date sources in priority order.
var publishDateProbes = []struct {
	selector string
	attr     string
}{
	{"meta[property='article:published_time']", "content"},
	{"meta[name='publish_date']", "content"},
	{"meta[name='date']", "content"},
	{"time[datetime]", "datetime"},
	{"meta[property='og:published_time']", "content"},
}

// publishDateLayouts covers the formats news CMSes actually emit.
var publishDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

func extractPublishDate(doc *goquery.Document) *time.Time {
	for _, probe := range publishDateProbes {
		raw, exists := doc.Find(probe.selector).First().Attr(probe.attr)
		if !exists {
			continue
		}

		if t := parsePublishDate(strings.TrimSpace(raw)); t != nil {
			return t
		}
	}

	return nil
}

func parsePublishDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	return nil
}

// extractImages gathers og:image then in-content images, absolutized and
// deduplicated, capped at domain.MaxPageImages.
func extractImages(doc *goquery.Document, content *goquery.Selection, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	var images []string

	add := func(raw string) {
		if len(images) >= domain.MaxPageImages {
			return
		}

		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
			return
		}

		if base != nil {
			if ref, parseErr := url.Parse(raw); parseErr == nil {
				raw = base.ResolveReference(ref).String()
			}
		}

		if _, dup := seen[raw]; dup {
			return
		}
		seen[raw] = struct{}{}
		images = append(images, raw)
	}

	doc.Find("meta[property='og:image']").Each(func(_ int, s *goquery.Selection) {
		if src, exists := s.Attr("content"); exists {
			add(src)
		}
	})

	if content != nil {
		content.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
			if src, exists := s.Attr("src"); exists {
				add(src)
			}
		})
	}

	return images
}

func extractLanguage(doc *goquery.Document) string {
	if lang, exists := doc.Find("html").Attr("lang"); exists {
		return strings.ToLower(strings.TrimSpace(lang))
	}
	return ""
}

// jsHrefPattern matches javascript: hrefs left in kept markup.
var jsHrefPattern = regexp.MustCompile(`(?i)href\s*=\s*(['"])javascript:[^'"]*['"]`)

// sanitizedHTML renders the cleaned content block with active content
// removed. Scripts are already stripped by the boilerplate pass; this
// drops inline handlers and javascript: links.
func sanitizedHTML(sel *goquery.Selection) string {
	sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		var handlers []string
		for _, attr := range s.Nodes[0].Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				handlers = append(handlers, attr.Key)
			}
		}
		for _, key := range handlers {
			s.RemoveAttr(key)
		}
	})

	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(jsHrefPattern.ReplaceAllString(html, `href="#"`))
}

// whitespacePattern collapses runs of whitespace, newlines included.
var whitespacePattern = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
