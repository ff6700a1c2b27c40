package extractor

// Minimum extracted-text lengths per selection strategy. The structural
// fallback needs a higher bar because it can land on sidebars and
// comment wells.
const (
	minSelectorChars   = 100
	minStructuralChars = 200
	minParagraphChars  = 20
)

// defaultRemoveSelectors strips boilerplate from a selected content
// block before text extraction.
var defaultRemoveSelectors = []string{
	"script", "style", "noscript", "iframe", "form",
	"nav", "header", "footer", "aside",
	".share", ".social", ".social-share",
	".comments", ".comment-section",
	".related", ".related-posts", ".recommended",
	".newsletter", ".subscribe",
	".advertisement", ".ad", ".ads", ".ad-container",
	".cookie", ".cookie-banner", ".cookie-notice",
	".breadcrumb", ".breadcrumbs",
}

// Config holds extraction settings.
type Config struct {
	// StoreRawHTML keeps a sanitized copy of the selected content block.
	StoreRawHTML bool
	// RemoveSelectors overrides the boilerplate denylist when non-empty.
	RemoveSelectors []string
}

// WithDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if len(c.RemoveSelectors) == 0 {
		c.RemoveSelectors = defaultRemoveSelectors
	}
	return c
}
