// Package matcher evaluates keyword rules against extracted article text.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// maxRegexPatternLength caps user-supplied regex rules. Go's regexp is
// linear-time, so the cap bounds compile cost rather than match cost.
const maxRegexPatternLength = 512

// RuleProvider supplies the current rule set. The DB-backed provider
// queries per call so admin edits apply to in-flight runs.
type RuleProvider interface {
	ListRules(ctx context.Context) ([]domain.KeywordRule, error)
}

// KeywordMatcher matches articles against keyword rules.
type KeywordMatcher struct {
	rules RuleProvider
	log   logger.Interface
}

// NewKeywordMatcher creates a matcher backed by the given rule provider.
func NewKeywordMatcher(rules RuleProvider, log logger.Interface) *KeywordMatcher {
	return &KeywordMatcher{rules: rules, log: log}
}

// Match evaluates every rule against the article and returns the hits in
// provider order. Title and content are searched together.
func (m *KeywordMatcher) Match(ctx context.Context, title, contentText string) ([]domain.KeywordMatch, error) {
	rules, err := m.rules.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keyword rules: %w", err)
	}

	haystack := normalize(title + " " + contentText)
	if haystack == "" {
		return nil, nil
	}

	var matches []domain.KeywordMatch

	for _, rule := range rules {
		if m.ruleMatches(rule, haystack) {
			matches = append(matches, domain.KeywordMatch{
				KeywordID: rule.KeywordID,
				Keyword:   rule.Keyword,
				TopicID:   rule.TopicID,
				TopicName: rule.TopicName,
				MatchType: rule.MatchType,
			})
		}
	}

	return matches, nil
}

func (m *KeywordMatcher) ruleMatches(rule domain.KeywordRule, haystack string) bool {
	switch rule.MatchType {
	case domain.MatchExact:
		return matchesWholeWord(haystack, normalize(rule.Keyword))
	case domain.MatchPhrase:
		return matchesPhrase(haystack, normalize(rule.Keyword))
	case domain.MatchRegex:
		return m.matchesRegex(rule, haystack)
	default:
		return false
	}
}

// matchesWholeWord requires the keyword to appear as complete words. The
// haystack is already normalized, so word boundaries are single spaces.
func matchesWholeWord(haystack, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+keyword+" ")
}

func matchesPhrase(haystack, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(haystack, phrase)
}

// matchesRegex is fail-closed: an over-long or invalid pattern never
// matches and never aborts the run.
func (m *KeywordMatcher) matchesRegex(rule domain.KeywordRule, haystack string) bool {
	if rule.Keyword == "" || len(rule.Keyword) > maxRegexPatternLength {
		return false
	}

	re, err := regexp.Compile("(?i)" + rule.Keyword)
	if err != nil {
		m.log.Warn("invalid regex keyword skipped",
			"keyword_id", rule.KeywordID,
			"error", err.Error(),
		)
		return false
	}

	return re.MatchString(haystack)
}

// normalize lowercases and reduces text to space-separated word runs so
// exact and phrase matching are punctuation-insensitive.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}
