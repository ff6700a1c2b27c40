package domain

// MatchType is the matching strategy applied to a keyword rule.
type MatchType string

const (
	// MatchExact requires the keyword as a whole word.
	MatchExact MatchType = "exact"
	// MatchPhrase requires the keyword as a case-insensitive substring.
	MatchPhrase MatchType = "phrase"
	// MatchRegex treats the keyword as a case-insensitive regular expression.
	MatchRegex MatchType = "regex"
)

// Valid reports whether the match type is one of the known strategies.
func (m MatchType) Valid() bool {
	switch m {
	case MatchExact, MatchPhrase, MatchRegex:
		return true
	default:
		return false
	}
}

// Topic groups keyword rules under a named subject area.
type Topic struct {
	ID          int64  `db:"id"          json:"id"`
	Name        string `db:"name"        json:"name"`
	Description string `db:"description" json:"description"`
}

// Keyword is a single matching rule owned by a topic.
type Keyword struct {
	ID        int64     `db:"id"         json:"id"`
	TopicID   int64     `db:"topic_id"   json:"topic_id"`
	Keyword   string    `db:"keyword"    json:"keyword"`
	MatchType MatchType `db:"match_type" json:"match_type"`
}

// KeywordRule is a keyword joined with its topic, the unit the matcher
// evaluates. Rows are ordered by (topic_id, id) so evaluation order is
// stable for a fixed rule set.
type KeywordRule struct {
	KeywordID int64     `db:"keyword_id" json:"keyword_id"`
	Keyword   string    `db:"keyword"    json:"keyword"`
	TopicID   int64     `db:"topic_id"   json:"topic_id"`
	TopicName string    `db:"topic_name" json:"topic_name"`
	MatchType MatchType `db:"match_type" json:"match_type"`
}

// KeywordMatch records one rule that matched a page. Stored as an element
// of the scraped page's matched_keywords JSONB list.
type KeywordMatch struct {
	KeywordID int64     `json:"keyword_id"`
	Keyword   string    `json:"keyword"`
	TopicID   int64     `json:"topic_id"`
	TopicName string    `json:"topic_name"`
	MatchType MatchType `json:"match_type"`
}
