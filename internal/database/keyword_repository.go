package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// KeywordRepository reads keyword rules for the matcher. Rules are
// re-queried on every evaluation pass so rule changes made by admin
// tooling take effect mid-run.
type KeywordRepository struct {
	db *sqlx.DB
}

// NewKeywordRepository creates a new keyword repository.
func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// ListRules retrieves the full rule set joined with topic names, ordered
// by (topic_id, id) so match output is deterministic for a fixed rule set.
func (r *KeywordRepository) ListRules(ctx context.Context) ([]domain.KeywordRule, error) {
	var rules []domain.KeywordRule
	query := `
		SELECT k.id AS keyword_id, k.keyword, k.topic_id, t.name AS topic_name, k.match_type
		FROM keywords k
		JOIN topics t ON t.id = k.topic_id
		ORDER BY k.topic_id, k.id
	`

	err := r.db.SelectContext(ctx, &rules, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword rules: %w", err)
	}

	return rules, nil
}
