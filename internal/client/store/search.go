package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophpos/internal/dbx"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns up to limit in-scope records with a search field containing
// query, ignoring case. Exact matches come first, then prefix matches, then
// other substring matches; ties keep insertion order. Scope filters are
// applied before the limit, so out-of-scope records never take a slot.
// A non-positive limit means no limit.
func (s *Store) Search(ctx context.Context, c Collection, query string, scope Scope, limit int) ([]Record, error) {
	if err := c.checkScope(scope); err != nil {
		return nil, fmt.Errorf("search %s: %w", c.Name, err)
	}
	if len(c.SearchFields) == 0 {
		return []Record{}, nil
	}
	if limit <= 0 {
		limit = -1
	}

	q := likeEscaper.Replace(query)

	args := []any{c.Name}
	for _, f := range c.SearchFields {
		args = append(args, f)
	}
	args = append(args, "%"+q+"%")
	clause, scopeArgs := scopeClause(scope)
	args = append(args, scopeArgs...)
	args = append(args, q, q+"%", limit)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.SearchFields)), ", ")
	stmt := `
		SELECT r.key, r.data, r.updated_at, r.stored_at
		FROM records r
		JOIN record_fields f ON f.collection = r.collection AND f.key = r.key
		WHERE r.collection = ?
			AND f.name IN (` + placeholders + `)
			AND f.value LIKE ? ESCAPE '\'` + clause + `
		GROUP BY r.seq
		ORDER BY MIN(CASE
			WHEN f.value LIKE ? ESCAPE '\' THEN 0
			WHEN f.value LIKE ? ESCAPE '\' THEN 1
			ELSE 2
		END), r.seq
		LIMIT ?`

	recs, err := dbx.QueryAll(ctx, s.db, scanRecord, stmt, args...)
	if err != nil {
		return nil, unavailable("search "+c.Name, err)
	}
	return recs, nil
}
