package index

import (
	"fmt"
	"strings"
)

// Search runs a full-text query over titles, topics and bodies. The
// query uses FTS4 MATCH syntax; a bare word list means AND. Results come
// back in curriculum order with a highlighted snippet.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
        SELECT f.path, l.slug, l.title, snippet(lessons_fts, '[', ']', '...', 3, 12)
        FROM lessons_fts AS f
        JOIN lessons AS l ON l.path = f.path
        WHERE lessons_fts MATCH ?
        ORDER BY l.sort_order, l.path
        LIMIT ?
    `, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var result SearchResult
		if err := rows.Scan(&result.Path, &result.Slug, &result.Title, &result.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}
	return results, nil
}
