package index

import (
	"database/sql"
	"fmt"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// IndexLesson derives all index rows from a parsed lesson and writes
// them in one transaction.
func (s *Store) IndexLesson(lesson *corpus.Lesson) error {
	record := LessonRecord{
		Path:         lesson.Path,
		Slug:         lesson.Slug(),
		Title:        lesson.Title(),
		Topic:        lesson.FrontMatter.Topic,
		Dialect:      lesson.FrontMatter.Dialect,
		Summary:      lesson.FrontMatter.Summary,
		Order:        lesson.FrontMatter.Order,
		Draft:        lesson.FrontMatter.Draft,
		Checksum:     lesson.Checksum,
		LastModified: lesson.ModTime.Unix(),
	}

	sections := make([]SectionRecord, 0, len(lesson.Doc.Headings))
	for _, h := range lesson.Doc.Headings {
		sections = append(sections, SectionRecord{
			LessonPath: lesson.Path,
			Anchor:     h.Anchor,
			Title:      h.Text,
			Level:      h.Level,
			Line:       lesson.FileLine(h.Line),
		})
	}

	snippets := make([]SnippetRecord, 0, len(lesson.Doc.Blocks))
	for i, block := range lesson.Doc.Blocks {
		snippets = append(snippets, SnippetRecord{
			LessonPath: lesson.Path,
			Ord:        i,
			Lang:       block.Lang,
			Dialect:    block.Dialect(),
			NoRun:      block.HasAttr("norun"),
			Content:    block.Content,
			StartLine:  lesson.FileLine(block.StartLine),
		})
	}

	links := lessonLinks(lesson)

	return s.WithTx(func(tx *Tx) error {
		if err := tx.UpsertLesson(record, sections, snippets, links); err != nil {
			return err
		}
		return tx.UpdateFTS(lesson.Path, record.Title, record.Topic, string(lesson.Body))
	})
}

// lessonLinks resolves internal links to corpus paths. Unresolvable or
// external destinations are not edges; the linter reports them.
func lessonLinks(lesson *corpus.Lesson) []LinkRecord {
	var links []LinkRecord
	for _, link := range lesson.Doc.Links {
		if link.Kind == markdown.LinkKindAuto || link.External() || link.Destination == "" {
			continue
		}
		if link.FragmentOnly() {
			continue
		}
		target, fragment := link.SplitTarget()
		resolved, err := corpus.ResolveTarget(lesson.Path, target)
		if err != nil {
			continue
		}
		links = append(links, LinkRecord{
			SourcePath: lesson.Path,
			TargetPath: resolved,
			Fragment:   fragment,
			Line:       lesson.FileLine(link.Line),
		})
	}
	return links
}

// DeleteLesson removes one lesson and its derived rows.
func (s *Store) DeleteLesson(path string) error {
	return s.WithTx(func(tx *Tx) error {
		return tx.DeleteLesson(path)
	})
}

// GetLesson retrieves one lesson record by path.
func (s *Store) GetLesson(path string) (*LessonRecord, error) {
	row := s.db.QueryRow(`
        SELECT path, slug, title, topic, dialect, summary, sort_order, draft, checksum, last_modified
        FROM lessons WHERE path = ?
    `, path)
	return scanLesson(row)
}

// GetLessonBySlug retrieves one lesson record by slug.
func (s *Store) GetLessonBySlug(slug string) (*LessonRecord, error) {
	row := s.db.QueryRow(`
        SELECT path, slug, title, topic, dialect, summary, sort_order, draft, checksum, last_modified
        FROM lessons WHERE slug = ? LIMIT 1
    `, slug)
	return scanLesson(row)
}

func scanLesson(row *sql.Row) (*LessonRecord, error) {
	var record LessonRecord
	var draft int
	err := row.Scan(&record.Path, &record.Slug, &record.Title, &record.Topic,
		&record.Dialect, &record.Summary, &record.Order, &draft,
		&record.Checksum, &record.LastModified)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson: %w", err)
	}
	record.Draft = draft != 0
	return &record, nil
}

// AllLessons returns every lesson record keyed by path, the shape the
// incremental sync diffs against.
func (s *Store) AllLessons() (map[string]LessonRecord, error) {
	rows, err := s.db.Query(`
        SELECT path, slug, title, topic, dialect, summary, sort_order, draft, checksum, last_modified
        FROM lessons
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	records := make(map[string]LessonRecord)
	for rows.Next() {
		var record LessonRecord
		var draft int
		if err := rows.Scan(&record.Path, &record.Slug, &record.Title, &record.Topic,
			&record.Dialect, &record.Summary, &record.Order, &draft,
			&record.Checksum, &record.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan lesson record: %w", err)
		}
		record.Draft = draft != 0
		records[record.Path] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson records: %w", err)
	}
	return records, nil
}

// ListLessons returns lesson records in curriculum order.
func (s *Store) ListLessons() ([]LessonRecord, error) {
	rows, err := s.db.Query(`
        SELECT path, slug, title, topic, dialect, summary, sort_order, draft, checksum, last_modified
        FROM lessons ORDER BY sort_order, path
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var records []LessonRecord
	for rows.Next() {
		var record LessonRecord
		var draft int
		if err := rows.Scan(&record.Path, &record.Slug, &record.Title, &record.Topic,
			&record.Dialect, &record.Summary, &record.Order, &draft,
			&record.Checksum, &record.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan lesson record: %w", err)
		}
		record.Draft = draft != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson records: %w", err)
	}
	return records, nil
}

// Sections returns the headings of a lesson in document order.
func (s *Store) Sections(path string) ([]SectionRecord, error) {
	rows, err := s.db.Query(`
        SELECT lesson_path, anchor, title, level, line
        FROM sections WHERE lesson_path = ? ORDER BY line
    `, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var records []SectionRecord
	for rows.Next() {
		var record SectionRecord
		if err := rows.Scan(&record.LessonPath, &record.Anchor, &record.Title,
			&record.Level, &record.Line); err != nil {
			return nil, fmt.Errorf("failed to scan section record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating section records: %w", err)
	}
	return records, nil
}

// Snippets returns the code blocks of a lesson in document order.
func (s *Store) Snippets(path string) ([]SnippetRecord, error) {
	rows, err := s.db.Query(`
        SELECT lesson_path, ord, lang, dialect, norun, content, start_line
        FROM snippets WHERE lesson_path = ? ORDER BY ord
    `, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query snippets: %w", err)
	}
	defer rows.Close()

	var records []SnippetRecord
	for rows.Next() {
		var record SnippetRecord
		var norun int
		if err := rows.Scan(&record.LessonPath, &record.Ord, &record.Lang,
			&record.Dialect, &norun, &record.Content, &record.StartLine); err != nil {
			return nil, fmt.Errorf("failed to scan snippet record: %w", err)
		}
		record.NoRun = norun != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snippet records: %w", err)
	}
	return records, nil
}

// LinksFrom returns the outgoing link edges of a lesson.
func (s *Store) LinksFrom(path string) ([]LinkRecord, error) {
	return s.queryLinks(`
        SELECT source_path, target_path, fragment, line
        FROM links WHERE source_path = ? ORDER BY line
    `, path)
}

// LinksTo returns the incoming link edges of a lesson.
func (s *Store) LinksTo(path string) ([]LinkRecord, error) {
	return s.queryLinks(`
        SELECT source_path, target_path, fragment, line
        FROM links WHERE target_path = ? ORDER BY source_path, line
    `, path)
}

func (s *Store) queryLinks(query, path string) ([]LinkRecord, error) {
	rows, err := s.db.Query(query, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var records []LinkRecord
	for rows.Next() {
		var record LinkRecord
		if err := rows.Scan(&record.SourcePath, &record.TargetPath,
			&record.Fragment, &record.Line); err != nil {
			return nil, fmt.Errorf("failed to scan link record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link records: %w", err)
	}
	return records, nil
}
