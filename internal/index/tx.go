package index

import (
	"database/sql"
	"fmt"
)

// Tx exposes the write operations that must happen atomically. A lesson
// and everything derived from it are replaced in one transaction, so
// readers never observe a lesson with stale sections or links.
type Tx struct {
	tx *sql.Tx
}

// UpsertLesson writes the lesson row and replaces its derived rows.
func (t *Tx) UpsertLesson(lesson LessonRecord, sections []SectionRecord, snippets []SnippetRecord, links []LinkRecord) error {
	_, err := t.tx.Exec(`
        INSERT INTO lessons (path, slug, title, topic, dialect, summary, sort_order, draft, checksum, last_modified)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            slug = excluded.slug,
            title = excluded.title,
            topic = excluded.topic,
            dialect = excluded.dialect,
            summary = excluded.summary,
            sort_order = excluded.sort_order,
            draft = excluded.draft,
            checksum = excluded.checksum,
            last_modified = excluded.last_modified
    `, lesson.Path, lesson.Slug, lesson.Title, lesson.Topic, lesson.Dialect,
		lesson.Summary, lesson.Order, boolToInt(lesson.Draft), lesson.Checksum, lesson.LastModified)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson: %w", err)
	}

	if err := t.replaceSections(lesson.Path, sections); err != nil {
		return err
	}
	if err := t.replaceSnippets(lesson.Path, snippets); err != nil {
		return err
	}
	if err := t.replaceLinks(lesson.Path, links); err != nil {
		return err
	}
	return nil
}

// UpdateFTS replaces the full-text row for a lesson.
func (t *Tx) UpdateFTS(path, title, topic, body string) error {
	if _, err := t.tx.Exec("DELETE FROM lessons_fts WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to clear fts row: %w", err)
	}
	_, err := t.tx.Exec(`
        INSERT INTO lessons_fts (path, title, topic, body)
        VALUES (?, ?, ?, ?)
    `, path, title, topic, body)
	if err != nil {
		return fmt.Errorf("failed to insert fts row: %w", err)
	}
	return nil
}

// DeleteLesson removes a lesson and all derived rows, including its
// full-text entry. Derived tables cascade on the foreign key.
func (t *Tx) DeleteLesson(path string) error {
	result, err := t.tx.Exec("DELETE FROM lessons WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	if _, err := t.tx.Exec("DELETE FROM lessons_fts WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete fts row: %w", err)
	}
	return nil
}

func (t *Tx) replaceSections(path string, sections []SectionRecord) error {
	if _, err := t.tx.Exec("DELETE FROM sections WHERE lesson_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete sections: %w", err)
	}
	if len(sections) == 0 {
		return nil
	}
	stmt, err := t.tx.Prepare(`
        INSERT INTO sections (lesson_path, anchor, title, level, line)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare section insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range sections {
		if _, err := stmt.Exec(path, s.Anchor, s.Title, s.Level, s.Line); err != nil {
			return fmt.Errorf("failed to insert section %q: %w", s.Anchor, err)
		}
	}
	return nil
}

func (t *Tx) replaceSnippets(path string, snippets []SnippetRecord) error {
	if _, err := t.tx.Exec("DELETE FROM snippets WHERE lesson_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete snippets: %w", err)
	}
	if len(snippets) == 0 {
		return nil
	}
	stmt, err := t.tx.Prepare(`
        INSERT INTO snippets (lesson_path, ord, lang, dialect, norun, content, start_line)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare snippet insert: %w", err)
	}
	defer stmt.Close()

	for _, sn := range snippets {
		if _, err := stmt.Exec(path, sn.Ord, sn.Lang, sn.Dialect, boolToInt(sn.NoRun), sn.Content, sn.StartLine); err != nil {
			return fmt.Errorf("failed to insert snippet %d: %w", sn.Ord, err)
		}
	}
	return nil
}

func (t *Tx) replaceLinks(path string, links []LinkRecord) error {
	if _, err := t.tx.Exec("DELETE FROM links WHERE source_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete links: %w", err)
	}
	if len(links) == 0 {
		return nil
	}
	stmt, err := t.tx.Prepare(`
        INSERT INTO links (source_path, target_path, fragment, line)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(source_path, target_path, fragment) DO NOTHING
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range links {
		if _, err := stmt.Exec(path, l.TargetPath, l.Fragment, l.Line); err != nil {
			return fmt.Errorf("failed to insert link to %q: %w", l.TargetPath, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
