package corpus

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// Load walks the filesystem and parses every markdown lesson. Paths
// matching an ignore glob (matched against the corpus-relative path) are
// skipped, as are dotfiles and non-markdown files. Lessons come back sorted
// by frontmatter order, then path.
func Load(fsys fs.FS, ignore []string) ([]*Lesson, error) {
	var lessons []*Lesson

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsLessonPath(p) || Ignored(p, ignore) {
			return nil
		}

		lesson, err := LoadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		lessons = append(lessons, lesson)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}

	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].FrontMatter.Order != lessons[j].FrontMatter.Order {
			return lessons[i].FrontMatter.Order < lessons[j].FrontMatter.Order
		}
		return lessons[i].Path < lessons[j].Path
	})
	return lessons, nil
}

// LoadFile reads and parses a single lesson.
func LoadFile(fsys fs.FS, p string) (*Lesson, error) {
	source, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read lesson: %w", err)
	}

	lesson, err := ParseLesson(p, source)
	if err != nil {
		return nil, err
	}

	if info, err := fs.Stat(fsys, p); err == nil {
		lesson.ModTime = info.ModTime()
	}
	return lesson, nil
}

// ParseLesson builds a Lesson from raw file content. Files without a
// frontmatter block are accepted; the frontmatter lint rule reports what is
// missing.
func ParseLesson(p string, source []byte) (*Lesson, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	// The loader needs file positions, but the markdown parser only sees
	// the body. Count the lines the frontmatter block consumed.
	consumed := source[:len(source)-len(body)]
	bodyLine := bytes.Count(consumed, []byte("\n"))

	return &Lesson{
		Path:        path.Clean(p),
		FrontMatter: meta,
		Body:        body,
		BodyLine:    bodyLine,
		Checksum:    ComputeChecksum(source),
		Doc:         markdown.Parse(body),
	}, nil
}

// IsLessonPath reports whether the path names a markdown lesson.
func IsLessonPath(p string) bool {
	return strings.HasSuffix(p, ".md") && !strings.HasPrefix(path.Base(p), ".")
}

// Ignored reports whether a corpus-relative path matches any of the
// configured ignore patterns.
func Ignored(p string, ignore []string) bool {
	for _, pattern := range ignore {
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
