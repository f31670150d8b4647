// Package corpus loads a directory of markdown lessons into the document
// model the linter, index and servers operate on. The corpus root is the
// root of the fs.FS handed to the loader; lesson paths are slash-separated
// and relative to it.
package corpus

import (
	"crypto/md5"
	"path"
	"strings"
	"time"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// FrontMatter is the YAML header of a lesson.
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Slug    string   `yaml:"slug"`
	Topic   string   `yaml:"topic"`
	Order   int      `yaml:"order"`
	Dialect string   `yaml:"dialect"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
	Draft   bool     `yaml:"draft"`
}

// Lesson is one markdown file of the curriculum.
type Lesson struct {
	Path        string // corpus-relative, slash-separated
	FrontMatter FrontMatter
	Body        []byte // source with frontmatter stripped
	BodyLine    int    // 0-based line the body starts on in the file
	Checksum    []byte // md5 of the full file
	ModTime     time.Time
	Doc         *markdown.Doc
}

// Slug returns the frontmatter slug, falling back to the file name.
func (l *Lesson) Slug() string {
	if l.FrontMatter.Slug != "" {
		return l.FrontMatter.Slug
	}
	return strings.TrimSuffix(path.Base(l.Path), path.Ext(l.Path))
}

// Title returns the frontmatter title, falling back to the first heading.
func (l *Lesson) Title() string {
	if l.FrontMatter.Title != "" {
		return l.FrontMatter.Title
	}
	if l.Doc != nil && len(l.Doc.Headings) > 0 {
		return l.Doc.Headings[0].Text
	}
	return l.Slug()
}

// Anchors returns the set of heading anchors defined by the lesson.
func (l *Lesson) Anchors() map[string]struct{} {
	anchors := make(map[string]struct{}, len(l.Doc.Headings))
	for _, h := range l.Doc.Headings {
		anchors[h.Anchor] = struct{}{}
	}
	return anchors
}

// FileLine converts a 1-based body line into a 1-based file line by adding
// the frontmatter offset.
func (l *Lesson) FileLine(bodyLine int) int {
	return bodyLine + l.BodyLine
}

// ComputeChecksum returns the md5 fingerprint used for change detection.
func ComputeChecksum(content []byte) []byte {
	sum := md5.Sum(content)
	return sum[:]
}

// Corpus is a loaded set of lessons with lookup tables.
type Corpus struct {
	Lessons []*Lesson

	byPath map[string]*Lesson
	bySlug map[string]*Lesson
}

// NewCorpus builds lookup tables over the given lessons. When two lessons
// share a slug, the first one by corpus order wins the slug lookup; the
// linter reports the duplication separately.
func NewCorpus(lessons []*Lesson) *Corpus {
	c := &Corpus{
		Lessons: lessons,
		byPath:  make(map[string]*Lesson, len(lessons)),
		bySlug:  make(map[string]*Lesson, len(lessons)),
	}
	for _, lesson := range lessons {
		c.byPath[lesson.Path] = lesson
		if _, taken := c.bySlug[lesson.Slug()]; !taken {
			c.bySlug[lesson.Slug()] = lesson
		}
	}
	return c
}

func (c *Corpus) ByPath(p string) (*Lesson, bool) {
	lesson, ok := c.byPath[p]
	return lesson, ok
}

func (c *Corpus) BySlug(slug string) (*Lesson, bool) {
	lesson, ok := c.bySlug[slug]
	return lesson, ok
}
