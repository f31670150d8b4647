package index

import "errors"

var (
	ErrNotFound           = errors.New("index: not found")
	ErrInvalidTransaction = errors.New("index: invalid transaction")
)

// LessonRecord is the indexed metadata of one lesson file.
type LessonRecord struct {
	Path         string
	Slug         string
	Title        string
	Topic        string
	Dialect      string
	Summary      string
	Order        int
	Draft        bool
	Checksum     []byte
	LastModified int64
}

// SectionRecord is one heading of a lesson.
type SectionRecord struct {
	LessonPath string
	Anchor     string
	Title      string
	Level      int
	Line       int
}

// SnippetRecord is one fenced code block of a lesson. StartLine is the
// 1-based file line of the first content line.
type SnippetRecord struct {
	LessonPath string
	Ord        int
	Lang       string
	Dialect    string
	NoRun      bool
	Content    string
	StartLine  int
}

// LinkRecord is one internal link edge, already resolved to a corpus
// path. Occurrences of the same edge collapse to the first one.
type LinkRecord struct {
	SourcePath string
	TargetPath string
	Fragment   string
	Line       int
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Stats summarizes index contents.
type Stats struct {
	Lessons  int `json:"lessons"`
	Sections int `json:"sections"`
	Snippets int `json:"snippets"`
	Links    int `json:"links"`
}
