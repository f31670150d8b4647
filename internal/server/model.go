package server

import "github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"

// LessonSummary is one row of the lesson listing.
type LessonSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Topic string `json:"topic"`
	Order int    `json:"order"`
	Draft bool   `json:"draft,omitempty"`
}

// LessonDetail is the full API view of one lesson.
type LessonDetail struct {
	LessonSummary
	Path     string    `json:"path"`
	Dialect  string    `json:"dialect,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Sections []Section `json:"sections"`
	Snippets []Snippet `json:"snippets"`
}

// Section is one heading of a lesson.
type Section struct {
	Anchor string `json:"anchor"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Line   int    `json:"line"`
}

// Snippet is the metadata of one code block; content stays in the file.
type Snippet struct {
	Ord       int    `json:"ord"`
	Lang      string `json:"lang"`
	Dialect   string `json:"dialect,omitempty"`
	NoRun     bool   `json:"norun,omitempty"`
	StartLine int    `json:"start_line"`
}

// Backlink is one inbound link edge.
type Backlink struct {
	SourcePath  string `json:"source_path"`
	SourceSlug  string `json:"source_slug,omitempty"`
	SourceTitle string `json:"source_title,omitempty"`
	Fragment    string `json:"fragment,omitempty"`
	Line        int    `json:"line"`
}

// Health is the /healthz body.
type Health struct {
	Status  string `json:"status"`
	Lessons int    `json:"lessons"`
}

func summarize(record index.LessonRecord) LessonSummary {
	return LessonSummary{
		Slug:  record.Slug,
		Title: record.Title,
		Topic: record.Topic,
		Order: record.Order,
		Draft: record.Draft,
	}
}
