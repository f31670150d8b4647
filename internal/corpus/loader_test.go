package corpus_test

import (
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
)

func lessonSource(title, slug string, order int) []byte {
	return []byte(fmt.Sprintf(`---
title: %s
slug: %s
topic: basics
order: %d
---

# %s
`, title, slug, order, title))
}

func TestLoadSortsByOrderThenPath(t *testing.T) {
	fsys := fstest.MapFS{
		"zz-basics.md":    &fstest.MapFile{Data: lessonSource("Basics", "basics", 1)},
		"overview.md":     &fstest.MapFile{Data: lessonSource("Overview", "overview", 1)},
		"advanced/cte.md": &fstest.MapFile{Data: lessonSource("CTEs", "ctes", 2)},
	}

	lessons, err := corpus.Load(fsys, nil)
	require.NoError(t, err)

	var paths []string
	for _, l := range lessons {
		paths = append(paths, l.Path)
	}
	assert.Equal(t, []string{"overview.md", "zz-basics.md", "advanced/cte.md"}, paths)
}

func TestLoadSkipsNonLessons(t *testing.T) {
	fsys := fstest.MapFS{
		"overview.md":    &fstest.MapFile{Data: lessonSource("Overview", "overview", 1)},
		".hidden.md":     &fstest.MapFile{Data: []byte("# Hidden\n")},
		".git/notes.md":  &fstest.MapFile{Data: []byte("# Git\n")},
		"README.txt":     &fstest.MapFile{Data: []byte("readme\n")},
		"drafts/wip.md":  &fstest.MapFile{Data: lessonSource("WIP", "wip", 9)},
		"drafts/also.md": &fstest.MapFile{Data: lessonSource("Also", "also", 9)},
	}

	lessons, err := corpus.Load(fsys, []string{"drafts/*"})
	require.NoError(t, err)

	require.Len(t, lessons, 1)
	assert.Equal(t, "overview.md", lessons[0].Path)
}

func TestLoadFileModTime(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	fsys := fstest.MapFS{
		"overview.md": &fstest.MapFile{Data: lessonSource("Overview", "overview", 1), ModTime: stamp},
	}

	lesson, err := corpus.LoadFile(fsys, "overview.md")
	require.NoError(t, err)
	assert.Equal(t, stamp, lesson.ModTime)
}

func TestParseLesson(t *testing.T) {
	source := []byte(`---
title: Window functions
slug: window-functions
topic: windows
order: 5
---

# Window functions
`)
	lesson, err := corpus.ParseLesson("window-functions.md", source)
	require.NoError(t, err)

	assert.Equal(t, "window-functions.md", lesson.Path)
	assert.Equal(t, "Window functions", lesson.FrontMatter.Title)
	assert.Equal(t, "window-functions", lesson.FrontMatter.Slug)
	assert.Equal(t, "windows", lesson.FrontMatter.Topic)
	assert.Equal(t, 5, lesson.FrontMatter.Order)

	// The frontmatter block spans six lines, so body line 2 (the heading)
	// sits on file line 8.
	assert.Equal(t, 6, lesson.BodyLine)
	require.Len(t, lesson.Doc.Headings, 1)
	assert.Equal(t, 2, lesson.Doc.Headings[0].Line)
	assert.Equal(t, 8, lesson.FileLine(lesson.Doc.Headings[0].Line))

	assert.Equal(t, corpus.ComputeChecksum(source), lesson.Checksum)
}

func TestParseLessonNoFrontmatter(t *testing.T) {
	lesson, err := corpus.ParseLesson("plain.md", []byte("# Plain\n\nbody\n"))
	require.NoError(t, err)

	assert.Equal(t, corpus.FrontMatter{}, lesson.FrontMatter)
	assert.Equal(t, 0, lesson.BodyLine)
	assert.Equal(t, "# Plain\n\nbody\n", string(lesson.Body))
}

func TestParseLessonBadFrontmatter(t *testing.T) {
	_, err := corpus.ParseLesson("broken.md", []byte("---\ntitle: [unclosed\n---\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse frontmatter")
}

func TestIsLessonPath(t *testing.T) {
	assert.True(t, corpus.IsLessonPath("overview.md"))
	assert.True(t, corpus.IsLessonPath("advanced/cte.md"))

	assert.False(t, corpus.IsLessonPath(".hidden.md"))
	assert.False(t, corpus.IsLessonPath("advanced/.draft.md"))
	assert.False(t, corpus.IsLessonPath("notes.txt"))
}

func TestIgnored(t *testing.T) {
	assert.True(t, corpus.Ignored("drafts/wip.md", []string{"drafts/*"}))
	assert.False(t, corpus.Ignored("overview.md", []string{"drafts/*"}))
	assert.False(t, corpus.Ignored("overview.md", nil))

	// Malformed patterns never match.
	assert.False(t, corpus.Ignored("overview.md", []string{"["}))
}
