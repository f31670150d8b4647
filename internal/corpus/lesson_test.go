package corpus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
)

func TestLessonFallbacks(t *testing.T) {
	lesson, err := corpus.ParseLesson("guides/intro-to-sql.md", []byte("# Getting Started\n"))
	require.NoError(t, err)

	// No frontmatter: slug falls back to the file name, title to the
	// first heading.
	assert.Equal(t, "intro-to-sql", lesson.Slug())
	assert.Equal(t, "Getting Started", lesson.Title())

	bare, err := corpus.ParseLesson("guides/empty.md", []byte("just text\n"))
	require.NoError(t, err)
	assert.Equal(t, "empty", bare.Title())
}

func TestLessonAnchors(t *testing.T) {
	lesson, err := corpus.ParseLesson("a.md", []byte("# Joins\n\n## Anti-Joins\n\n## Anti-Joins\n"))
	require.NoError(t, err)

	anchors := lesson.Anchors()
	assert.Contains(t, anchors, "joins")
	assert.Contains(t, anchors, "anti-joins")
	assert.Contains(t, anchors, "anti-joins-1")
	assert.Len(t, anchors, 3)
}

func TestCorpusLookups(t *testing.T) {
	first, err := corpus.ParseLesson("a.md", lessonSource("First", "shared", 1))
	require.NoError(t, err)
	second, err := corpus.ParseLesson("b.md", lessonSource("Second", "shared", 2))
	require.NoError(t, err)

	c := corpus.NewCorpus([]*corpus.Lesson{first, second})

	byPath, ok := c.ByPath("b.md")
	require.True(t, ok)
	assert.Same(t, second, byPath)

	// On a slug collision the first lesson in corpus order keeps the slug.
	bySlug, ok := c.BySlug("shared")
	require.True(t, ok)
	assert.Same(t, first, bySlug)

	_, ok = c.ByPath("missing.md")
	assert.False(t, ok)
	_, ok = c.BySlug("missing")
	assert.False(t, ok)
}
