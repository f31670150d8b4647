package index_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
)

const fence = "```"

const windowSource = `---
title: Window Functions
slug: window-functions
topic: windows
order: 1
---

# Window Functions

Rank rows without collapsing groups.
See [anti-joins](join-patterns.md#anti-joins).

## Running Totals

` + fence + `sql dialect=sqlite
SELECT id, SUM(amount) OVER (ORDER BY id) FROM payments;
` + fence + `
`

const joinSource = `---
title: Join Patterns
slug: join-patterns
topic: joins
order: 2
---

# Join Patterns

## Anti-Joins
`

func openTestStore(t *testing.T) *index.Store {
	t.Helper()
	store, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustLesson(t *testing.T, path, source string, modTime time.Time) *corpus.Lesson {
	t.Helper()
	lesson, err := corpus.ParseLesson(path, []byte(source))
	require.NoError(t, err)
	lesson.ModTime = modTime
	return lesson
}
