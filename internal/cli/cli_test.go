package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fence = "```"

// Two linked lessons whose examples run green against an empty SQLite
// session; the corpus also carries a small glossary.
var windowLesson = `---
title: Window Functions
slug: window-functions
topic: analytics
order: 1
---

# Window Functions

Rank rows without collapsing groups.
See [anti-joins](join-patterns.md#anti-joins).

## Running Totals

` + fence + `sql
CREATE TABLE payments (id INTEGER PRIMARY KEY, amount INTEGER);
INSERT INTO payments (amount) VALUES (10);
INSERT INTO payments (amount) VALUES (20);
SELECT id, amount FROM payments ORDER BY id;
` + fence + `
`

var joinLesson = `---
title: Join Patterns
slug: join-patterns
topic: joins
order: 2
---

# Join Patterns

Find rows in one table with no match in another.

## Anti-Joins

` + fence + `sql
CREATE TABLE users (id INTEGER PRIMARY KEY);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER);
INSERT INTO users (id) VALUES (1);
INSERT INTO users (id) VALUES (2);
INSERT INTO orders (user_id) VALUES (1);
SELECT users.id FROM users LEFT JOIN orders ON orders.user_id = users.id WHERE orders.id IS NULL;
` + fence + `
`

const glossaryYAML = `terms:
  - term: Window function
    definition: A function computed over rows related to the current row.
    aliases:
      - analytic function
  - term: Anti-join
    definition: A join shape keeping only rows with no match on the other side.
`

func writeTestCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCorpusFile(t, dir, "window-functions.md", windowLesson)
	writeCorpusFile(t, dir, "join-patterns.md", joinLesson)
	writeCorpusFile(t, dir, "glossary.yaml", glossaryYAML)
	return dir
}

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func removeCorpusFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(dir, name)))
}
