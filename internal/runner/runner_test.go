package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/runner"
)

const fence = "```"

const sessionSource = `---
title: Sessions
slug: sessions
topic: runner
order: 1
---

# Sessions

` + fence + `sql
CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT);
INSERT INTO t (id, name) VALUES (1, 'ada');
INSERT INTO t (id, name) VALUES (2, NULL);
SELECT id, name FROM t ORDER BY id;
` + fence + `

` + fence + `sql dialect=postgres
SELECT 1;
` + fence + `

` + fence + `sql norun
DROP TABLE t;
` + fence + `

` + fence + `text
not sql
` + fence + `
`

func runLesson(t *testing.T, rowLimit int, path, source string) *runner.Report {
	t.Helper()
	lesson, err := corpus.ParseLesson(path, []byte(source))
	require.NoError(t, err)

	r := runner.New(rowLimit)
	t.Cleanup(r.Close)

	report, err := r.RunLesson(context.Background(), lesson)
	require.NoError(t, err)
	return report
}

func TestRunnable(t *testing.T) {
	tests := []struct {
		name   string
		block  markdown.CodeBlock
		ok     bool
		reason string
	}{
		{"plain sql", markdown.CodeBlock{Lang: "sql", Content: "SELECT 1;"}, true, ""},
		{"sqlite dialect", markdown.CodeBlock{Lang: "sql", Attrs: map[string]string{"dialect": "sqlite"}, Content: "SELECT 1;"}, true, ""},
		{"ansi dialect", markdown.CodeBlock{Lang: "sql", Attrs: map[string]string{"dialect": "ansi"}, Content: "SELECT 1;"}, true, ""},
		{"not sql", markdown.CodeBlock{Lang: "text", Content: "hello"}, false, "not sql"},
		{"norun", markdown.CodeBlock{Lang: "sql", Attrs: map[string]string{"norun": ""}, Content: "SELECT 1;"}, false, "marked norun"},
		{"vendor dialect", markdown.CodeBlock{Lang: "sql", Attrs: map[string]string{"dialect": "postgres"}, Content: "SELECT 1;"}, false, "dialect postgres"},
		{"empty", markdown.CodeBlock{Lang: "sql", Content: "  \n"}, false, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := runner.Runnable(tt.block)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestRunLesson(t *testing.T) {
	report := runLesson(t, 0, "sessions.md", sessionSource)

	assert.Equal(t, "sessions.md", report.Lesson)
	assert.Equal(t, 1, report.Ran)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Blocks, 4)

	ran := report.Blocks[0]
	assert.Equal(t, 0, ran.Ord)
	assert.Equal(t, 10, ran.Line)
	assert.False(t, ran.Skipped)
	require.Len(t, ran.Statements, 4)

	create := ran.Statements[0]
	assert.Equal(t, "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)", create.Text)
	assert.Equal(t, 11, create.Line)
	assert.Empty(t, create.Err)
	assert.Nil(t, create.Result)
	assert.Equal(t, int64(0), create.RowsAffected)

	assert.Equal(t, int64(1), ran.Statements[1].RowsAffected)
	assert.Equal(t, 12, ran.Statements[1].Line)
	assert.Equal(t, int64(1), ran.Statements[2].RowsAffected)

	query := ran.Statements[3]
	assert.Equal(t, 14, query.Line)
	require.NotNil(t, query.Result)
	assert.Equal(t, []string{"id", "name"}, query.Result.Columns)
	assert.Equal(t, [][]string{{"1", "ada"}, {"2", "NULL"}}, query.Result.Rows)
	assert.False(t, query.Result.Truncated)

	skips := []struct {
		ord    int
		line   int
		reason string
	}{
		{1, 17, "dialect postgres"},
		{2, 21, "marked norun"},
		{3, 25, "not sql"},
	}
	for _, want := range skips {
		block := report.Blocks[want.ord]
		assert.True(t, block.Skipped)
		assert.Equal(t, want.line, block.Line)
		assert.Equal(t, want.reason, block.SkipReason)
		assert.Empty(t, block.Statements)
	}
}

func TestRunLessonRecordsFailure(t *testing.T) {
	source := "# T\n\n" +
		fence + "sql\n" +
		"CREATE TABLE t (id INTEGER);\n" +
		"INSERT INTO missing VALUES (1);\n" +
		"SELECT * FROM t;\n" +
		fence + "\n\n" +
		fence + "sql\n" +
		"SELECT count(*) AS n FROM t;\n" +
		fence + "\n"

	report := runLesson(t, 0, "broken.md", source)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Ran)
	require.Len(t, report.Blocks, 2)

	failed := report.Blocks[0]
	assert.True(t, failed.Failed)
	// The block stops at the bad statement; the trailing SELECT never runs.
	require.Len(t, failed.Statements, 2)
	assert.Empty(t, failed.Statements[0].Err)
	assert.Contains(t, failed.Statements[1].Err, "no such table")

	// The session survives a failed block, so the next block still sees
	// the table created before the failure.
	next := report.Blocks[1]
	assert.False(t, next.Failed)
	require.Len(t, next.Statements, 1)
	require.NotNil(t, next.Statements[0].Result)
	assert.Equal(t, [][]string{{"0"}}, next.Statements[0].Result.Rows)
}

func TestRunLessonFreshSessionPerLesson(t *testing.T) {
	r := runner.New(0)
	t.Cleanup(r.Close)

	first, err := corpus.ParseLesson("first.md", []byte("# A\n\n"+fence+"sql\nCREATE TABLE t (id INTEGER);\n"+fence+"\n"))
	require.NoError(t, err)
	second, err := corpus.ParseLesson("second.md", []byte("# B\n\n"+fence+"sql\nSELECT count(*) FROM t;\n"+fence+"\n"))
	require.NoError(t, err)

	report, err := r.RunLesson(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ran)

	report, err = r.RunLesson(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Blocks, 1)
	require.Len(t, report.Blocks[0].Statements, 1)
	assert.Contains(t, report.Blocks[0].Statements[0].Err, "no such table")
}

func TestRunLessonClassifiesStatements(t *testing.T) {
	source := "# T\n\n" +
		fence + "sql\n" +
		"CREATE TABLE t (id INTEGER, name TEXT);\n" +
		"INSERT INTO t VALUES (1, 'a');\n" +
		"UPDATE t SET name = 'b' WHERE id = 1;\n" +
		"WITH names AS (SELECT name AS n FROM t) SELECT n FROM names;\n" +
		fence + "\n"

	report := runLesson(t, 0, "kinds.md", source)

	require.Len(t, report.Blocks, 1)
	require.Len(t, report.Blocks[0].Statements, 4)
	outcomes := report.Blocks[0].Statements

	assert.Nil(t, outcomes[1].Result)
	assert.Equal(t, int64(1), outcomes[1].RowsAffected)
	assert.Equal(t, int64(1), outcomes[2].RowsAffected)

	// WITH opens a query, not a mutation.
	require.NotNil(t, outcomes[3].Result)
	assert.Equal(t, [][]string{{"b"}}, outcomes[3].Result.Rows)
}

func TestRunLessonRowLimit(t *testing.T) {
	source := "# T\n\n" +
		fence + "sql\n" +
		"CREATE TABLE nums (n INTEGER);\n" +
		"INSERT INTO nums VALUES (1);\n" +
		"INSERT INTO nums VALUES (2);\n" +
		"INSERT INTO nums VALUES (3);\n" +
		"SELECT n FROM nums ORDER BY n;\n" +
		fence + "\n"

	report := runLesson(t, 2, "limits.md", source)
	require.Len(t, report.Blocks, 1)
	capped := report.Blocks[0].Statements[4].Result
	require.NotNil(t, capped)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, capped.Rows)
	assert.True(t, capped.Truncated)

	report = runLesson(t, 0, "limits.md", source)
	full := report.Blocks[0].Statements[4].Result
	require.NotNil(t, full)
	assert.Len(t, full.Rows, 3)
	assert.False(t, full.Truncated)
}

func TestRunLessonSplitFallback(t *testing.T) {
	source := "# T\n\n" + fence + "sql\nNOT REALLY SQL;\n" + fence + "\n"

	report := runLesson(t, 0, "garbage.md", source)

	require.Len(t, report.Blocks, 1)
	block := report.Blocks[0]
	assert.True(t, block.Failed)
	// The grammar finds no statements, so the whole block runs as one.
	require.Len(t, block.Statements, 1)
	assert.Equal(t, "NOT REALLY SQL", block.Statements[0].Text)
	assert.Equal(t, 4, block.Statements[0].Line)
	assert.NotEmpty(t, block.Statements[0].Err)
}

func TestRunLessonSessionError(t *testing.T) {
	r := runner.NewWithSession(func() (runner.Session, error) {
		return nil, errors.New("no session for you")
	}, 0)
	t.Cleanup(r.Close)

	lesson, err := corpus.ParseLesson("a.md", []byte("# A\n"))
	require.NoError(t, err)

	_, err = r.RunLesson(context.Background(), lesson)
	assert.EqualError(t, err, "no session for you")
}
