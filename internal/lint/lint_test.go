package lint_test

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/lint"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/lessons"
)

const fence = "```"

func mustLesson(t *testing.T, path, source string) *corpus.Lesson {
	t.Helper()
	lesson, err := corpus.ParseLesson(path, []byte(source))
	require.NoError(t, err)
	return lesson
}

func newRunner(t *testing.T, cfg corpus.Config, fsys fs.FS, g *glossary.Glossary, lessonList ...*corpus.Lesson) *lint.Runner {
	t.Helper()
	if g == nil {
		var err error
		g, err = glossary.New(nil)
		require.NoError(t, err)
	}
	r, err := lint.NewRunner(cfg, fsys, corpus.NewCorpus(lessonList), g)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

const cleanLesson = `---
title: Anti Joins
slug: anti-joins
topic: joins
---

# Anti Joins

Keep rows without a match.

## Example

` + fence + `sql
SELECT 1;
` + fence + `
`

func TestLintCleanLesson(t *testing.T) {
	lesson := mustLesson(t, "anti-joins.md", cleanLesson)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	assert.Empty(t, diags)
}

func TestSQLSyntaxRule(t *testing.T) {
	lesson := mustLesson(t, "broken.md", `---
title: Broken
slug: broken
topic: joins
---

# Broken

`+fence+`sql
SELEC 1;
`+fence+`
`)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	require.NotEmpty(t, diags)
	assert.Equal(t, "sql-syntax", diags[0].Rule)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, 10, diags[0].Line)
}

func TestSQLSyntaxNoparseExempt(t *testing.T) {
	lesson := mustLesson(t, "procs.md", `---
title: Procedures
slug: procs
topic: procs
---

# Procedures

`+fence+`sql noparse
DELIMITER //
CREATE PROCEDURE totals() BEGIN SELECT 1; END //
`+fence+`
`)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	assert.Empty(t, diags)
}

func TestLinkResolutionRule(t *testing.T) {
	target := mustLesson(t, "window-functions.md", `---
title: Window Functions
slug: window-functions
topic: windows
---

# Window Functions

## Frames
`)

	source := mustLesson(t, "joins.md", `---
title: Joins
slug: joins
topic: joins
---

# Joins

See [frames](window-functions.md#frames) and [own](#joins).
See [missing](no-such.md) and [bad anchor](window-functions.md#nope).
See [bad own](#zzz) and [outside](https://example.com/) too.
`)

	r := newRunner(t, corpus.DefaultConfig(), nil, nil, target, source)
	diags := r.Lint(context.Background(), source)

	require.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, "link-resolution", d.Rule)
		assert.Equal(t, lint.SeverityError, d.Severity)
	}
	assert.Contains(t, diags[0].Message, `lesson "no-such.md" not found`)
	assert.Contains(t, diags[1].Message, `anchor "nope" not found in window-functions.md`)
	assert.Contains(t, diags[2].Message, `anchor "zzz" not found in this lesson`)
}

func TestLinkResolutionPositions(t *testing.T) {
	lesson := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

See [x](missing.md).
`)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	require.Len(t, diags, 1)

	// The frontmatter block is five lines, the link sits on body line 4.
	assert.Equal(t, 9, diags[0].Line)
	assert.Equal(t, 8, diags[0].Col)
}

func TestGlossaryLinks(t *testing.T) {
	source := `---
title: A
slug: a
topic: t
---

# A

A [term](glossary.md#window-function) link.
`
	lesson := mustLesson(t, "a.md", source)

	g, err := glossary.New([]glossary.Entry{
		{Term: "Window function", Definition: "Computes over a partition."},
	})
	require.NoError(t, err)

	r := newRunner(t, corpus.DefaultConfig(), nil, g, lesson)
	assert.Empty(t, r.Lint(context.Background(), lesson))

	// Without a glossary the same link is dangling.
	bare := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)
	diags := bare.Lint(context.Background(), lesson)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "no glossary")

	// A known glossary but an unknown term anchor.
	wrong := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

A [term](glossary.md#sharding) link.
`)
	r2 := newRunner(t, corpus.DefaultConfig(), nil, g, wrong)
	diags = r2.Lint(context.Background(), wrong)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `term anchor "sharding" not found`)
}

func TestImageAssets(t *testing.T) {
	lesson := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

![frame diagram](img/frames.png)
![missing](img/nope.png)
`)

	fsys := fstest.MapFS{
		"img/frames.png": &fstest.MapFile{Data: []byte("png")},
	}
	r := newRunner(t, corpus.DefaultConfig(), fsys, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `file "img/nope.png" not found`)

	// Without a filesystem, asset existence is not checked.
	detached := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)
	assert.Empty(t, detached.Lint(context.Background(), lesson))
}

func TestHeadingHierarchyRule(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"no headings", "just prose\n", "lesson has no headings"},
		{"starts below h1", "## Section\n", "first heading must be the H1 title, got H2"},
		{"second h1", "# One\n\n# Two\n", "multiple top-level headings"},
		{"level jump", "# One\n\n### Deep\n", "heading level jumps from H1 to H3"},
		{"empty heading", "# One\n\n##\n", "empty heading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson := mustLesson(t, "a.md", "---\ntitle: A\nslug: a\ntopic: t\n---\n\n"+tt.body)
			r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

			diags := r.Lint(context.Background(), lesson)
			require.NotEmpty(t, diags)
			assert.Equal(t, "heading-hierarchy", diags[0].Rule)
			assert.Contains(t, diags[0].Message, tt.msg)
		})
	}
}

func TestHeadingDuplicateRule(t *testing.T) {
	lesson := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

## Setup

## Setup
`)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	require.Len(t, diags, 1)
	assert.Equal(t, "heading-duplicate", diags[0].Rule)
	assert.Equal(t, lint.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, `duplicate heading "Setup"; its anchor falls back to "setup-1"`)
}

func TestFrontmatterRule(t *testing.T) {
	cfg := corpus.DefaultConfig()
	cfg.RequiredFrontmatter = []string{"title", "slug", "topic", "order", "summary"}

	lesson := mustLesson(t, "a.md", `---
title: A
slug: Not A Slug
topic: t
dialect: oracle
---

# A
`)
	r := newRunner(t, cfg, nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)

	var messages []string
	for _, d := range diags {
		assert.Equal(t, "frontmatter", d.Rule)
		assert.Equal(t, 1, d.Line)
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, `missing required frontmatter field "order"`)
	assert.Contains(t, messages, `missing required frontmatter field "summary"`)
	assert.Contains(t, messages, `slug "Not A Slug" is not a clean anchor; use "not-a-slug"`)
	assert.Contains(t, messages, `unknown dialect "oracle"`)
}

func TestCodeFenceRule(t *testing.T) {
	lesson := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

`+fence+`
SELECT 1;
`+fence+`

`+fence+`sql
`+fence+`

`+fence+`sql foo=1
SELECT 1;
`+fence+`

`+fence+`sql dialect=oracle
SELECT 1;
`+fence+`

`+fence+`bash
echo ok
`+fence+`
`)
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, lesson)

	diags := r.Lint(context.Background(), lesson)
	require.Len(t, diags, 4)

	var messages []string
	for _, d := range diags {
		assert.Equal(t, "code-fence", d.Rule)
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "code fence without a language tag")
	assert.Contains(t, messages, "empty sql block")
	assert.Contains(t, messages, `unknown fence attribute "foo"`)
	assert.Contains(t, messages, `unknown dialect "oracle"`)
}

func TestSlugUniqueRule(t *testing.T) {
	a := mustLesson(t, "a.md", "---\ntitle: A\nslug: shared\ntopic: t\n---\n\n# A\n")
	b := mustLesson(t, "b.md", "---\ntitle: B\nslug: shared\ntopic: t\n---\n\n# B\n")
	r := newRunner(t, corpus.DefaultConfig(), nil, nil, a, b)

	report := r.LintCorpus(context.Background())
	require.Len(t, report.Diagnostics, 1)

	d := report.Diagnostics[0]
	assert.Equal(t, "slug-unique", d.Rule)
	assert.Equal(t, "b.md", d.Path)
	assert.Equal(t, `duplicate slug "shared", already used by a.md`, d.Message)
	assert.Equal(t, 2, report.Lessons)
	assert.True(t, report.HasErrors())
}

func TestRuleOverrides(t *testing.T) {
	lesson := mustLesson(t, "a.md", `---
title: A
slug: a
topic: t
---

# A

`+fence+`
untagged
`+fence+`
`)

	off := corpus.DefaultConfig()
	off.Rules = map[string]string{"code-fence": "off"}
	r := newRunner(t, off, nil, nil, lesson)
	assert.Empty(t, r.Lint(context.Background(), lesson))

	raised := corpus.DefaultConfig()
	raised.Rules = map[string]string{"code-fence": "error"}
	r2 := newRunner(t, raised, nil, nil, lesson)
	diags := r2.Lint(context.Background(), lesson)
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
}

func TestNewRunnerRejectsBadConfig(t *testing.T) {
	g, err := glossary.New(nil)
	require.NoError(t, err)
	c := corpus.NewCorpus(nil)

	unknown := corpus.DefaultConfig()
	unknown.Rules = map[string]string{"not-a-rule": "warning"}
	_, err = lint.NewRunner(unknown, nil, c, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown lint rule "not-a-rule"`)

	badSeverity := corpus.DefaultConfig()
	badSeverity.Rules = map[string]string{"code-fence": "fatal"}
	_, err = lint.NewRunner(badSeverity, nil, c, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown severity "fatal"`)
}

func TestRuleNames(t *testing.T) {
	r := newRunner(t, corpus.DefaultConfig(), nil, nil)
	assert.Equal(t, []string{
		"code-fence",
		"frontmatter",
		"heading-duplicate",
		"heading-hierarchy",
		"link-resolution",
		"slug-unique",
		"sql-syntax",
	}, r.RuleNames())
}

func TestDiagnosticString(t *testing.T) {
	d := lint.Diagnostic{
		Path:     "a.md",
		Line:     12,
		Col:      4,
		Severity: lint.SeverityWarning,
		Rule:     "code-fence",
		Message:  "empty sql block",
	}
	assert.Equal(t, "a.md:12:4: warning: empty sql block [code-fence]", d.String())
}

func TestReportCounts(t *testing.T) {
	report := lint.Report{Diagnostics: []lint.Diagnostic{
		{Severity: lint.SeverityError},
		{Severity: lint.SeverityWarning},
		{Severity: lint.SeverityWarning},
	}}
	assert.Equal(t, 1, report.Count(lint.SeverityError))
	assert.Equal(t, 2, report.Count(lint.SeverityWarning))
	assert.True(t, report.HasErrors())

	assert.False(t, lint.Report{}.HasErrors())
}

// The curriculum shipped in the binary must stay clean under its own
// configuration; a regression here breaks `luxsql lint` out of the box.
func TestShippedCurriculumLintsClean(t *testing.T) {
	cfg, err := corpus.LoadConfig(lessons.FS)
	require.NoError(t, err)
	lessonFiles, err := corpus.Load(lessons.FS, cfg.Ignore)
	require.NoError(t, err)
	g, err := glossary.Load(lessons.FS)
	require.NoError(t, err)

	r, err := lint.NewRunner(cfg, lessons.FS, corpus.NewCorpus(lessonFiles), g)
	require.NoError(t, err)
	defer r.Close()

	report := r.LintCorpus(context.Background())
	for _, d := range report.Diagnostics {
		t.Errorf("unexpected diagnostic: %s", d)
	}
	assert.Equal(t, 10, report.Lessons)
}
