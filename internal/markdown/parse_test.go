package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

const fence = "```"

var sample = `# Window Functions

Rank rows with [frames](glossary.md#window-frame) and see
<https://example.com/docs>.

## Running Totals

` + fence + `sql dialect=sqlite norun
SELECT 1;
SELECT 2;
` + fence + `

## Running Totals

![diagram](img/frames.png)
`

func TestParseHeadings(t *testing.T) {
	doc := markdown.Parse([]byte(sample))

	require.Len(t, doc.Headings, 3)
	assert.Equal(t, markdown.Heading{Level: 1, Text: "Window Functions", Anchor: "window-functions", Line: 1}, doc.Headings[0])
	assert.Equal(t, markdown.Heading{Level: 2, Text: "Running Totals", Anchor: "running-totals", Line: 6}, doc.Headings[1])

	// The repeated heading gets a numeric suffix, not a duplicate anchor.
	assert.Equal(t, markdown.Heading{Level: 2, Text: "Running Totals", Anchor: "running-totals-1", Line: 13}, doc.Headings[2])
}

func TestParseHeadingFallbackAnchor(t *testing.T) {
	doc := markdown.Parse([]byte("## ???\n\n## !!!\n"))

	require.Len(t, doc.Headings, 2)
	assert.Equal(t, "section", doc.Headings[0].Anchor)
	assert.Equal(t, "section-1", doc.Headings[1].Anchor)
}

func TestParseCodeBlock(t *testing.T) {
	doc := markdown.Parse([]byte(sample))

	require.Len(t, doc.Blocks, 1)
	block := doc.Blocks[0]

	assert.Equal(t, "sql", block.Lang)
	assert.Equal(t, map[string]string{"dialect": "sqlite", "norun": ""}, block.Attrs)
	assert.Equal(t, "SELECT 1;\nSELECT 2;\n", block.Content)
	assert.Equal(t, 8, block.FenceLine)
	assert.Equal(t, 9, block.StartLine)
	assert.Equal(t, 10, block.EndLine)

	assert.True(t, block.HasAttr("norun"))
	assert.False(t, block.HasAttr("nosuch"))
	assert.Equal(t, "sqlite", block.Dialect())
}

func TestParseCodeBlockNoInfo(t *testing.T) {
	doc := markdown.Parse([]byte(fence + "\nSELECT 1;\n" + fence + "\n"))

	require.Len(t, doc.Blocks, 1)
	block := doc.Blocks[0]

	assert.Equal(t, "", block.Lang)
	assert.Empty(t, block.Attrs)
	assert.Equal(t, "SELECT 1;\n", block.Content)
	assert.Equal(t, 1, block.FenceLine)
	assert.Equal(t, 2, block.StartLine)
}

func TestParseCodeBlockEmpty(t *testing.T) {
	doc := markdown.Parse([]byte("# Lesson\n\n" + fence + "sql\n" + fence + "\n"))

	require.Len(t, doc.Blocks, 1)
	block := doc.Blocks[0]

	assert.Equal(t, "sql", block.Lang)
	assert.Equal(t, "", block.Content)
	assert.Equal(t, 3, block.FenceLine)
}

func TestParseLinks(t *testing.T) {
	doc := markdown.Parse([]byte(sample))

	require.Len(t, doc.Links, 3)
	assert.Equal(t, markdown.Link{
		Kind:        markdown.LinkKindInline,
		Destination: "glossary.md#window-frame",
		Line:        3,
		Col:         24,
		EndCol:      48,
	}, doc.Links[0])
	assert.Equal(t, markdown.Link{
		Kind:        markdown.LinkKindAuto,
		Destination: "https://example.com/docs",
		Line:        4,
		Col:         1,
		EndCol:      25,
	}, doc.Links[1])
	assert.Equal(t, markdown.Link{
		Kind:        markdown.LinkKindImage,
		Destination: "img/frames.png",
		Line:        15,
		Col:         11,
		EndCol:      25,
	}, doc.Links[2])
}

func TestSlug(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Window Functions", "window-functions"},
		{"GROUP BY Extensions", "group-by-extensions"},
		{"What's NULL?", "whats-null"},
		{"C.T.E. (Recursive)", "cte-recursive"},
		{"  padded  ", "padded"},
		{"100% SQL", "100-sql"},
		{"snake_case stays", "snake_case-stays"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, markdown.Slug(tt.text))
		})
	}
}

func TestLinkExternal(t *testing.T) {
	tests := []struct {
		dest string
		want bool
	}{
		{"https://example.com/docs", true},
		{"mailto:team@example.com", true},
		{"//cdn.example.com/style.css", true},
		{"window-functions.md", false},
		{"img/frames.png", false},
		{"#frames", false},
		{":colon-first", false},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			l := markdown.Link{Destination: tt.dest}
			assert.Equal(t, tt.want, l.External())
		})
	}
}

func TestLinkSplitTarget(t *testing.T) {
	path, fragment := markdown.Link{Destination: "window-functions.md#frames"}.SplitTarget()
	assert.Equal(t, "window-functions.md", path)
	assert.Equal(t, "frames", fragment)

	path, fragment = markdown.Link{Destination: "overview.md"}.SplitTarget()
	assert.Equal(t, "overview.md", path)
	assert.Equal(t, "", fragment)

	path, fragment = markdown.Link{Destination: "#frames"}.SplitTarget()
	assert.Equal(t, "", path)
	assert.Equal(t, "frames", fragment)

	assert.True(t, markdown.Link{Destination: "#frames"}.FragmentOnly())
	assert.False(t, markdown.Link{Destination: "overview.md#intro"}.FragmentOnly())
}
