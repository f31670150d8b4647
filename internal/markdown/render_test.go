package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

func TestRenderHeadingIDs(t *testing.T) {
	out, err := markdown.Render([]byte("# Window Functions\n\n## Frames\n\n## Frames\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="window-functions">Window Functions</h1>`)
	assert.Contains(t, html, `<h2 id="frames">Frames</h2>`)
	assert.Contains(t, html, `<h2 id="frames-1">Frames</h2>`)
}

func TestRenderCodeBlock(t *testing.T) {
	out, err := markdown.Render([]byte(fence + "sql\nSELECT 1;\n" + fence + "\n"))
	require.NoError(t, err)

	assert.Contains(t, string(out), `<pre><code class="language-sql">SELECT 1;`)
}

func TestRenderGFMTable(t *testing.T) {
	src := strings.Join([]string{
		"| id | amount |",
		"|----|--------|",
		"| 1  | 120    |",
	}, "\n")

	out, err := markdown.Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>120</td>")
}

func TestRenderRawHTML(t *testing.T) {
	out, err := markdown.Render([]byte(`<div class="note">watch the frame clause</div>` + "\n"))
	require.NoError(t, err)

	assert.Contains(t, string(out), `<div class="note">watch the frame clause</div>`)
}

func TestRenderWithRewrite(t *testing.T) {
	src := "[joins](advanced-joins.md#anti-joins) and ![d](img/frames.png)\n"

	out, err := markdown.RenderWith([]byte(src), func(dest string) string {
		return strings.Replace(dest, ".md", ".html", 1)
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `href="advanced-joins.html#anti-joins"`)
	assert.Contains(t, html, `src="img/frames.png"`)
}
