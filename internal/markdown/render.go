package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Render converts markdown body into an HTML fragment. Headings get id
// attributes from the same anchor generator Parse uses, so every anchor the
// linter accepted is present in the rendered output.
func Render(source []byte) ([]byte, error) {
	return RenderWith(source, nil)
}

// RenderWith renders like Render and additionally maps every link and
// image destination through rewrite. The static exporter uses this to
// turn corpus-relative .md destinations into page URLs; nil leaves
// destinations alone.
func RenderWith(source []byte, rewrite func(string) string) ([]byte, error) {
	root := engine.Parser().Parse(text.NewReader(source))
	anchors := newAnchorSet()

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			anchor := anchors.generate(string(node.Text(source)))
			node.SetAttributeString("id", []byte(anchor))
		case *ast.Link:
			if rewrite != nil {
				node.Destination = []byte(rewrite(string(node.Destination)))
			}
		case *ast.Image:
			if rewrite != nil {
				node.Destination = []byte(rewrite(string(node.Destination)))
			}
		}
		return ast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := engine.Renderer().Render(&buf, source, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
