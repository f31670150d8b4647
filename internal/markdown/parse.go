package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// engine is shared by Parse and Render. Goldmark parsers are stateless, so a
// single instance serves all callers without locking. Raw HTML is allowed;
// lesson sources are trusted repository content.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Parse extracts the document structure from markdown source. The body is
// expected to have frontmatter already stripped; line numbers are relative
// to the given source.
func Parse(source []byte) *Doc {
	root := engine.Parser().Parse(text.NewReader(source))
	return extract(root, source)
}

func extract(root ast.Node, source []byte) *Doc {
	doc := &Doc{}
	index := newLineIndex(source)
	anchors := newAnchorSet()

	// Links are inline nodes and goldmark does not keep their offsets, so
	// destinations are located by scanning the source in document order.
	cursor := 0

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(source))
			line := 0
			if node.Lines().Len() > 0 {
				line, _ = index.pos(node.Lines().At(0).Start)
			}
			doc.Headings = append(doc.Headings, Heading{
				Level:  node.Level,
				Text:   title,
				Anchor: anchors.generate(title),
				Line:   line,
			})

		case *ast.FencedCodeBlock:
			doc.Blocks = append(doc.Blocks, extractBlock(node, source, index))

		case *ast.Link:
			dest := string(node.Destination)
			line, col, end := locate(source, index, &cursor, dest)
			doc.Links = append(doc.Links, Link{
				Kind:        LinkKindInline,
				Destination: dest,
				Line:        line,
				Col:         col,
				EndCol:      end,
			})

		case *ast.Image:
			dest := string(node.Destination)
			line, col, end := locate(source, index, &cursor, dest)
			doc.Links = append(doc.Links, Link{
				Kind:        LinkKindImage,
				Destination: dest,
				Line:        line,
				Col:         col,
				EndCol:      end,
			})

		case *ast.AutoLink:
			dest := string(node.URL(source))
			line, col, end := locate(source, index, &cursor, dest)
			doc.Links = append(doc.Links, Link{
				Kind:        LinkKindAuto,
				Destination: dest,
				Line:        line,
				Col:         col,
				EndCol:      end,
			})
		}

		return ast.WalkContinue, nil
	})

	return doc
}

func extractBlock(node *ast.FencedCodeBlock, source []byte, index *lineIndex) CodeBlock {
	block := CodeBlock{Attrs: map[string]string{}}

	if node.Info != nil {
		info := string(node.Info.Segment.Value(source))
		block.Lang, block.Attrs = splitInfo(info)
		block.FenceLine, _ = index.pos(node.Info.Segment.Start)
	}

	lines := node.Lines()
	if lines.Len() > 0 {
		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			buf.Write(lines.At(i).Value(source))
		}
		block.Content = buf.String()
		block.StartLine, _ = index.pos(lines.At(0).Start)
		block.EndLine, _ = index.pos(lines.At(lines.Len() - 1).Start)
		if block.FenceLine == 0 {
			block.FenceLine = block.StartLine - 1
		}
	} else if block.FenceLine > 0 {
		block.StartLine = block.FenceLine + 1
		block.EndLine = block.FenceLine
	}

	return block
}

// splitInfo splits a fence info string into language and attributes.
// Attribute tokens are either bare flags ("norun") or key=value pairs.
func splitInfo(info string) (string, map[string]string) {
	attrs := map[string]string{}
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", attrs
	}
	for _, field := range fields[1:] {
		if k, v, found := strings.Cut(field, "="); found {
			attrs[k] = v
		} else {
			attrs[field] = ""
		}
	}
	return fields[0], attrs
}

// locate finds the next occurrence of dest at or after *cursor and returns
// its position. Destinations goldmark resolved from reference definitions
// may not occur literally; those fall back to the cursor position.
func locate(source []byte, index *lineIndex, cursor *int, dest string) (line, col, endCol int) {
	if dest == "" || *cursor >= len(source) {
		line, col = index.pos(*cursor)
		return line, col, col
	}
	at := bytes.Index(source[*cursor:], []byte(dest))
	if at < 0 {
		line, col = index.pos(*cursor)
		return line, col, col
	}
	start := *cursor + at
	*cursor = start + len(dest)
	line, col = index.pos(start)
	return line, col, col + len(dest)
}

// lineIndex maps byte offsets to 1-based line and 0-based column numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (ix *lineIndex) pos(offset int) (line, col int) {
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - ix.starts[i]
}
