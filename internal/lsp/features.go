package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	path, err := s.corpusPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc, ok := s.docs.get(path)
	if !ok || doc.lesson == nil {
		return nil, nil
	}
	link, ok := linkAt(doc.lesson, params.Position)
	if !ok || link.External() {
		return nil, nil
	}

	c, g, _ := s.snapshot()
	if c == nil {
		return nil, nil
	}

	if link.FragmentOnly() {
		return headingLocation(doc.lesson, params.TextDocument.URI, link.Destination[1:]), nil
	}

	target, fragment := link.SplitTarget()
	resolved, err := corpus.ResolveTarget(path, target)
	if err != nil {
		return nil, nil
	}
	if resolved == glossary.VirtualPath {
		if g == nil || g.Len() == 0 {
			return nil, nil
		}
		return zeroLocation(PathToURI(s.absPath(glossary.File))), nil
	}
	lesson, ok := c.ByPath(resolved)
	if !ok {
		// Dangling link; the lint rule reports it, definition stays quiet.
		return nil, nil
	}
	uri := PathToURI(s.absPath(lesson.Path))
	if fragment != "" {
		return headingLocation(lesson, uri, fragment), nil
	}
	return zeroLocation(uri), nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	path, err := s.corpusPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	s.mu.RLock()
	gr := s.graph
	s.mu.RUnlock()
	if gr == nil {
		return nil, nil
	}

	// Backlinks reflect the index, which trails unsaved edits.
	backlinks, err := gr.BackLinks(path)
	if err != nil {
		return nil, nil
	}

	locations := make([]protocol.Location, 0, len(backlinks))
	for _, link := range backlinks {
		uri := PathToURI(s.absPath(link.Source))
		if len(link.Ranges) == 0 {
			locations = append(locations, zeroLocation(uri))
			continue
		}
		for _, r := range link.Ranges {
			locations = append(locations, protocol.Location{URI: uri, Range: r})
		}
	}
	return locations, nil
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	path, err := s.corpusPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc, ok := s.docs.get(path)
	if !ok {
		return nil, nil
	}
	line := doc.line(params.Position.Line)
	char := int(params.Position.Character)
	if char > len(line) {
		char = len(line)
	}
	typed, ok := linkContext(line[:char])
	if !ok {
		return nil, nil
	}

	c, g, _ := s.snapshot()
	if c == nil {
		return nil, nil
	}

	if base, _, found := strings.Cut(typed, "#"); found {
		return s.anchorItems(doc, c, g, path, base), nil
	}
	return targetItems(c, g, path), nil
}

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	path, err := s.corpusPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc, ok := s.docs.get(path)
	if !ok {
		return nil, nil
	}
	_, g, _ := s.snapshot()
	if g == nil || g.Len() == 0 {
		return nil, nil
	}

	line := doc.line(params.Position.Line)
	entry, start, end, ok := termAt(g, line, int(params.Position.Character))
	if !ok {
		return nil, nil
	}

	value := fmt.Sprintf("**%s**\n\n%s", entry.Term, entry.Definition)
	if len(entry.See) > 0 {
		value += "\n\nSee also: " + strings.Join(entry.See, ", ")
	}
	hoverRange := protocol.Range{
		Start: protocol.Position{Line: params.Position.Line, Character: uint32(start)},
		End:   protocol.Position{Line: params.Position.Line, Character: uint32(end)},
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
		Range: &hoverRange,
	}, nil
}

// linkAt finds the link whose destination spans the cursor. Doc positions
// are body-relative, the protocol's file-relative.
func linkAt(lesson *corpus.Lesson, pos protocol.Position) (markdown.Link, bool) {
	bodyLine := int(pos.Line) + 1 - lesson.BodyLine
	col := int(pos.Character)
	for _, link := range lesson.Doc.Links {
		if link.Line == bodyLine && link.Col <= col && col <= link.EndCol {
			return link, true
		}
	}
	return markdown.Link{}, false
}

// headingLocation points at the heading carrying the anchor, or the top
// of the file when the anchor does not resolve.
func headingLocation(lesson *corpus.Lesson, uri, anchor string) protocol.Location {
	for _, h := range lesson.Doc.Headings {
		if h.Anchor == anchor {
			line := uint32(lesson.FileLine(h.Line) - 1)
			return protocol.Location{
				URI: uri,
				Range: protocol.Range{
					Start: protocol.Position{Line: line},
					End:   protocol.Position{Line: line},
				},
			}
		}
	}
	return zeroLocation(uri)
}

func zeroLocation(uri string) protocol.Location {
	return protocol.Location{URI: uri}
}

// linkContext reports whether the cursor sits in the destination of a
// markdown link, returning the destination typed so far.
func linkContext(linePrefix string) (string, bool) {
	open := strings.LastIndex(linePrefix, "](")
	if open < 0 {
		return "", false
	}
	typed := linePrefix[open+2:]
	if strings.ContainsAny(typed, ") ") {
		return "", false
	}
	return typed, true
}

// anchorItems completes `#` fragments for the link target typed so far.
func (s *Server) anchorItems(doc *document, c *corpus.Corpus, g *glossary.Glossary, path, base string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindReference

	if base == "" {
		if doc.lesson == nil {
			return nil
		}
		return headingItems(doc.lesson, kind)
	}

	resolved, err := corpus.ResolveTarget(path, base)
	if err != nil {
		return nil
	}
	if resolved == glossary.VirtualPath {
		if g == nil {
			return nil
		}
		items := make([]protocol.CompletionItem, 0, g.Len())
		for _, entry := range g.Entries {
			term := entry.Term
			items = append(items, protocol.CompletionItem{
				Label:  entry.Anchor(),
				Kind:   &kind,
				Detail: &term,
			})
		}
		return items
	}
	lesson, ok := c.ByPath(resolved)
	if !ok {
		return nil
	}
	return headingItems(lesson, kind)
}

func headingItems(lesson *corpus.Lesson, kind protocol.CompletionItemKind) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(lesson.Doc.Headings))
	for _, h := range lesson.Doc.Headings {
		text := h.Text
		items = append(items, protocol.CompletionItem{
			Label:  h.Anchor,
			Kind:   &kind,
			Detail: &text,
		})
	}
	return items
}

// targetItems completes lesson paths plus the virtual glossary page.
func targetItems(c *corpus.Corpus, g *glossary.Glossary, path string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindFile
	items := make([]protocol.CompletionItem, 0, len(c.Lessons)+1)
	for _, lesson := range c.Lessons {
		if lesson.Path == path {
			continue
		}
		title := lesson.Title()
		items = append(items, protocol.CompletionItem{
			Label:  lesson.Path,
			Kind:   &kind,
			Detail: &title,
		})
	}
	if g != nil && g.Len() > 0 {
		detail := "Glossary"
		items = append(items, protocol.CompletionItem{
			Label:  glossary.VirtualPath,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

// wordSpan is one word of a line as a column range.
type wordSpan struct {
	start, end int
}

// maxTermWords bounds the phrase window tried against the glossary.
const maxTermWords = 4

// termAt finds the longest glossary term or alias covering the cursor.
func termAt(g *glossary.Glossary, line string, col int) (glossary.Entry, int, int, bool) {
	words := splitWords(line)
	at := -1
	for i, w := range words {
		if w.start <= col && col <= w.end {
			at = i
			break
		}
	}
	if at < 0 {
		return glossary.Entry{}, 0, 0, false
	}

	for size := maxTermWords; size >= 1; size-- {
		for first := at - size + 1; first <= at; first++ {
			last := first + size - 1
			if first < 0 || last >= len(words) {
				continue
			}
			phrase := line[words[first].start:words[last].end]
			if entry, ok := g.Lookup(phrase); ok {
				return entry, words[first].start, words[last].end, true
			}
		}
	}
	return glossary.Entry{}, 0, 0, false
}

// splitWords returns the word spans of a line. Hyphens and underscores
// count as word bytes, so "anti-join" stays one word.
func splitWords(line string) []wordSpan {
	var words []wordSpan
	start := -1
	for i := 0; i <= len(line); i++ {
		inWord := i < len(line) && isWordByte(line[i])
		if inWord && start < 0 {
			start = i
		}
		if !inWord && start >= 0 {
			words = append(words, wordSpan{start: start, end: i})
			start = -1
		}
	}
	return words
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-' || b == '_'
}
