package lsp

import (
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
)

// document is the in-editor state of one lesson. lesson holds the last
// content that parsed; parseErr is set while the buffer is unparseable,
// which mostly happens mid-edit inside the frontmatter block.
type document struct {
	uri      string
	path     string // corpus-relative, slash-separated
	version  int32
	content  string
	lesson   *corpus.Lesson
	parseErr error
}

// documents tracks the open editor buffers, keyed by corpus path. The
// mutex guards the map; document fields are only mutated from the
// handler goroutine.
type documents struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func newDocuments() *documents {
	return &documents{docs: make(map[string]*document)}
}

func (m *documents) open(path, uri, content string, version int32) *document {
	doc := &document{
		uri:     uri,
		path:    path,
		version: version,
		content: content,
	}
	doc.reparse()

	m.mu.Lock()
	m.docs[path] = doc
	m.mu.Unlock()
	return doc
}

func (m *documents) get(path string) (*document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	return doc, ok
}

// change applies the content changes of a didChange notification and
// reparses once at the end.
func (m *documents) change(path string, changes []any, version int32) (*document, error) {
	doc, ok := m.get(path)
	if !ok {
		return nil, fmt.Errorf("document not open: %s", path)
	}

	for _, raw := range changes {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			doc.content = splice(doc.content, change.Range, change.Text)
		case protocol.TextDocumentContentChangeEventWhole:
			doc.content = change.Text
		default:
			return nil, fmt.Errorf("unsupported content change %T", raw)
		}
	}
	doc.version = version
	doc.reparse()
	return doc, nil
}

func (m *documents) close(path string) (*document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if ok {
		delete(m.docs, path)
	}
	return doc, ok
}

// paths returns the open corpus paths, for re-linting after a reload.
func (m *documents) paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.docs))
	for path := range m.docs {
		paths = append(paths, path)
	}
	return paths
}

func (d *document) reparse() {
	lesson, err := corpus.ParseLesson(d.path, []byte(d.content))
	if err != nil {
		d.parseErr = err
		return
	}
	d.lesson = lesson
	d.parseErr = nil
}

// line returns the 0-based line of the buffer, without its newline.
func (d *document) line(n uint32) string {
	content := d.content
	start := 0
	for line := uint32(0); line < n; line++ {
		next := indexByteFrom(content, start, '\n')
		if next < 0 {
			return ""
		}
		start = next + 1
	}
	end := indexByteFrom(content, start, '\n')
	if end < 0 {
		end = len(content)
	}
	return content[start:end]
}

// splice replaces a protocol range of the content. A nil range replaces
// the whole document.
func splice(content string, r *protocol.Range, text string) string {
	if r == nil {
		return text
	}
	start := positionToOffset(content, r.Start)
	end := positionToOffset(content, r.End)
	if end < start {
		start, end = end, start
	}
	return content[:start] + text + content[end:]
}

// positionToOffset walks the content counting newlines. Characters are
// counted in bytes, which matches clients for ASCII-heavy markdown.
func positionToOffset(content string, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line && offset < len(content); offset++ {
		if content[offset] == '\n' {
			line++
		}
	}
	offset += int(pos.Character)
	if offset > len(content) {
		offset = len(content)
	}
	return offset
}

func indexByteFrom(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
