package lsp

import (
	"reflect"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/lint"
)

// URIToPath converts an LSP URI to a filesystem path.
func URIToPath(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	return strings.ReplaceAll(path, "%20", " ")
}

// PathToURI converts a filesystem path to an LSP URI.
func PathToURI(path string) string {
	return "file://" + strings.ReplaceAll(path, " ", "%20")
}

// diagnosticSource tags published diagnostics in the editor UI.
const diagnosticSource = "luxsql"

// lintDiagnostic converts a lint finding into a protocol diagnostic.
// Findings carry a position, not a span, so the range is empty.
func lintDiagnostic(d lint.Diagnostic) protocol.Diagnostic {
	severity := severityOf(d.Severity)
	source := diagnosticSource
	pos := protocol.Position{}
	if d.Line > 0 {
		pos.Line = uint32(d.Line - 1)
	}
	if d.Col > 0 {
		pos.Character = uint32(d.Col)
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: pos, End: pos},
		Severity: &severity,
		Source:   &source,
		Message:  d.Message + " [" + d.Rule + "]",
	}
}

// parseDiagnostic reports an unparseable buffer at the top of the file.
func parseDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	return protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}
}

func severityOf(s lint.Severity) protocol.DiagnosticSeverity {
	switch s {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// publishDiagnostics pushes a document's diagnostics, skipping the
// notification when nothing changed since the last publish.
func (s *Server) publishDiagnostics(context *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	s.diagMu.Lock()
	if previous, ok := s.diagnostics[uri]; ok && reflect.DeepEqual(previous, diagnostics) {
		s.diagMu.Unlock()
		return
	}
	s.diagnostics[uri] = diagnostics
	s.diagMu.Unlock()

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// clearDiagnostics wipes the client's diagnostics for a closed document.
func (s *Server) clearDiagnostics(context *glsp.Context, uri string) {
	s.diagMu.Lock()
	delete(s.diagnostics, uri)
	s.diagMu.Unlock()

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
}
