package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	root, err := workspaceRoot(params)
	if err != nil {
		return nil, fmt.Errorf("determine workspace root: %w", err)
	}
	s.log.Noticef("workspace root %s", root)

	if err := s.openWorkspace(root); err != nil {
		return nil, err
	}

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      true,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"(", "#"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	s.log.Notice("client initialized")
	s.startBackground()
	return nil
}

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	path, err := s.corpusPath(uri)
	if err != nil {
		s.log.Debugf("ignoring open of %s: %s", uri, err.Error())
		return nil
	}
	if !corpus.IsLessonPath(path) {
		return nil
	}
	s.log.Debugf("opened %s", path)

	doc := s.docs.open(path, uri, params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(context, uri, s.lintDocument(doc))
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	path, err := s.corpusPath(uri)
	if err != nil {
		return nil
	}
	if _, open := s.docs.get(path); !open {
		// Changes for files we never tracked, e.g. non-lesson markdown.
		return nil
	}

	doc, err := s.docs.change(path, params.ContentChanges, params.TextDocument.Version)
	if err != nil {
		return fmt.Errorf("apply changes to %s: %w", path, err)
	}
	s.publishDiagnostics(context, uri, s.lintDocument(doc))
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	path, err := s.corpusPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.log.Debugf("saved %s", path)

	if corpus.IsLessonPath(path) || path == glossary.File || path == corpus.ConfigFile {
		if err := s.reloadWorkspace(); err != nil {
			s.log.Errorf("reload workspace: %s", err.Error())
		}
	}
	if corpus.IsLessonPath(path) {
		s.enqueueSync(path)
	}

	// Cross-file diagnostics shift with the reload, so every open lesson
	// is linted again, not just the saved one.
	for _, open := range s.docs.paths() {
		if doc, ok := s.docs.get(open); ok {
			s.publishDiagnostics(context, doc.uri, s.lintDocument(doc))
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	path, err := s.corpusPath(uri)
	if err != nil {
		return nil
	}
	s.log.Debugf("closed %s", path)

	if _, ok := s.docs.close(path); ok {
		s.clearDiagnostics(context, uri)
	}
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	s.log.Notice("shutting down")
	return s.closeWorkspace()
}
