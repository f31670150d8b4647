// Package lsp runs the language server behind `luxsql lsp`. It serves live
// lint diagnostics, link navigation, backlinks, and glossary-aware
// completion and hover over stdio, keeping the on-disk index in sync
// through the scheduler as lessons are saved.
package lsp

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/graph"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/lint"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/scheduler"
)

const serverName = "luxsql"

// resyncInterval is how often the whole corpus is re-synced in the
// background to pick up changes made outside the editor.
const resyncInterval = 5 * time.Minute

// Server is the language server state: the open-document manager, the
// workspace snapshot, and the scheduler that serializes index writes.
// The snapshot is rebuilt from disk on saves; handlers read it under the
// mutex. glsp dispatches requests sequentially, so document contents are
// only ever touched from the handler goroutine.
type Server struct {
	handler *protocol.Handler
	log     commonlog.Logger
	docs    *documents
	sched   *scheduler.Scheduler

	bg     context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	root     string
	fsys     fs.FS
	cfg      corpus.Config
	corpus   *corpus.Corpus
	glossary *glossary.Glossary
	linter   *lint.Runner
	store    *index.Store
	graph    graph.Graph
	syncer   *index.Syncer

	diagMu      sync.Mutex
	diagnostics map[string][]protocol.Diagnostic
}

// NewServer builds the glsp server for a stdio session.
func NewServer() (*server.Server, error) {
	bg, cancel := context.WithCancel(context.Background())
	ls := &Server{
		log:         commonlog.GetLogger("lsp"),
		docs:        newDocuments(),
		sched:       scheduler.New(16),
		bg:          bg,
		cancel:      cancel,
		diagnostics: make(map[string][]protocol.Diagnostic),
	}
	ls.handler = &protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDefinition: ls.textDocumentDefinition,
		TextDocumentReferences: ls.textDocumentReferences,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentHover:      ls.textDocumentHover,
		Shutdown:               ls.shutdown,
	}
	return server.NewServer(ls.handler, serverName, false), nil
}

// openWorkspace prepares the state directory and index for a root, then
// loads the first snapshot. A corpus that fails to load leaves the
// session degraded rather than dead; a save that fixes it reloads.
func (s *Server) openWorkspace(root string) error {
	dir := filepath.Join(root, corpus.StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	store, err := index.Open(filepath.Join(dir, "index.db"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}

	s.mu.Lock()
	s.root = root
	s.fsys = os.DirFS(root)
	s.store = store
	s.graph = graph.New()
	s.mu.Unlock()

	if err := s.reloadWorkspace(); err != nil {
		s.log.Errorf("load workspace: %s", err.Error())
	}
	return nil
}

// reloadWorkspace rebuilds config, corpus, glossary and lint runner from
// disk and swaps them in. On error the previous snapshot stays active.
func (s *Server) reloadWorkspace() error {
	s.mu.RLock()
	fsys := s.fsys
	s.mu.RUnlock()
	if fsys == nil {
		return fmt.Errorf("workspace not initialized")
	}

	cfg, err := corpus.LoadConfig(fsys)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lessons, err := corpus.Load(fsys, cfg.Ignore)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	c := corpus.NewCorpus(lessons)
	g, err := glossary.Load(fsys)
	if err != nil {
		return fmt.Errorf("load glossary: %w", err)
	}
	linter, err := lint.NewRunner(cfg, fsys, c, g)
	if err != nil {
		return fmt.Errorf("build linter: %w", err)
	}

	s.mu.Lock()
	old := s.linter
	s.cfg = cfg
	s.corpus = c
	s.glossary = g
	s.linter = linter
	s.syncer = index.NewSyncer(fsys, s.store, s.graph, cfg.Ignore)
	s.mu.Unlock()

	// Requests are dispatched sequentially and sync tasks never lint, so
	// nothing can still be using the old runner here.
	if old != nil {
		old.Close()
	}
	return nil
}

// startBackground brings the index up to date and keeps it that way.
func (s *Server) startBackground() {
	s.sched.Start(s.bg)
	task := scheduler.Task{Name: "sync", Run: s.runSync}
	if err := s.sched.Enqueue(task); err != nil {
		s.log.Errorf("enqueue initial sync: %s", err.Error())
	}
	s.sched.RunPeriodic(s.bg, resyncInterval, task)
}

func (s *Server) runSync(ctx context.Context) error {
	s.mu.RLock()
	syncer := s.syncer
	s.mu.RUnlock()
	if syncer == nil {
		return nil
	}
	report, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("sync: %s", report.String())
	return nil
}

// enqueueSync schedules a single-file index update after a save.
func (s *Server) enqueueSync(path string) {
	s.mu.RLock()
	syncer := s.syncer
	s.mu.RUnlock()
	if syncer == nil {
		return
	}
	task := scheduler.Task{
		Name: "sync " + path,
		Run: func(context.Context) error {
			return syncer.SyncOne(path)
		},
	}
	if err := s.sched.Enqueue(task); err != nil {
		s.log.Errorf("enqueue sync of %s: %s", path, err.Error())
	}
}

// closeWorkspace stops background work and releases the index. The
// scheduler is drained before the store closes underneath a sync task.
func (s *Server) closeWorkspace() error {
	s.cancel()
	s.sched.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.linter != nil {
		s.linter.Close()
		s.linter = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}
		s.store = nil
	}
	return nil
}

// snapshot returns the workspace state request handlers work against.
func (s *Server) snapshot() (*corpus.Corpus, *glossary.Glossary, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus, s.glossary, s.root
}

// lintDocument produces diagnostics for an open document. The in-memory
// lesson is linted against the last loaded corpus, so cross-file checks
// may lag unsaved edits in other files.
func (s *Server) lintDocument(doc *document) []protocol.Diagnostic {
	if doc.parseErr != nil {
		return []protocol.Diagnostic{parseDiagnostic(doc.parseErr)}
	}
	if doc.lesson == nil {
		return nil
	}
	s.mu.RLock()
	linter := s.linter
	s.mu.RUnlock()
	if linter == nil {
		return nil
	}
	findings := linter.Lint(s.bg, doc.lesson)
	diagnostics := make([]protocol.Diagnostic, 0, len(findings))
	for _, finding := range findings {
		diagnostics = append(diagnostics, lintDiagnostic(finding))
	}
	return diagnostics
}

// corpusPath converts a document URI into a corpus-relative path.
func (s *Server) corpusPath(uri string) (string, error) {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()
	if root == "" {
		return "", fmt.Errorf("workspace not initialized")
	}
	rel, err := filepath.Rel(root, URIToPath(uri))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the workspace", uri)
	}
	return filepath.ToSlash(rel), nil
}

// absPath converts a corpus-relative path back to a filesystem path.
func (s *Server) absPath(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// workspaceRoot picks the root the client advertised, preferring rootUri.
func workspaceRoot(params *protocol.InitializeParams) (string, error) {
	if params.RootURI != nil && *params.RootURI != "" {
		return URIToPath(*params.RootURI), nil
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return *params.RootPath, nil
	}
	return os.Getwd()
}
