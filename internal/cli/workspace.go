package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/lessons"
)

// workspace is everything a command can load from a corpus root.
type workspace struct {
	fsys     fs.FS
	embedded bool
	cfg      corpus.Config
	corpus   *corpus.Corpus
	glossary *glossary.Glossary
}

// corpusFS resolves --corpus to a filesystem. When the flag is left at
// its default and the working directory holds no lessons, the curriculum
// embedded in the binary takes over, so an installed luxsql works
// without a checkout.
func corpusFS(opts *RootOptions) (fs.FS, bool, error) {
	info, err := os.Stat(opts.Corpus)
	switch {
	case err == nil && info.IsDir():
		fsys := os.DirFS(opts.Corpus)
		if opts.Corpus != "." || hasLessons(fsys) {
			return fsys, false, nil
		}
		return lessons.FS, true, nil
	case opts.Corpus == ".":
		return lessons.FS, true, nil
	default:
		return nil, false, NewExitError(ExitCommandError, fmt.Sprintf("corpus root %s is not a directory", opts.Corpus))
	}
}

func hasLessons(fsys fs.FS) bool {
	if _, err := fs.Stat(fsys, corpus.ConfigFile); err == nil {
		return true
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && corpus.IsLessonPath(entry.Name()) {
			return true
		}
	}
	return false
}

// loadWorkspace reads config, lessons and glossary from the corpus root.
func loadWorkspace(opts *RootOptions) (*workspace, error) {
	fsys, embedded, err := corpusFS(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := corpus.LoadConfig(fsys)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	lessonFiles, err := corpus.Load(fsys, cfg.Ignore)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load corpus", err)
	}
	g, err := glossary.Load(fsys)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load glossary", err)
	}

	return &workspace{
		fsys:     fsys,
		embedded: embedded,
		cfg:      cfg,
		corpus:   corpus.NewCorpus(lessonFiles),
		glossary: g,
	}, nil
}

// openStore opens the index database, creating its directory if needed.
func openStore(opts *RootOptions) (*index.Store, error) {
	path := opts.DBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create index directory", err)
	}
	store, err := index.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open index", err)
	}
	return store, nil
}

// findLesson resolves a lesson argument as a corpus path first, then as
// a slug.
func (w *workspace) findLesson(arg string) (*corpus.Lesson, error) {
	p := filepath.ToSlash(filepath.Clean(arg))
	if lesson, ok := w.corpus.ByPath(p); ok {
		return lesson, nil
	}
	if lesson, ok := w.corpus.BySlug(arg); ok {
		return lesson, nil
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("no lesson %q in the corpus", arg))
}
