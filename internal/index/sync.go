package index

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	lsp "github.com/tliron/glsp/protocol_3_16"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/graph"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// fileMeta is what the walker learns about a file without opening it.
type fileMeta struct {
	path    string
	modTime int64
}

// update pairs a changed file with its previous index record, if any.
type update struct {
	meta   fileMeta
	record LessonRecord
	known  bool
}

// Report summarizes one sync pass.
type Report struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

func (r Report) String() string {
	return fmt.Sprintf("scanned %d, updated %d, deleted %d, unchanged %d, failed %d",
		r.Scanned, r.Updated, r.Deleted, r.Unchanged, r.Failed)
}

// Syncer keeps the index in step with the corpus files. Change detection
// is two-staged: modification time first, then checksum, so touching a
// file without editing it does not reindex it.
type Syncer struct {
	fsys   fs.FS
	store  *Store
	graph  graph.Graph // optional; kept in step when non-nil
	ignore []string
	log    commonlog.Logger
}

func NewSyncer(fsys fs.FS, store *Store, g graph.Graph, ignore []string) *Syncer {
	return &Syncer{
		fsys:   fsys,
		store:  store,
		graph:  g,
		ignore: ignore,
		log:    commonlog.GetLogger("index.sync"),
	}
}

// Sync walks the corpus and applies every change to the index. Files in
// flight when ctx is canceled finish; the walk stops at the next file.
func (s *Syncer) Sync(ctx context.Context) (Report, error) {
	known, err := s.store.AllLessons()
	if err != nil {
		return Report{}, err
	}

	var report Report
	metaChan := make(chan fileMeta, 256)
	updateChan := make(chan update, 256)

	var walkWg sync.WaitGroup
	walkWg.Add(1)
	go func() {
		defer walkWg.Done()
		defer close(metaChan)
		s.walk(ctx, metaChan)
	}()

	var processWg sync.WaitGroup
	processWg.Add(1)
	go func() {
		defer processWg.Done()
		s.processUpdates(updateChan, &report)
	}()

	for meta := range metaChan {
		report.Scanned++
		record, exists := known[meta.path]
		if exists {
			delete(known, meta.path)
			if record.LastModified >= meta.modTime {
				report.Unchanged++
				continue
			}
		}
		updateChan <- update{meta: meta, record: record, known: exists}
	}
	close(updateChan)
	processWg.Wait()
	walkWg.Wait()

	// Whatever is left in known no longer exists on disk.
	for path := range known {
		if err := s.store.DeleteLesson(path); err != nil {
			s.log.Errorf("delete %s: %s", path, err.Error())
			report.Failed++
			continue
		}
		if s.graph != nil {
			if err := s.graph.DeleteLesson(path); err != nil && err != graph.ErrNotFound {
				s.log.Errorf("graph delete %s: %s", path, err.Error())
			}
		}
		report.Deleted++
	}

	s.log.Infof("sync done: %s", report.String())
	return report, nil
}

func (s *Syncer) walk(ctx context.Context, metaChan chan<- fileMeta) {
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warningf("walk %s: %s", p, err.Error())
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !corpus.IsLessonPath(p) || corpus.Ignored(p, s.ignore) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.log.Warningf("stat %s: %s", p, err.Error())
			return nil
		}
		metaChan <- fileMeta{path: p, modTime: info.ModTime().Unix()}
		return nil
	})
	if err != nil && err != context.Canceled {
		s.log.Errorf("walk: %s", err.Error())
	}
}

func (s *Syncer) processUpdates(updateChan <-chan update, report *Report) {
	for u := range updateChan {
		changed, err := s.indexFile(u.meta, u.record, u.known)
		switch {
		case err != nil:
			s.log.Errorf("index %s: %s", u.meta.path, err.Error())
			report.Failed++
		case changed:
			report.Updated++
		default:
			report.Unchanged++
		}
	}
}

// indexFile reads, fingerprints and, when changed, reindexes one file.
func (s *Syncer) indexFile(meta fileMeta, record LessonRecord, known bool) (bool, error) {
	content, err := fs.ReadFile(s.fsys, meta.path)
	if err != nil {
		return false, err
	}

	checksum := corpus.ComputeChecksum(content)
	if known && bytes.Equal(checksum, record.Checksum) {
		return false, nil
	}

	lesson, err := corpus.ParseLesson(meta.path, content)
	if err != nil {
		return false, err
	}
	if info, err := fs.Stat(s.fsys, meta.path); err == nil {
		lesson.ModTime = info.ModTime()
	}

	if err := s.store.IndexLesson(lesson); err != nil {
		return false, err
	}
	if s.graph != nil {
		if err := s.graph.UpsertLesson(lesson.Path, graphLinks(lesson)); err != nil {
			s.log.Errorf("graph upsert %s: %s", lesson.Path, err.Error())
		}
	}
	return true, nil
}

// SyncOne reindexes a single file, or removes it when it is gone. The
// language server calls this on save instead of paying for a full walk.
func (s *Syncer) SyncOne(path string) error {
	if !corpus.IsLessonPath(path) {
		return fmt.Errorf("not a lesson file: %s", path)
	}

	info, err := fs.Stat(s.fsys, path)
	if err != nil {
		if deleteErr := s.store.DeleteLesson(path); deleteErr != nil && deleteErr != ErrNotFound {
			return deleteErr
		}
		if s.graph != nil {
			if graphErr := s.graph.DeleteLesson(path); graphErr != nil && graphErr != graph.ErrNotFound {
				return graphErr
			}
		}
		return nil
	}

	record, err := s.store.GetLesson(path)
	if err != nil && err != ErrNotFound {
		return err
	}
	known := err == nil
	var prev LessonRecord
	if known {
		prev = *record
	}

	_, err = s.indexFile(fileMeta{path: path, modTime: info.ModTime().Unix()}, prev, known)
	return err
}

// graphLinks builds the topology edges of a lesson, one edge per target
// with every occurrence's range attached.
func graphLinks(lesson *corpus.Lesson) []graph.Link {
	byTarget := make(map[string]*graph.Link)
	var order []string
	for _, link := range lesson.Doc.Links {
		if link.Kind == markdown.LinkKindAuto || link.External() || link.Destination == "" || link.FragmentOnly() {
			continue
		}
		target, _ := link.SplitTarget()
		resolved, err := corpus.ResolveTarget(lesson.Path, target)
		if err != nil {
			continue
		}
		r := lsp.Range{
			Start: lsp.Position{Line: uint32(lesson.FileLine(link.Line) - 1), Character: uint32(link.Col)},
			End:   lsp.Position{Line: uint32(lesson.FileLine(link.Line) - 1), Character: uint32(link.EndCol)},
		}
		if edge, ok := byTarget[resolved]; ok {
			edge.Ranges = append(edge.Ranges, r)
			continue
		}
		byTarget[resolved] = &graph.Link{Source: lesson.Path, Target: resolved, Ranges: []lsp.Range{r}}
		order = append(order, resolved)
	}

	links := make([]graph.Link, 0, len(byTarget))
	for _, target := range order {
		links = append(links, *byTarget[target])
	}
	return links
}
