// Package glossary maintains the curriculum's term glossary. The glossary
// lives in glossary.yaml at the corpus root and backs the `glossary` CLI
// command, editor hovers, and the virtual glossary page produced by the
// renderer. Lessons may link terms as `glossary.md#<anchor>`.
package glossary

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// File is the glossary's location relative to the corpus root.
const File = "glossary.yaml"

// VirtualPath is the lesson path the rendered glossary page answers to.
const VirtualPath = "glossary.md"

// Entry is a single glossary term.
type Entry struct {
	Term       string   `yaml:"term"`
	Definition string   `yaml:"definition"`
	Aliases    []string `yaml:"aliases"`
	See        []string `yaml:"see"`
}

// Anchor returns the term's anchor on the rendered glossary page.
func (e Entry) Anchor() string {
	return markdown.Slug(e.Term)
}

type document struct {
	Terms []Entry `yaml:"terms"`
}

// Glossary is a validated set of entries with case-insensitive lookup.
type Glossary struct {
	Entries []Entry

	byKey map[string]int // case-folded term and aliases -> Entries index
}

// Load reads glossary.yaml from the corpus root. A missing file yields an
// empty glossary; a malformed one is an error.
func Load(fsys fs.FS) (*Glossary, error) {
	data, err := fs.ReadFile(fsys, File)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", File, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", File, err)
	}
	return New(doc.Terms)
}

// New validates entries and builds the lookup table. Terms and aliases must
// be unique after case folding, definitions non-empty, and every `see`
// reference must name an existing term.
func New(entries []Entry) (*Glossary, error) {
	g := &Glossary{
		Entries: entries,
		byKey:   make(map[string]int),
	}

	for i, entry := range entries {
		if err := validation.ValidateStruct(&entry,
			validation.Field(&entry.Term, validation.Required),
			validation.Field(&entry.Definition, validation.Required),
		); err != nil {
			return nil, fmt.Errorf("glossary entry %d: %w", i, err)
		}

		for _, key := range append([]string{entry.Term}, entry.Aliases...) {
			folded := fold(key)
			if folded == "" {
				return nil, fmt.Errorf("glossary term %q: empty alias", entry.Term)
			}
			if prev, taken := g.byKey[folded]; taken {
				return nil, fmt.Errorf("glossary term %q collides with %q", key, entries[prev].Term)
			}
			g.byKey[folded] = i
		}
	}

	for _, entry := range entries {
		for _, ref := range entry.See {
			if _, ok := g.byKey[fold(ref)]; !ok {
				return nil, fmt.Errorf("glossary term %q: see reference %q does not exist", entry.Term, ref)
			}
		}
	}

	return g, nil
}

// Lookup finds an entry by term or alias, ignoring case.
func (g *Glossary) Lookup(term string) (Entry, bool) {
	i, ok := g.byKey[fold(term)]
	if !ok {
		return Entry{}, false
	}
	return g.Entries[i], true
}

// Anchors returns the anchor set of the rendered glossary page.
func (g *Glossary) Anchors() map[string]struct{} {
	anchors := make(map[string]struct{}, len(g.Entries))
	for _, entry := range g.Entries {
		anchors[entry.Anchor()] = struct{}{}
	}
	return anchors
}

// Terms returns all terms sorted alphabetically.
func (g *Glossary) Terms() []string {
	terms := make([]string, 0, len(g.Entries))
	for _, entry := range g.Entries {
		terms = append(terms, entry.Term)
	}
	sort.Strings(terms)
	return terms
}

// Len reports the number of entries.
func (g *Glossary) Len() int {
	return len(g.Entries)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
