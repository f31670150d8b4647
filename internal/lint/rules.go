package lint

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// rule is one named per-lesson check. The severity is the default; the
// corpus config can override it or turn the rule off.
type rule struct {
	name     string
	severity Severity
	check    func(ctx context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic
}

// corpusRule checks a property that only holds across lessons.
type corpusRule struct {
	name     string
	severity Severity
	check    func(r *Runner) []Diagnostic
}

func lessonRules() []rule {
	return []rule{
		{name: "sql-syntax", severity: SeverityError, check: checkSQLSyntax},
		{name: "link-resolution", severity: SeverityError, check: checkLinks},
		{name: "heading-hierarchy", severity: SeverityError, check: checkHeadings},
		{name: "heading-duplicate", severity: SeverityWarning, check: checkDuplicateHeadings},
		{name: "frontmatter", severity: SeverityWarning, check: checkFrontMatter},
		{name: "code-fence", severity: SeverityWarning, check: checkFences},
	}
}

func corpusRules() []corpusRule {
	return []corpusRule{
		{name: "slug-unique", severity: SeverityError, check: checkSlugs},
	}
}

// fenceAttrs are the attributes the toolchain understands on sql fences.
var fenceAttrs = map[string]struct{}{
	"dialect": {},
	"norun":   {},
	"noparse": {},
}

var knownDialects = map[string]struct{}{
	"ansi":      {},
	"sqlite":    {},
	"mysql":     {},
	"postgres":  {},
	"sqlserver": {},
}

// checkSQLSyntax parses every sql fence against the reference grammar.
// Blocks marked noparse are exempt; they carry vendor syntax the grammar
// does not cover, such as procedure bodies behind DELIMITER.
func checkSQLSyntax(ctx context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	for _, block := range lesson.Doc.Blocks {
		if block.Lang != "sql" || block.HasAttr("noparse") {
			continue
		}
		issues, err := r.checker.Check(ctx, []byte(block.Content))
		if err != nil {
			diags = append(diags, Diagnostic{
				Line:    lesson.FileLine(fenceLine(block)),
				Message: fmt.Sprintf("cannot check snippet: %v", err),
			})
			continue
		}
		for _, issue := range issues {
			msg := issue.Message
			if issue.Context != "" {
				msg = fmt.Sprintf("%s near %q", msg, issue.Context)
			}
			diags = append(diags, Diagnostic{
				Line:    lesson.FileLine(block.StartLine + issue.Line - 1),
				Col:     issue.Col,
				Message: msg,
			})
		}
	}
	return diags
}

// checkLinks resolves every internal link and image against the corpus,
// the glossary page, and on-disk assets. External destinations are left
// alone; the linter never touches the network.
func checkLinks(_ context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	anchors := lesson.Anchors()

	for _, link := range lesson.Doc.Links {
		if link.Kind == markdown.LinkKindAuto || link.External() {
			continue
		}
		at := func(msg string) {
			diags = append(diags, Diagnostic{
				Line:    lesson.FileLine(link.Line),
				Col:     link.Col,
				Message: msg,
			})
		}

		if link.Destination == "" {
			at("empty link destination")
			continue
		}
		if link.FragmentOnly() {
			fragment := link.Destination[1:]
			if _, ok := anchors[fragment]; !ok {
				at(fmt.Sprintf("anchor %q not found in this lesson", fragment))
			}
			continue
		}

		target, fragment := link.SplitTarget()
		resolved, err := corpus.ResolveTarget(lesson.Path, target)
		if err != nil {
			at(fmt.Sprintf("unresolvable destination %q: %v", link.Destination, err))
			continue
		}

		if path.Ext(resolved) != ".md" || link.Kind == markdown.LinkKindImage {
			if r.fsys == nil {
				continue
			}
			if _, err := fs.Stat(r.fsys, resolved); err != nil {
				at(fmt.Sprintf("file %q not found", resolved))
			}
			continue
		}

		dest, ok := r.corpus.ByPath(resolved)
		if !ok {
			if resolved == glossary.VirtualPath {
				diags = append(diags, checkGlossaryLink(r, lesson, link, fragment)...)
				continue
			}
			at(fmt.Sprintf("lesson %q not found", resolved))
			continue
		}
		if fragment != "" {
			if _, ok := dest.Anchors()[fragment]; !ok {
				at(fmt.Sprintf("anchor %q not found in %s", fragment, resolved))
			}
		}
	}
	return diags
}

// checkGlossaryLink validates a link to the generated glossary page.
func checkGlossaryLink(r *Runner, lesson *corpus.Lesson, link markdown.Link, fragment string) []Diagnostic {
	at := func(msg string) []Diagnostic {
		return []Diagnostic{{
			Line:    lesson.FileLine(link.Line),
			Col:     link.Col,
			Message: msg,
		}}
	}
	if r.glossary == nil || r.glossary.Len() == 0 {
		return at(fmt.Sprintf("link to %s but the corpus has no glossary", glossary.VirtualPath))
	}
	if fragment == "" {
		return nil
	}
	if _, ok := r.glossary.Anchors()[fragment]; !ok {
		return at(fmt.Sprintf("term anchor %q not found in the glossary", fragment))
	}
	return nil
}

// checkHeadings enforces the outline shape: exactly one H1 at the top and
// no skipped levels on the way down.
func checkHeadings(_ context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	headings := lesson.Doc.Headings
	if len(headings) == 0 {
		return []Diagnostic{{
			Line:    lesson.FileLine(1),
			Message: "lesson has no headings",
		}}
	}

	var diags []Diagnostic
	at := func(h markdown.Heading, msg string) {
		diags = append(diags, Diagnostic{Line: lesson.FileLine(h.Line), Message: msg})
	}

	if headings[0].Level != 1 {
		at(headings[0], fmt.Sprintf("first heading must be the H1 title, got H%d", headings[0].Level))
	}
	prev := headings[0].Level
	for _, h := range headings[1:] {
		if h.Level == 1 {
			at(h, "multiple top-level headings; only the lesson title may be H1")
		}
		if h.Level > prev+1 {
			at(h, fmt.Sprintf("heading level jumps from H%d to H%d", prev, h.Level))
		}
		prev = h.Level
	}
	for _, h := range headings {
		if strings.TrimSpace(h.Text) == "" {
			at(h, "empty heading")
		}
	}
	return diags
}

// checkDuplicateHeadings flags repeated heading text. The anchor generator
// keeps such anchors unique by suffixing them, but links written against
// the visible text will land on the first occurrence.
func checkDuplicateHeadings(_ context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]struct{}, len(lesson.Doc.Headings))
	for _, h := range lesson.Doc.Headings {
		slug := markdown.Slug(h.Text)
		if _, dup := seen[slug]; dup {
			diags = append(diags, Diagnostic{
				Line:    lesson.FileLine(h.Line),
				Message: fmt.Sprintf("duplicate heading %q; its anchor falls back to %q", h.Text, h.Anchor),
			})
			continue
		}
		seen[slug] = struct{}{}
	}
	return diags
}

// checkFrontMatter verifies the fields the corpus config requires, plus a
// few shape checks on fields that are present.
func checkFrontMatter(_ context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	at := func(msg string) {
		diags = append(diags, Diagnostic{Line: 1, Message: msg})
	}

	fm := lesson.FrontMatter
	for _, field := range r.cfg.RequiredFrontmatter {
		missing := false
		switch field {
		case "title":
			missing = fm.Title == ""
		case "slug":
			missing = fm.Slug == ""
		case "topic":
			missing = fm.Topic == ""
		case "order":
			missing = fm.Order <= 0
		case "dialect":
			missing = fm.Dialect == ""
		case "summary":
			missing = fm.Summary == ""
		}
		if missing {
			at(fmt.Sprintf("missing required frontmatter field %q", field))
		}
	}

	if fm.Slug != "" && fm.Slug != markdown.Slug(fm.Slug) {
		at(fmt.Sprintf("slug %q is not a clean anchor; use %q", fm.Slug, markdown.Slug(fm.Slug)))
	}
	if fm.Dialect != "" {
		if _, ok := knownDialects[fm.Dialect]; !ok {
			at(fmt.Sprintf("unknown dialect %q", fm.Dialect))
		}
	}
	return diags
}

// checkFences reports fences a reader cannot act on: missing language
// tags, empty sql blocks, and attributes the toolchain does not know.
func checkFences(_ context.Context, r *Runner, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	for _, block := range lesson.Doc.Blocks {
		at := func(msg string) {
			diags = append(diags, Diagnostic{
				Line:    lesson.FileLine(fenceLine(block)),
				Message: msg,
			})
		}
		if block.Lang == "" {
			at("code fence without a language tag")
			continue
		}
		if block.Lang != "sql" {
			continue
		}
		if strings.TrimSpace(block.Content) == "" {
			at("empty sql block")
		}
		keys := make([]string, 0, len(block.Attrs))
		for key := range block.Attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := fenceAttrs[key]; !ok {
				at(fmt.Sprintf("unknown fence attribute %q", key))
			}
		}
		if dialect := block.Dialect(); dialect != "" {
			if _, ok := knownDialects[dialect]; !ok {
				at(fmt.Sprintf("unknown dialect %q", dialect))
			}
		}
	}
	return diags
}

// checkSlugs reports slug collisions across the corpus. The first lesson
// by corpus order keeps the slug; every later claimant is flagged.
func checkSlugs(r *Runner) []Diagnostic {
	var diags []Diagnostic
	first := make(map[string]string, len(r.corpus.Lessons))
	for _, lesson := range r.corpus.Lessons {
		slug := lesson.Slug()
		if owner, taken := first[slug]; taken {
			diags = append(diags, Diagnostic{
				Path:    lesson.Path,
				Line:    1,
				Message: fmt.Sprintf("duplicate slug %q, already used by %s", slug, owner),
			})
			continue
		}
		first[slug] = lesson.Path
	}
	return diags
}

// fenceLine returns the body line to report a whole-block finding on.
func fenceLine(block markdown.CodeBlock) int {
	if block.FenceLine > 0 {
		return block.FenceLine
	}
	return block.StartLine
}
