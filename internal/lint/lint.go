package lint

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/sqlcheck"
)

// Runner applies the rule set to lessons. It owns a SQL checker and is
// therefore not safe for concurrent use; create one Runner per goroutine
// and Close it when done.
type Runner struct {
	cfg      corpus.Config
	fsys     fs.FS
	corpus   *corpus.Corpus
	glossary *glossary.Glossary
	checker  *sqlcheck.Checker

	lesson []rule
	whole  []corpusRule
}

// NewRunner wires the rules against a loaded corpus. fsys is the corpus
// root and is only used to verify that linked assets exist; it may be nil,
// which skips those checks. The config's rule overrides are validated
// against the known rule names.
func NewRunner(cfg corpus.Config, fsys fs.FS, c *corpus.Corpus, g *glossary.Glossary) (*Runner, error) {
	r := &Runner{
		cfg:      cfg,
		fsys:     fsys,
		corpus:   c,
		glossary: g,
		checker:  sqlcheck.New(),
		lesson:   lessonRules(),
		whole:    corpusRules(),
	}

	known := make(map[string]struct{}, len(r.lesson)+len(r.whole))
	for _, rl := range r.lesson {
		known[rl.name] = struct{}{}
	}
	for _, rl := range r.whole {
		known[rl.name] = struct{}{}
	}
	for name, severity := range cfg.Rules {
		if _, ok := known[name]; !ok {
			r.Close()
			return nil, fmt.Errorf("unknown lint rule %q in config", name)
		}
		if _, err := ParseSeverity(severity); err != nil {
			r.Close()
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
	}
	return r, nil
}

// Close releases the SQL checker.
func (r *Runner) Close() {
	r.checker.Close()
}

// RuleNames returns the stable names of all rules, sorted.
func (r *Runner) RuleNames() []string {
	names := make([]string, 0, len(r.lesson)+len(r.whole))
	for _, rl := range r.lesson {
		names = append(names, rl.name)
	}
	for _, rl := range r.whole {
		names = append(names, rl.name)
	}
	sort.Strings(names)
	return names
}

// severityFor applies the config override for a rule. The second return
// is false when the rule is turned off.
func (r *Runner) severityFor(name string, fallback Severity) (Severity, bool) {
	override, ok := r.cfg.Rules[name]
	if !ok {
		return fallback, true
	}
	severity := Severity(override)
	if severity == SeverityOff {
		return severity, false
	}
	return severity, true
}

// Lint runs the per-lesson rules on a single lesson. Diagnostics come back
// sorted by position.
func (r *Runner) Lint(ctx context.Context, lesson *corpus.Lesson) []Diagnostic {
	var diags []Diagnostic
	for _, rl := range r.lesson {
		severity, enabled := r.severityFor(rl.name, rl.severity)
		if !enabled {
			continue
		}
		for _, d := range rl.check(ctx, r, lesson) {
			d.Path = lesson.Path
			d.Severity = severity
			d.Rule = rl.name
			diags = append(diags, d)
		}
	}
	sortDiagnostics(diags)
	return diags
}

// LintCorpus runs every rule over every lesson, plus the corpus-wide
// rules, and returns the combined report sorted by (path, line, col).
func (r *Runner) LintCorpus(ctx context.Context) Report {
	var diags []Diagnostic
	for _, lesson := range r.corpus.Lessons {
		diags = append(diags, r.Lint(ctx, lesson)...)
	}
	for _, rl := range r.whole {
		severity, enabled := r.severityFor(rl.name, rl.severity)
		if !enabled {
			continue
		}
		for _, d := range rl.check(r) {
			d.Severity = severity
			d.Rule = rl.name
			diags = append(diags, d)
		}
	}
	sortDiagnostics(diags)
	return Report{Diagnostics: diags, Lessons: len(r.corpus.Lessons)}
}
