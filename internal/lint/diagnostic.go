// Package lint checks a corpus against the content rules: SQL snippets must
// parse, internal links must resolve, heading structure must be sound, and
// frontmatter must be complete. Findings are positioned diagnostics, never
// process failures; a lesson that breaks every rule still yields a full
// report.
package lint

import (
	"fmt"
	"sort"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	// SeverityOff disables a rule via configuration.
	SeverityOff Severity = "off"
)

// ParseSeverity validates a configured severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo, SeverityOff:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Diagnostic is a single finding. Line is 1-based and Col 0-based, both
// relative to the source file (frontmatter included).
type Diagnostic struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Col      int      `json:"col"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", d.Path, d.Line, d.Col, d.Severity, d.Message, d.Rule)
}

// Report is the outcome of linting one or more lessons.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Lessons     int          `json:"lessons"`
}

// HasErrors reports whether any diagnostic has error severity.
func (r Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func (r Report) Count(severity Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Path != diags[j].Path {
			return diags[i].Path < diags[j].Path
		}
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		if diags[i].Col != diags[j].Col {
			return diags[i].Col < diags[j].Col
		}
		return diags[i].Rule < diags[j].Rule
	})
}
