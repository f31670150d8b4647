package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/sqlcheck"
)

// Dialects the bundled session can honestly execute. Everything else is
// shown, not run.
var runnableDialects = map[string]struct{}{
	"":       {},
	"ansi":   {},
	"sqlite": {},
}

// StatementOutcome is the result of one statement. Exactly one of Result
// and Err is meaningful; plain DDL and DML fill RowsAffected.
type StatementOutcome struct {
	Text         string  `json:"text"`
	Line         int     `json:"line"`
	Result       *Result `json:"result,omitempty"`
	RowsAffected int64   `json:"rows_affected,omitempty"`
	Err          string  `json:"error,omitempty"`
}

// BlockResult is the outcome of one fenced block.
type BlockResult struct {
	Ord        int                `json:"ord"`
	Line       int                `json:"line"`
	Dialect    string             `json:"dialect,omitempty"`
	Skipped    bool               `json:"skipped,omitempty"`
	SkipReason string             `json:"skip_reason,omitempty"`
	Failed     bool               `json:"failed,omitempty"`
	Statements []StatementOutcome `json:"statements,omitempty"`
}

// Report is the outcome of running one lesson.
type Report struct {
	Lesson  string        `json:"lesson"`
	Blocks  []BlockResult `json:"blocks"`
	Ran     int           `json:"ran"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
}

// Runner walks a lesson's blocks through one session. Not safe for
// concurrent use; it owns a statement splitter.
type Runner struct {
	newSession func() (Session, error)
	splitter   *sqlcheck.Checker
	rowLimit   int
}

// New builds a runner over in-memory SQLite sessions. rowLimit caps the
// rows kept per query; <= 0 keeps everything.
func New(rowLimit int) *Runner {
	return NewWithSession(NewSQLiteSession, rowLimit)
}

// NewWithSession builds a runner with a custom session factory.
func NewWithSession(factory func() (Session, error), rowLimit int) *Runner {
	return &Runner{
		newSession: factory,
		splitter:   sqlcheck.New(),
		rowLimit:   rowLimit,
	}
}

func (r *Runner) Close() {
	r.splitter.Close()
}

// Runnable reports whether a block is executable by the bundled session,
// and the reason when it is not.
func Runnable(block markdown.CodeBlock) (bool, string) {
	if block.Lang != "sql" {
		return false, "not sql"
	}
	if block.HasAttr("norun") {
		return false, "marked norun"
	}
	if _, ok := runnableDialects[block.Dialect()]; !ok {
		return false, fmt.Sprintf("dialect %s", block.Dialect())
	}
	if strings.TrimSpace(block.Content) == "" {
		return false, "empty"
	}
	return true, ""
}

// RunLesson executes every runnable block of the lesson in order against
// a fresh session. Statement failures are recorded, not fatal: later
// blocks still run, which tells the author everything broken at once.
func (r *Runner) RunLesson(ctx context.Context, lesson *corpus.Lesson) (*Report, error) {
	session, err := r.newSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	report := &Report{Lesson: lesson.Path}
	for i, block := range lesson.Doc.Blocks {
		result := BlockResult{
			Ord:     i,
			Line:    lesson.FileLine(blockLine(block)),
			Dialect: block.Dialect(),
		}

		if ok, reason := Runnable(block); !ok {
			result.Skipped = true
			result.SkipReason = reason
			report.Skipped++
			report.Blocks = append(report.Blocks, result)
			continue
		}

		statements := r.split(ctx, block)
		for _, stmt := range statements {
			outcome := r.runStatement(ctx, session, stmt, lesson, block)
			result.Statements = append(result.Statements, outcome)
			// Later statements in a block usually build on the failed
			// one, so stop the block and move on to the next example.
			if outcome.Err != "" {
				result.Failed = true
				break
			}
		}

		if result.Failed {
			report.Failed++
		} else {
			report.Ran++
		}
		report.Blocks = append(report.Blocks, result)
	}
	return report, nil
}

// split divides a block into statements on grammar boundaries, falling
// back to the whole block when the grammar finds none.
func (r *Runner) split(ctx context.Context, block markdown.CodeBlock) []sqlcheck.Statement {
	statements, err := r.splitter.Statements(ctx, []byte(block.Content))
	if err == nil && len(statements) > 0 {
		return statements
	}
	if strings.TrimSpace(block.Content) == "" {
		return nil
	}
	return []sqlcheck.Statement{{Text: strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(block.Content), ";")), StartLine: 1}}
}

func (r *Runner) runStatement(ctx context.Context, session Session, stmt sqlcheck.Statement, lesson *corpus.Lesson, block markdown.CodeBlock) StatementOutcome {
	outcome := StatementOutcome{
		Text: stmt.Text,
		Line: lesson.FileLine(block.StartLine + stmt.StartLine - 1),
	}

	if returnsRows(stmt.Text) {
		result, err := session.Query(ctx, stmt.Text, r.rowLimit)
		if err != nil {
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Result = result
		return outcome
	}

	affected, err := session.Exec(ctx, stmt.Text)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.RowsAffected = affected
	return outcome
}

// returnsRows classifies a statement by its leading keyword.
func returnsRows(stmt string) bool {
	head := strings.ToUpper(stmt)
	for _, prefix := range []string{"SELECT", "WITH", "VALUES", "PRAGMA", "EXPLAIN"} {
		if strings.HasPrefix(head, prefix) {
			return true
		}
	}
	return false
}

func blockLine(block markdown.CodeBlock) int {
	if block.FenceLine > 0 {
		return block.FenceLine
	}
	return block.StartLine
}
