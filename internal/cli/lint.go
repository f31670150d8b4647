package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/lint"
)

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [lesson...]",
		Short: "Check lessons against the content rules",
		Long: `Check SQL snippets, internal links, heading structure and frontmatter
across the whole corpus, or only the named lessons. Lessons may be given
as corpus paths or slugs.

Exits 1 when any finding has error severity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, args, cmd)
		},
	}
}

func runLint(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	linter, err := lint.NewRunner(ws.cfg, ws.fsys, ws.corpus, ws.glossary)
	if err != nil {
		return WrapExitError(ExitCommandError, "build linter", err)
	}
	defer linter.Close()

	ctx := cmd.Context()
	var report lint.Report
	if len(args) == 0 {
		report = linter.LintCorpus(ctx)
	} else {
		for _, arg := range args {
			lesson, err := ws.findLesson(arg)
			if err != nil {
				return err
			}
			report.Diagnostics = append(report.Diagnostics, linter.Lint(ctx, lesson)...)
			report.Lessons++
		}
	}

	if formatter.JSON() {
		if err := formatter.Emit(report); err != nil {
			return err
		}
	} else {
		for _, d := range report.Diagnostics {
			formatter.Textf("%s", d.String())
		}
		formatter.Textf("%d lesson(s), %d error(s), %d warning(s)",
			report.Lessons, report.Count(lint.SeverityError), report.Count(lint.SeverityWarning))
	}

	if report.HasErrors() {
		return NewExitError(ExitFailure, "lint found errors")
	}
	return nil
}
