package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/runner"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	rowLimit := 0
	cmd := &cobra.Command{
		Use:   "run [lesson...]",
		Short: "Execute the SQL examples of lessons",
		Long: `Execute every runnable sql block against a fresh in-memory SQLite
session per lesson. Blocks marked norun, tagged with a non-portable
dialect, or written in another language are skipped and reported as
such.

Exits 1 when any statement fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExamples(rootOpts, args, rowLimit, cmd)
		},
	}
	cmd.Flags().IntVar(&rowLimit, "row-limit", 0, "rows kept per query (default from luxsql.yaml)")
	return cmd
}

func runExamples(opts *RootOptions, args []string, rowLimit int, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	var targets []*corpus.Lesson
	if len(args) == 0 {
		targets = ws.corpus.Lessons
	} else {
		for _, arg := range args {
			lesson, err := ws.findLesson(arg)
			if err != nil {
				return err
			}
			targets = append(targets, lesson)
		}
	}

	if rowLimit <= 0 {
		rowLimit = ws.cfg.RowLimit
	}
	r := runner.New(rowLimit)
	defer r.Close()

	ctx := cmd.Context()
	reports := make([]*runner.Report, 0, len(targets))
	failed := false
	for _, lesson := range targets {
		report, err := r.RunLesson(ctx, lesson)
		if err != nil {
			return WrapExitError(ExitCommandError, "run "+lesson.Path, err)
		}
		if report.Failed > 0 {
			failed = true
		}
		reports = append(reports, report)
	}

	if formatter.JSON() {
		if err := formatter.Emit(reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			formatter.Textf("%s: %d ran, %d skipped, %d failed",
				report.Lesson, report.Ran, report.Skipped, report.Failed)
			for _, block := range report.Blocks {
				if block.Skipped {
					formatter.VerboseLog("  %s:%d skipped (%s)", report.Lesson, block.Line, block.SkipReason)
					continue
				}
				for _, stmt := range block.Statements {
					if stmt.Err != "" {
						formatter.Textf("  %s:%d: %s", report.Lesson, stmt.Line, stmt.Err)
					}
				}
			}
		}
	}

	if failed {
		return NewExitError(ExitFailure, "examples failed")
	}
	return nil
}
