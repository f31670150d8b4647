package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/render"
)

// ExportResult reports what a static export produced.
type ExportResult struct {
	Dir   string `json:"dir"`
	Pages int    `json:"pages"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Render the corpus to a static HTML site",
		Long: `Render every published lesson, the course index and the glossary into
a directory of standalone HTML pages. Draft lessons are left out.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, args[0], cmd)
		},
	}
}

func runExport(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	renderer := render.New(ws.corpus, ws.glossary, render.FileScheme)
	if err := renderer.Export(dir); err != nil {
		return WrapExitError(ExitCommandError, "export", err)
	}

	pages := 1 // index
	for _, lesson := range ws.corpus.Lessons {
		if !lesson.FrontMatter.Draft {
			pages++
		}
	}
	if ws.glossary.Len() > 0 {
		pages++
	}

	if formatter.JSON() {
		return formatter.Emit(ExportResult{Dir: dir, Pages: pages})
	}
	formatter.Textf("exported %d page(s) to %s", pages, dir)
	return nil
}
