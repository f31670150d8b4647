package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/importer"
)

// ImportResult describes the draft an import produced.
type ImportResult struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <url|file>",
		Short: "Draft a lesson from an HTML article",
		Long: `Fetch an HTML article and convert it into a draft lesson in the corpus
root. The draft gets synthesized frontmatter with draft: true and stays
out of rendered output until reviewed and promoted by hand.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, source string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	imp := importer.New()
	var draft *importer.Draft
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		formatter.VerboseLog("fetching %s", source)
		draft, err = imp.FromURL(cmd.Context(), source)
	} else {
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return WrapExitError(ExitCommandError, "open article", err)
		}
		defer f.Close()
		draft, err = imp.FromReader(f)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "import", err)
	}

	dest := filepath.Join(opts.Corpus, draft.FileName())
	if _, err := os.Stat(dest); err == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists, refusing to overwrite", dest))
	}
	encoded, err := draft.Encode()
	if err != nil {
		return WrapExitError(ExitCommandError, "encode draft", err)
	}
	if err := os.WriteFile(dest, encoded, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write draft", err)
	}

	if formatter.JSON() {
		return formatter.Emit(ImportResult{
			Path:  dest,
			Title: draft.FrontMatter.Title,
			Slug:  draft.FrontMatter.Slug,
		})
	}
	formatter.Textf("wrote draft %s", dest)
	return nil
}
