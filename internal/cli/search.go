package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	limit := 10
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over indexed lessons",
		Long: `Search lesson titles, topics and bodies. The query uses FTS MATCH
syntax, so a bare word list means AND and quoted phrases match exactly.
Run ` + "`luxsql index sync`" + ` first; search reads the index, not the files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], limit, cmd)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}

func runSearch(opts *RootOptions, query string, limit int, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(query, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "search", err)
	}

	if formatter.JSON() {
		if results == nil {
			results = []index.SearchResult{}
		}
		return formatter.Emit(results)
	}
	if len(results) == 0 {
		formatter.Textf("no matches")
		return nil
	}
	for _, r := range results {
		formatter.Textf("%s: %s", r.Path, r.Title)
		if r.Snippet != "" {
			formatter.Textf("    %s", r.Snippet)
		}
	}
	return nil
}
