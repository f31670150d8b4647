package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/graph"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
)

// NewIndexCommand groups the index maintenance subcommands.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Maintain the sqlite index",
	}
	cmd.AddCommand(newIndexSyncCommand(rootOpts))
	cmd.AddCommand(newIndexStatsCommand(rootOpts))
	return cmd
}

func newIndexSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Bring the index up to date with the corpus",
		Long: `Scan the corpus and reindex lessons whose content changed, removing
records of deleted files. Unchanged lessons are skipped by modification
time and checksum.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexSync(rootOpts, cmd)
		},
	}
}

func runIndexSync(opts *RootOptions, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	formatter.VerboseLog("index at %s", opts.DBPath())
	syncer := index.NewSyncer(ws.fsys, store, graph.New(), ws.cfg.Ignore)
	report, err := syncer.Sync(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "sync", err)
	}

	if formatter.JSON() {
		return formatter.Emit(report)
	}
	formatter.Textf("%s", report.String())
	return nil
}

func newIndexStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show what the index currently holds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexStats(rootOpts, cmd)
		},
	}
}

func runIndexStats(opts *RootOptions, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return WrapExitError(ExitCommandError, "read stats", err)
	}

	if formatter.JSON() {
		return formatter.Emit(stats)
	}
	formatter.Textf("lessons:  %d", stats.Lessons)
	formatter.Textf("sections: %d", stats.Sections)
	formatter.Textf("snippets: %d", stats.Snippets)
	formatter.Textf("links:    %d", stats.Links)
	return nil
}
