package cli

import (
	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Long: `Run the language server for editors. The workspace root comes from the
client's initialize request, not from --corpus. Stdout carries the
protocol, so logs go to stderr or to --log-file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := lsp.NewServer()
			if err != nil {
				return WrapExitError(ExitCommandError, "start language server", err)
			}
			if err := srv.RunStdio(); err != nil {
				return WrapExitError(ExitCommandError, "language server", err)
			}
			return nil
		},
	}
}
