package cli

import "github.com/spf13/cobra"

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the luxsql version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := NewFormatter(rootOpts, cmd)
			if formatter.JSON() {
				return formatter.Emit(map[string]string{"version": Version})
			}
			formatter.Textf("luxsql version %s", Version)
			return nil
		},
	}
}
