// Package cli implements the luxsql command line interface. Every
// command works against a corpus root given by --corpus and renders its
// result as text or JSON through the output formatter.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
)

// Version is stamped by the build via ldflags.
var Version = "(dev) v0.0.0"

// RootOptions holds the global flags shared by every command.
type RootOptions struct {
	Corpus  string
	DB      string
	Format  string
	Verbose bool
	LogFile string
}

// DBPath returns the index location, defaulting under the corpus root.
func (o *RootOptions) DBPath() string {
	if o.DB != "" {
		return o.DB
	}
	return filepath.Join(o.Corpus, corpus.StateDir, "index.db")
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "luxsql",
		Short: "Toolchain for a markdown SQL curriculum",
		Long: `luxsql lints, indexes, runs and renders a corpus of markdown SQL
lessons, and serves it to editors and browsers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Corpus, "corpus", ".", "corpus root directory")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "index database path (default <corpus>/.luxsql/index.db)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to a file instead of stderr")

	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewOutlineCommand(opts))
	cmd.AddCommand(NewLinksCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewGlossaryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLSPCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging sets commonlog up once for the process. Verbosity 2
// turns on debug output from every scoped logger.
func configureLogging(opts *RootOptions) {
	verbosity := 0
	if opts.Verbose {
		verbosity = 2
	}
	var path *string
	if opts.LogFile != "" {
		path = &opts.LogFile
	}
	commonlog.Configure(verbosity, path)
}
