package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/graph"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corpus over HTTP",
		Long: `Start an HTTP server exposing the corpus as rendered pages and a small
JSON API. The index is synced once at startup so search and backlinks
reflect the corpus on disk.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, addr, cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

func runServe(opts *RootOptions, addr string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	if ws.embedded {
		formatter.VerboseLog("no corpus on disk, serving the embedded curriculum")
	}
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	syncer := index.NewSyncer(ws.fsys, store, graph.New(), ws.cfg.Ignore)
	report, err := syncer.Sync(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "sync index", err)
	}
	formatter.VerboseLog("index: %s", report)

	srv := server.New(store, ws.corpus, ws.glossary)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		formatter.VerboseLog("shutting down")
		_ = srv.Shutdown()
	}()

	formatter.Textf("serving corpus on %s", addr)
	if err := srv.Listen(addr); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}
	return nil
}
