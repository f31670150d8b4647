package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
)

// GlossaryEntry mirrors a glossary entry for output.
type GlossaryEntry struct {
	Term       string   `json:"term"`
	Definition string   `json:"definition"`
	Aliases    []string `json:"aliases,omitempty"`
	See        []string `json:"see,omitempty"`
}

// NewGlossaryCommand creates the glossary command group.
func NewGlossaryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Inspect the curriculum glossary",
	}
	cmd.AddCommand(newGlossaryListCommand(rootOpts))
	cmd.AddCommand(newGlossaryLookupCommand(rootOpts))
	return cmd
}

func newGlossaryListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all glossary terms",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlossaryList(rootOpts, cmd)
		},
	}
}

func newGlossaryLookupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "lookup <term>",
		Short:         "Show a term's definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlossaryLookup(rootOpts, args[0], cmd)
		},
	}
}

func loadGlossary(opts *RootOptions) (*glossary.Glossary, error) {
	fsys, _, err := corpusFS(opts)
	if err != nil {
		return nil, err
	}
	g, err := glossary.Load(fsys)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load glossary", err)
	}
	return g, nil
}

func runGlossaryList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	g, err := loadGlossary(opts)
	if err != nil {
		return err
	}

	if formatter.JSON() {
		entries := make([]GlossaryEntry, 0, g.Len())
		for _, e := range g.Entries {
			entries = append(entries, GlossaryEntry{
				Term:       e.Term,
				Definition: e.Definition,
				Aliases:    e.Aliases,
				See:        e.See,
			})
		}
		return formatter.Emit(entries)
	}

	terms := g.Terms()
	if len(terms) == 0 {
		formatter.Textf("glossary is empty")
		return nil
	}
	for _, term := range terms {
		formatter.Textf("%s", term)
	}
	return nil
}

func runGlossaryLookup(opts *RootOptions, term string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	g, err := loadGlossary(opts)
	if err != nil {
		return err
	}

	entry, ok := g.Lookup(term)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("no glossary entry for %q", term))
	}

	if formatter.JSON() {
		return formatter.Emit(GlossaryEntry{
			Term:       entry.Term,
			Definition: entry.Definition,
			Aliases:    entry.Aliases,
			See:        entry.See,
		})
	}

	formatter.Textf("%s", entry.Term)
	formatter.Textf("  %s", entry.Definition)
	if len(entry.Aliases) > 0 {
		formatter.Textf("  aliases: %s", strings.Join(entry.Aliases, ", "))
	}
	if len(entry.See) > 0 {
		formatter.Textf("  see: %s", strings.Join(entry.See, ", "))
	}
	return nil
}
