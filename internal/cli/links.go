package cli

import (
	"github.com/spf13/cobra"
)

// Link is one resolved link edge in the links output.
type Link struct {
	Path     string `json:"path"`
	Fragment string `json:"fragment,omitempty"`
	Line     int    `json:"line"`
}

// Links lists the link neighborhood of one lesson.
type Links struct {
	Lesson  string `json:"lesson"`
	Forward []Link `json:"forward"`
	Back    []Link `json:"back"`
}

// NewLinksCommand creates the links command.
func NewLinksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links <lesson>",
		Short: "Show where a lesson links to and what links to it",
		Long: `Show the outgoing links of a lesson and the lessons linking back to
it, as recorded by the index. Run ` + "`luxsql index sync`" + ` first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(rootOpts, args[0], cmd)
		},
	}
}

func runLinks(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	lesson, err := ws.findLesson(arg)
	if err != nil {
		return err
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	forward, err := store.LinksFrom(lesson.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read links", err)
	}
	back, err := store.LinksTo(lesson.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read backlinks", err)
	}

	links := Links{
		Lesson:  lesson.Path,
		Forward: make([]Link, 0, len(forward)),
		Back:    make([]Link, 0, len(back)),
	}
	for _, record := range forward {
		links.Forward = append(links.Forward, Link{
			Path:     record.TargetPath,
			Fragment: record.Fragment,
			Line:     record.Line,
		})
	}
	for _, record := range back {
		links.Back = append(links.Back, Link{
			Path:     record.SourcePath,
			Fragment: record.Fragment,
			Line:     record.Line,
		})
	}

	if formatter.JSON() {
		return formatter.Emit(links)
	}
	formatter.Textf("forward:")
	printLinks(formatter, links.Forward, true)
	formatter.Textf("back:")
	printLinks(formatter, links.Back, false)
	return nil
}

// printLinks lists one direction of the neighborhood. A back edge's
// fragment names an anchor in this lesson, not in the printed source, so
// it is only appended on forward edges.
func printLinks(formatter *OutputFormatter, links []Link, withFragment bool) {
	if len(links) == 0 {
		formatter.Textf("  (none)")
		return
	}
	for _, link := range links {
		target := link.Path
		if withFragment && link.Fragment != "" {
			target += "#" + link.Fragment
		}
		formatter.Textf("  %s (line %d)", target, link.Line)
	}
}
