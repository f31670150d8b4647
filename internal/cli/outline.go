package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// OutlineSection is one heading in the outline output.
type OutlineSection struct {
	Anchor string `json:"anchor"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Line   int    `json:"line"`
}

// Outline is the heading tree of one lesson.
type Outline struct {
	Path     string           `json:"path"`
	Slug     string           `json:"slug"`
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// NewOutlineCommand creates the outline command.
func NewOutlineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "outline <lesson>",
		Short:         "Print the heading tree of a lesson",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutline(rootOpts, args[0], cmd)
		},
	}
}

func runOutline(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := NewFormatter(opts, cmd)

	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	lesson, err := ws.findLesson(arg)
	if err != nil {
		return err
	}

	outline := Outline{
		Path:  lesson.Path,
		Slug:  lesson.Slug(),
		Title: lesson.Title(),
	}
	for _, h := range lesson.Doc.Headings {
		outline.Sections = append(outline.Sections, OutlineSection{
			Anchor: h.Anchor,
			Title:  h.Text,
			Level:  h.Level,
			Line:   lesson.FileLine(h.Line),
		})
	}

	if formatter.JSON() {
		return formatter.Emit(outline)
	}
	for _, section := range outline.Sections {
		indent := strings.Repeat("  ", section.Level-1)
		formatter.Textf("%4d  %s%s (#%s)", section.Line, indent, section.Title, section.Anchor)
	}
	return nil
}
