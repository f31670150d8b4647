// Package render turns the corpus into browsable HTML: one page per
// lesson, an index, and a glossary page generated from the glossary
// file. Pages share a single embedded layout; .md links are rewritten
// through a URL scheme so the same pages work as a static export and as
// server responses.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

//go:embed layout.html
var layoutHTML string

var layout = template.Must(template.New("layout").Parse(layoutHTML))

// DefaultCourseTitle labels pages when no title is configured.
const DefaultCourseTitle = "Advanced SQL Techniques"

// Scheme decides the href a page is reachable under.
type Scheme struct {
	Lesson   func(slug string) string
	Glossary string
	Index    string
}

var (
	// FileScheme names pages the way Export writes them.
	FileScheme = Scheme{
		Lesson:   func(slug string) string { return slug + ".html" },
		Glossary: "glossary.html",
		Index:    "index.html",
	}

	// ServerScheme names pages the way the HTTP server routes them.
	ServerScheme = Scheme{
		Lesson:   func(slug string) string { return "/lessons/" + slug },
		Glossary: "/glossary",
		Index:    "/",
	}
)

type navItem struct {
	Href  string
	Title string
}

type page struct {
	Course string
	Title  string
	Home   string
	Nav    []navItem
	Active string
	Source string
	Body   template.HTML
}

// Renderer produces HTML pages for one corpus. Draft lessons are left
// out of the navigation and the export.
type Renderer struct {
	corpus   *corpus.Corpus
	glossary *glossary.Glossary
	scheme   Scheme
	course   string
	nav      []navItem
}

func New(c *corpus.Corpus, g *glossary.Glossary, scheme Scheme) *Renderer {
	r := &Renderer{corpus: c, glossary: g, scheme: scheme, course: DefaultCourseTitle}
	for _, lesson := range c.Lessons {
		if lesson.FrontMatter.Draft {
			continue
		}
		r.nav = append(r.nav, navItem{Href: scheme.Lesson(lesson.Slug()), Title: lesson.Title()})
	}
	if g != nil && g.Len() > 0 {
		r.nav = append(r.nav, navItem{Href: scheme.Glossary, Title: "Glossary"})
	}
	return r
}

// LessonHTML renders one lesson as a complete page.
func (r *Renderer) LessonHTML(lesson *corpus.Lesson) (string, error) {
	body, err := markdown.RenderWith(lesson.Body, r.rewriter(lesson))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", lesson.Path, err)
	}
	return r.renderPage(page{
		Course: r.course,
		Title:  lesson.Title(),
		Nav:    r.nav,
		Active: r.scheme.Lesson(lesson.Slug()),
		Source: lesson.Path,
		Body:   template.HTML(body),
	})
}

// IndexHTML renders the course index page.
func (r *Renderer) IndexHTML() (string, error) {
	var b strings.Builder
	b.WriteString("# " + r.course + "\n\n")
	b.WriteString("A lesson-by-lesson course on the SQL that comes after the basics.\n\n")
	for _, lesson := range r.corpus.Lessons {
		if lesson.FrontMatter.Draft {
			continue
		}
		b.WriteString(fmt.Sprintf("1. [%s](%s)", lesson.Title(), r.scheme.Lesson(lesson.Slug())))
		if summary := lesson.FrontMatter.Summary; summary != "" {
			b.WriteString(" — " + summary)
		}
		b.WriteString("\n")
	}
	if r.glossary != nil && r.glossary.Len() > 0 {
		b.WriteString(fmt.Sprintf("\nShared vocabulary lives in the [glossary](%s).\n", r.scheme.Glossary))
	}

	body, err := markdown.Render([]byte(b.String()))
	if err != nil {
		return "", fmt.Errorf("render index: %w", err)
	}
	return r.renderPage(page{
		Course: r.course,
		Nav:    r.nav,
		Active: r.scheme.Index,
		Body:   template.HTML(body),
	})
}

// GlossaryHTML renders the glossary page.
func (r *Renderer) GlossaryHTML() (string, error) {
	body, err := markdown.Render([]byte(GlossaryMarkdown(r.glossary)))
	if err != nil {
		return "", fmt.Errorf("render glossary: %w", err)
	}
	return r.renderPage(page{
		Course: r.course,
		Title:  "Glossary",
		Nav:    r.nav,
		Active: r.scheme.Glossary,
		Body:   template.HTML(body),
	})
}

// Export writes the whole site into dir, creating it as needed. File
// names follow FileScheme, so a Renderer meant for export should be
// built with it.
func (r *Renderer) Export(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	for _, lesson := range r.corpus.Lessons {
		if lesson.FrontMatter.Draft {
			continue
		}
		html, err := r.LessonHTML(lesson)
		if err != nil {
			return err
		}
		if err := writeFile(dir, lesson.Slug()+".html", html); err != nil {
			return err
		}
	}

	html, err := r.IndexHTML()
	if err != nil {
		return err
	}
	if err := writeFile(dir, "index.html", html); err != nil {
		return err
	}

	if r.glossary != nil && r.glossary.Len() > 0 {
		html, err := r.GlossaryHTML()
		if err != nil {
			return err
		}
		if err := writeFile(dir, "glossary.html", html); err != nil {
			return err
		}
	}
	return nil
}

// rewriter maps a lesson's internal destinations onto page URLs.
// Destinations that do not resolve are left alone; the linter owns
// complaining about those.
func (r *Renderer) rewriter(lesson *corpus.Lesson) func(string) string {
	return func(dest string) string {
		if dest == "" || dest[0] == '#' || strings.Contains(dest, "://") || strings.HasPrefix(dest, "//") {
			return dest
		}
		target := dest
		fragment := ""
		if i := strings.IndexByte(dest, '#'); i >= 0 {
			target, fragment = dest[:i], dest[i:]
		}
		resolved, err := corpus.ResolveTarget(lesson.Path, target)
		if err != nil {
			return dest
		}
		if resolved == glossary.VirtualPath {
			return r.scheme.Glossary + fragment
		}
		if l, ok := r.corpus.ByPath(resolved); ok {
			return r.scheme.Lesson(l.Slug()) + fragment
		}
		return dest
	}
}

// GlossaryMarkdown builds the glossary page source. Each term becomes a
// level-two heading, so its anchor matches glossary.Entry.Anchor and the
// glossary.md links used by lessons keep working after the rewrite.
func GlossaryMarkdown(g *glossary.Glossary) string {
	var b strings.Builder
	b.WriteString("# Glossary\n")
	for _, entry := range g.Entries {
		b.WriteString("\n## " + entry.Term + "\n\n")
		b.WriteString(strings.TrimSpace(entry.Definition) + "\n")
		if len(entry.Aliases) > 0 {
			b.WriteString("\nAlso known as: " + strings.Join(entry.Aliases, ", ") + ".\n")
		}
		if len(entry.See) > 0 {
			var refs []string
			for _, see := range entry.See {
				refs = append(refs, fmt.Sprintf("[%s](#%s)", see, markdown.Slug(see)))
			}
			b.WriteString("\nSee also: " + strings.Join(refs, ", ") + ".\n")
		}
	}
	return b.String()
}

func (r *Renderer) renderPage(data page) (string, error) {
	data.Home = r.scheme.Index
	var b strings.Builder
	if err := layout.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute layout: %w", err)
	}
	return b.String(), nil
}

func writeFile(dir, name, content string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
