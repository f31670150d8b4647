package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	stats, err := s.store.Stats()
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	return c.JSON(Health{Status: "ok", Lessons: stats.Lessons})
}

func (s *Server) handleLessons(c *fiber.Ctx) error {
	records, err := s.store.ListLessons()
	if err != nil {
		return fmt.Errorf("list lessons: %w", err)
	}
	out := make([]LessonSummary, 0, len(records))
	for _, record := range records {
		out = append(out, summarize(record))
	}
	return c.JSON(out)
}

func (s *Server) handleLesson(c *fiber.Ctx) error {
	record, err := s.lessonBySlug(c.Params("slug"))
	if err != nil {
		return err
	}

	sections, err := s.store.Sections(record.Path)
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}
	snippets, err := s.store.Snippets(record.Path)
	if err != nil {
		return fmt.Errorf("load snippets: %w", err)
	}

	detail := LessonDetail{
		LessonSummary: summarize(*record),
		Path:          record.Path,
		Dialect:       record.Dialect,
		Summary:       record.Summary,
		Sections:      make([]Section, 0, len(sections)),
		Snippets:      make([]Snippet, 0, len(snippets)),
	}
	for _, section := range sections {
		detail.Sections = append(detail.Sections, Section{
			Anchor: section.Anchor,
			Title:  section.Title,
			Level:  section.Level,
			Line:   section.Line,
		})
	}
	for _, snippet := range snippets {
		detail.Snippets = append(detail.Snippets, Snippet{
			Ord:       snippet.Ord,
			Lang:      snippet.Lang,
			Dialect:   snippet.Dialect,
			NoRun:     snippet.NoRun,
			StartLine: snippet.StartLine,
		})
	}
	return c.JSON(detail)
}

func (s *Server) handleBacklinks(c *fiber.Ctx) error {
	record, err := s.lessonBySlug(c.Params("slug"))
	if err != nil {
		return err
	}

	links, err := s.store.LinksTo(record.Path)
	if err != nil {
		return fmt.Errorf("load backlinks: %w", err)
	}
	out := make([]Backlink, 0, len(links))
	for _, link := range links {
		backlink := Backlink{
			SourcePath: link.SourcePath,
			Fragment:   link.Fragment,
			Line:       link.Line,
		}
		if source, ok := s.corpus.ByPath(link.SourcePath); ok {
			backlink.SourceSlug = source.Slug()
			backlink.SourceTitle = source.Title()
		}
		out = append(out, backlink)
	}
	return c.JSON(out)
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}
	results, err := s.store.Search(query, c.QueryInt("limit", 10))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return c.JSON(results)
}

func (s *Server) handleLessonPage(c *fiber.Ctx) error {
	slug := c.Params("slug")
	lesson, ok := s.corpus.BySlug(slug)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no lesson with slug %q", slug))
	}
	html, err := s.renderer.LessonHTML(lesson)
	if err != nil {
		return err
	}
	return s.sendHTML(c, html)
}

func (s *Server) handleGlossaryPage(c *fiber.Ctx) error {
	if s.glossary == nil || s.glossary.Len() == 0 {
		return fiber.NewError(fiber.StatusNotFound, "the corpus has no glossary")
	}
	html, err := s.renderer.GlossaryHTML()
	if err != nil {
		return err
	}
	return s.sendHTML(c, html)
}

func (s *Server) handleIndexPage(c *fiber.Ctx) error {
	html, err := s.renderer.IndexHTML()
	if err != nil {
		return err
	}
	return s.sendHTML(c, html)
}

func (s *Server) lessonBySlug(slug string) (*index.LessonRecord, error) {
	record, err := s.store.GetLessonBySlug(slug)
	if errors.Is(err, index.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no lesson with slug %q", slug))
	}
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	return record, nil
}

func (s *Server) sendHTML(c *fiber.Ctx, html string) error {
	c.Type("html", "utf-8")
	return c.SendString(html)
}
