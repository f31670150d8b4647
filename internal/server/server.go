// Package server exposes the corpus over HTTP: a JSON API backed by the
// index and HTML pages backed by the renderer. It serves authors
// browsing their own curriculum, so everything is read-only.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tliron/commonlog"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/index"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/render"
)

type Server struct {
	app      *fiber.App
	store    *index.Store
	corpus   *corpus.Corpus
	glossary *glossary.Glossary
	renderer *render.Renderer
	log      commonlog.Logger
}

func New(store *index.Store, c *corpus.Corpus, g *glossary.Glossary) *Server {
	s := &Server{
		store:    store,
		corpus:   c,
		glossary: g,
		renderer: render.New(c, g, render.ServerScheme),
		log:      commonlog.GetLogger("server"),
	}

	s.app = fiber.New(fiber.Config{
		// The banner would bypass the logger.
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(s.logRequest)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/api/lessons", s.handleLessons)
	s.app.Get("/api/lessons/:slug", s.handleLesson)
	s.app.Get("/api/lessons/:slug/backlinks", s.handleBacklinks)
	s.app.Get("/api/search", s.handleSearch)
	s.app.Get("/lessons/:slug", s.handleLessonPage)
	s.app.Get("/glossary", s.handleGlossaryPage)
	s.app.Get("/", s.handleIndexPage)
}

// Listen serves until Shutdown is called or the listener fails.
func (s *Server) Listen(addr string) error {
	s.log.Noticef("listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// App exposes the fiber app for in-process request tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	err := c.Next()
	s.log.Debugf("%s %s -> %d", c.Method(), c.Path(), c.Response().StatusCode())
	return err
}
