package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(httprate.Limit(500, time.Minute))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(s.cacheControl)

	r.Mount("/static", http.FileServer(s.assets))

	r.Handle("/robots.txt", s.serveFile("static/robots.txt", "text/plain; charset=utf-8"))
	r.Handle("/favicon.ico", s.serveFile("static/images/favicon.svg", "image/svg+xml"))

	if s.cfg.Analyze {
		r.Mount("/debug", middleware.Profiler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Get("/test-sanity", s.HandleAPITest)
		r.Get("/preview", s.HandlePreview)
		r.Get("/preview/exit", s.HandleExitPreview)
		r.Post("/revalidate", s.HandleRevalidate)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.WithSettings)

		r.Get("/", s.HandleIndex)
		r.Get("/landing", s.HandleIndex)
		r.Get("/landing/{slug}", s.HandleLanding)
		r.Get("/splash", s.HandleSplash)

		r.Get("/blog", s.HandleBlog)
		r.Get("/blog/category/{category}", s.HandleCategory)
		r.Get("/blog/{slug}", s.HandlePost)

		r.Get("/authors", s.HandleAuthors)
		r.Get("/authors/{slug}", s.HandleAuthor)

		r.Get("/search", s.HandleSearch)
		r.Get("/test-sanity", s.HandleTestPage)

		r.NotFound(s.HandleNotFound)
	})

	return r
}
