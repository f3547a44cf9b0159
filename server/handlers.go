package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/page"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmplFunc(w, name, data); err != nil {
		slog.Error("Failed to render template", slog.String("template", name), "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	s.render(w, status, "error.html", s.pages.Error(s.site(r), status))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func (s *Server) logFetchError(r *http.Request, what string, err error) {
	attrs := []any{slog.String("path", r.URL.Path), "error", err}
	if errors.Is(err, cms.ErrUnauthorized) {
		slog.Error("CMS rejected credentials while fetching "+what, attrs...)
		return
	}
	slog.Error("Failed to fetch "+what, attrs...)
}

func (s *Server) store(r *http.Request) Content {
	return s.content(previewFrom(r.Context()))
}

func (s *Server) site(r *http.Request) page.Site {
	return s.pages.Site(settingsFrom(r.Context())).WithPreview(previewFrom(r.Context()))
}

func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	home := s.store(r).Home(ctx, settingsFrom(ctx))
	site := s.pages.Site(home.Settings).WithPreview(previewFrom(ctx))

	view, ok := s.pages.Landing(site, home.Landing, home.Featured)
	if !ok {
		s.render(w, http.StatusOK, "fallback.html", s.pages.Fallback(site))
		return
	}
	s.render(w, http.StatusOK, "index.html", view)
}

func (s *Server) HandleLanding(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	lp, err := s.store(r).LandingPageBySlug(r.Context(), slug)
	if err != nil {
		s.logFetchError(r, "landing page", err)
	}

	view, ok := s.pages.Landing(s.site(r), lp, nil)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	s.render(w, http.StatusOK, "index.html", view)
}

func (s *Server) HandleSplash(w http.ResponseWriter, r *http.Request) {
	splash, err := s.store(r).SplashScreen(r.Context())
	if err != nil {
		s.logFetchError(r, "splash screen", err)
	}

	view, ok := s.pages.Splash(s.site(r), splash)
	if !ok {
		http.Redirect(w, r, view.RedirectTo, http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "splash.html", view)
}

func (s *Server) HandleBlog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := s.store(r)
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))

	var (
		posts *content.Page[models.BlogPost]
		cats  []string
		g     errgroup.Group
	)
	g.Go(func() error {
		p, err := store.BlogPostsPage(ctx, pageNum, content.DefaultPageLimit)
		if err != nil {
			s.logFetchError(r, "blog posts", err)
			return nil
		}
		posts = p
		return nil
	})
	g.Go(func() error {
		c, err := store.Categories(ctx)
		if err != nil {
			s.logFetchError(r, "categories", err)
			return nil
		}
		cats = c
		return nil
	})
	_ = g.Wait()

	s.render(w, http.StatusOK, "blog.html", s.pages.BlogList(s.site(r), posts, cats))
}

func (s *Server) HandleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil || strings.TrimSpace(category) == "" {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	posts, err := s.store(r).BlogPostsByCategory(r.Context(), category)
	if err != nil {
		s.logFetchError(r, "category posts", err)
	}
	s.render(w, http.StatusOK, "blog.html", s.pages.CategoryList(s.site(r), category, posts))
}

func (s *Server) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := s.store(r)

	post, err := store.BlogPost(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.logFetchError(r, "blog post", err)
	}
	if post == nil {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	related, err := store.RelatedPosts(ctx, post.ID, post.Categories)
	if err != nil {
		s.logFetchError(r, "related posts", err)
	}

	view, _ := s.pages.Post(s.site(r), post, related)
	s.render(w, http.StatusOK, "post.html", view)
}

func (s *Server) HandleAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.store(r).Authors(r.Context())
	if err != nil {
		s.logFetchError(r, "authors", err)
	}
	s.render(w, http.StatusOK, "authors.html", s.pages.Authors(s.site(r), authors))
}

func (s *Server) HandleAuthor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := s.store(r)

	author, err := store.Author(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.logFetchError(r, "author", err)
	}
	if author == nil {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	posts, err := store.AuthorPosts(ctx, author.ID)
	if err != nil {
		s.logFetchError(r, "author posts", err)
	}

	view, _ := s.pages.AuthorPage(s.site(r), author, posts)
	s.render(w, http.StatusOK, "author.html", view)
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var results []models.SearchResult
	if query != "" {
		var err error
		results, err = s.store(r).Search(r.Context(), query)
		if err != nil {
			s.logFetchError(r, "search results", err)
		}
	}
	s.render(w, http.StatusOK, "search.html", s.pages.Search(s.site(r), query, results))
}

// HandleTestPage shows what the landing query returns, every landing page
// stored, and documents that fail validation.
func (s *Server) HandleTestPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := s.store(r)

	debug, err := store.Debug(ctx)
	if err != nil {
		s.logFetchError(r, "debug data", err)
	}

	violations := map[string][]schema.Violation{}
	if debug != nil {
		for _, d := range schema.Types() {
			found, err := store.Violations(ctx, d.Name)
			if err != nil {
				s.logFetchError(r, d.Name+" documents", err)
				continue
			}
			for id, vs := range found {
				violations[id] = append(violations[id], vs...)
			}
		}
	}

	s.render(w, http.StatusOK, "test-sanity.html", s.pages.Debug(s.site(r), debug, violations))
}

type apiTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*content.Diagnostics
	Error string `json:"error,omitempty"`
}

func (s *Server) HandleAPITest(w http.ResponseWriter, r *http.Request) {
	d, err := s.content(s.isPreview(r)).Diagnostics(r.Context())
	if err != nil {
		slog.Error("Sanity integration test failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, apiTestResponse{
			Message: "Sanity integration test failed",
			Error:   err.Error(),
		})
		return
	}

	for _, warning := range d.Warnings {
		slog.Warn(warning)
	}
	s.writeJSON(w, http.StatusOK, apiTestResponse{
		Success:     true,
		Message:     "Sanity integration working properly!",
		Diagnostics: d,
	})
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HandlePreview starts a draft preview session when the shared secret
// matches, then sends the editor to the page they asked for.
func (s *Server) HandlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !checkSecret(s.cfg.PreviewSecretHash, q.Get("secret")) {
		slog.Warn("Rejected preview request", slog.String("remote_addr", r.RemoteAddr))
		s.writeJSON(w, http.StatusUnauthorized, apiResponse{Message: "Invalid preview secret"})
		return
	}

	token := s.createSession()
	http.SetCookie(w, &http.Cookie{
		Name:     previewCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, page.LocalPath(q.Get("redirect"), "/"), http.StatusSeeOther)
}

func (s *Server) HandleExitPreview(w http.ResponseWriter, r *http.Request) {
	s.deleteSession(s.getSessionFromRequest(r))

	http.SetCookie(w, &http.Cookie{
		Name:     previewCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		MaxAge:   -1,
	})

	http.Redirect(w, r, page.LocalPath(r.URL.Query().Get("redirect"), "/"), http.StatusSeeOther)
}

// HandleRevalidate is the publish webhook: it drops cached published content
// so the next request reads fresh documents.
func (s *Server) HandleRevalidate(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}
	if !checkSecret(s.cfg.WebhookSecretHash, secret) {
		slog.Warn("Rejected revalidate request", slog.String("remote_addr", r.RemoteAddr))
		s.writeJSON(w, http.StatusUnauthorized, apiResponse{Message: "Invalid webhook secret"})
		return
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	slog.Info("Invalidated content cache")

	s.writeJSON(w, http.StatusOK, struct {
		apiResponse
		Now int64 `json:"now"`
	}{apiResponse{Success: true, Message: "revalidated"}, time.Now().UnixMilli()})
}

func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound)
}

func (s *Server) serveFile(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.assets.Open(path)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer func() { _ = file.Close() }()
		w.Header().Set("Content-Type", contentType)
		_, _ = io.Copy(w, file)
	}
}

func (s *Server) cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}
