package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/page"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

type ExecuteTemplateFunc func(wr io.Writer, name string, data any) error

// Content is the read side of the CMS the handlers use.
type Content interface {
	Home(ctx context.Context, settings *models.Settings) *content.Home
	Settings(ctx context.Context) (*models.Settings, error)
	LandingPageBySlug(ctx context.Context, slug string) (*models.LandingPage, error)
	SplashScreen(ctx context.Context) (*models.SplashScreen, error)
	BlogPostsPage(ctx context.Context, page, limit int) (*content.Page[models.BlogPost], error)
	BlogPost(ctx context.Context, slug string) (*models.BlogPost, error)
	BlogPostsByCategory(ctx context.Context, category string) ([]models.BlogPost, error)
	RelatedPosts(ctx context.Context, currentID string, categories []string) ([]models.BlogPost, error)
	Categories(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]models.Author, error)
	Author(ctx context.Context, slug string) (*models.Author, error)
	AuthorPosts(ctx context.Context, authorID string) ([]models.BlogPost, error)
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
	Diagnostics(ctx context.Context) (*content.Diagnostics, error)
	Debug(ctx context.Context) (*content.Debug, error)
	Violations(ctx context.Context, docType string) (map[string][]schema.Violation, error)
}

// ContentSource picks the reader for a request; preview reads drafts.
type ContentSource func(preview bool) Content

// Invalidator drops cached published content.
type Invalidator interface {
	Invalidate()
}

type Config struct {
	Version string
	Port    string
	// Analyze mounts the profiler under /debug.
	Analyze           bool
	PreviewSecretHash string
	WebhookSecretHash string
	SessionTTL        time.Duration
	SecureCookies     bool
}

type Server struct {
	cfg        Config
	server     *http.Server
	assets     http.FileSystem
	tmplFunc   ExecuteTemplateFunc
	sessions   map[string]time.Time
	sessionsMu sync.RWMutex
	content    ContentSource
	pages      *page.Composer
	cache      Invalidator
}

func NewServer(cfg Config, assets http.FileSystem, tmplFunc ExecuteTemplateFunc, content ContentSource, pages *page.Composer, cache Invalidator) *Server {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}

	s := &Server{
		cfg:        cfg,
		assets:     assets,
		tmplFunc:   tmplFunc,
		sessions:   make(map[string]time.Time),
		sessionsMu: sync.RWMutex{},
		content:    content,
		pages:      pages,
		cache:      cache,
	}

	s.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Close() {
	if err := s.server.Close(); err != nil {
		panic(err)
	}
}

func FormatBuildVersion(version string) string {
	return fmt.Sprintf("Go Version: %s\nVersion: %s\nOS/Arch: %s/%s", runtime.Version(), version, runtime.GOOS, runtime.GOARCH)
}
