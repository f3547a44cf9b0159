// Package content holds the site's queries and the typed operations over
// them. Every operation tolerates zero matches: single documents come back
// nil and lists come back empty.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

const (
	DefaultRecentLimit = 5
	DefaultPageLimit   = 10
	RelatedLimit       = 3
)

var ErrUnknownType = errors.New("content: unknown document type")

// Fetcher runs a query and decodes its result into out. *cms.Client
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, query string, params cms.Params, out any) error
}

type Service struct {
	fetch Fetcher
}

func New(f Fetcher) *Service {
	return &Service{fetch: f}
}

func (s *Service) LandingPage(ctx context.Context) (*models.LandingPage, error) {
	var page *models.LandingPage
	if err := s.fetch.Fetch(ctx, landingPageQuery, nil, &page); err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}
	return page, nil
}

func (s *Service) LandingPageBySlug(ctx context.Context, slug string) (*models.LandingPage, error) {
	var page *models.LandingPage
	if err := s.fetch.Fetch(ctx, landingPageBySlugQuery, cms.Params{"slug": slug}, &page); err != nil {
		return nil, fmt.Errorf("fetch landing page %q: %w", slug, err)
	}
	return page, nil
}

func (s *Service) BlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.posts(ctx, "blog posts", blogPostsQuery, nil)
}

func (s *Service) BlogPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post *models.BlogPost
	if err := s.fetch.Fetch(ctx, blogPostQuery, cms.Params{"slug": slug}, &post); err != nil {
		return nil, fmt.Errorf("fetch blog post %q: %w", slug, err)
	}
	return post, nil
}

func (s *Service) FeaturedBlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.posts(ctx, "featured posts", featuredBlogPostsQuery, nil)
}

func (s *Service) BlogPostsByCategory(ctx context.Context, category string) ([]models.BlogPost, error) {
	return s.posts(ctx, "category posts", categoryQuery, cms.Params{"category": category})
}

func (s *Service) AuthorPosts(ctx context.Context, authorID string) ([]models.BlogPost, error) {
	return s.posts(ctx, "author posts", authorPostsQuery, cms.Params{"authorId": authorID})
}

func (s *Service) RecentPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	return s.posts(ctx, "recent posts", fmt.Sprintf(recentPostsQuery, limit), nil)
}

func (s *Service) posts(ctx context.Context, what, query string, params cms.Params) ([]models.BlogPost, error) {
	return fetchEach[models.BlogPost](ctx, s.fetch, what, query, params)
}

// fetchEach runs a query returning an array and decodes it one element at
// a time. Elements that do not decode into T are logged and skipped.
func fetchEach[T any](ctx context.Context, f Fetcher, what, query string, params cms.Params) ([]T, error) {
	var raws []json.RawMessage
	if err := f.Fetch(ctx, query, params, &raws); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", what, err)
	}
	return decodeEach[T](what, raws), nil
}

func decodeEach[T any](what string, raws []json.RawMessage) []T {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			var doc struct {
				ID string `json:"_id"`
			}
			_ = json.Unmarshal(raw, &doc)
			slog.Warn("Skipping malformed result",
				slog.String("query", what),
				slog.Int("index", i),
				slog.String("id", doc.ID),
				"error", err,
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

type relatedCandidate struct {
	models.BlogPost
	Overlap int `json:"overlap"`
}

// RelatedPosts returns up to three posts sharing a category with the
// current one, most shared categories first, newest first among equals.
func (s *Service) RelatedPosts(ctx context.Context, currentID string, categories []string) ([]models.BlogPost, error) {
	if len(categories) == 0 {
		return []models.BlogPost{}, nil
	}

	params := cms.Params{"currentId": currentID, "categories": categories}
	candidates, err := fetchEach[relatedCandidate](ctx, s.fetch, "related posts", relatedPostsQuery, params)
	if err != nil {
		return nil, err
	}
	return rankRelated(currentID, categories, candidates), nil
}

func rankRelated(currentID string, categories []string, candidates []relatedCandidate) []models.BlogPost {
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.ID == currentID {
			continue
		}
		if c.Overlap == 0 {
			for _, cat := range c.Categories {
				if want[cat] {
					c.Overlap++
				}
			}
		}
		if c.Overlap > 0 {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Overlap != kept[j].Overlap {
			return kept[i].Overlap > kept[j].Overlap
		}
		return kept[i].PublishedAt.After(kept[j].PublishedAt.Time)
	})

	out := make([]models.BlogPost, 0, RelatedLimit)
	for _, c := range kept {
		if len(out) == RelatedLimit {
			break
		}
		out = append(out, c.BlogPost)
	}
	return out
}

func (s *Service) Author(ctx context.Context, slug string) (*models.Author, error) {
	var author *models.Author
	if err := s.fetch.Fetch(ctx, authorQuery, cms.Params{"slug": slug}, &author); err != nil {
		return nil, fmt.Errorf("fetch author %q: %w", slug, err)
	}
	return author, nil
}

func (s *Service) Authors(ctx context.Context) ([]models.Author, error) {
	return fetchEach[models.Author](ctx, s.fetch, "authors", authorsQuery, nil)
}

type singleton[T any] struct {
	Doc   *T  `json:"doc"`
	Count int `json:"count"`
}

// SplashScreen returns the oldest splash screen document.
func (s *Service) SplashScreen(ctx context.Context) (*models.SplashScreen, error) {
	var res singleton[models.SplashScreen]
	if err := s.fetch.Fetch(ctx, splashScreenQuery, nil, &res); err != nil {
		return nil, fmt.Errorf("fetch splash screen: %w", err)
	}
	warnDuplicates("splashScreen", res.Count)
	return res.Doc, nil
}

// Settings returns the oldest settings document.
func (s *Service) Settings(ctx context.Context) (*models.Settings, error) {
	var res singleton[models.Settings]
	if err := s.fetch.Fetch(ctx, settingsQuery, nil, &res); err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}
	warnDuplicates("settings", res.Count)
	return res.Doc, nil
}

func warnDuplicates(docType string, count int) {
	if count > 1 {
		slog.Warn("Multiple singleton documents found, using the oldest",
			slog.String("type", docType),
			slog.Int("count", count),
		)
	}
}

// Search matches term anywhere in titles and post bodies. A blank term
// matches nothing and issues no query.
func (s *Service) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.SearchResult{}, nil
	}

	var raws []json.RawMessage
	if err := s.fetch.Fetch(ctx, searchQuery, cms.Params{"searchTerm": "*" + term + "*"}, &raws); err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	return decodeEach[models.SearchResult]("search", raws), nil
}

// Categories returns every category used by a post, deduplicated and sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := fetchEach[string](ctx, s.fetch, "categories", categoriesQuery, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, c := range all {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func checkType(docType string) error {
	if _, ok := schema.Lookup(docType); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, docType)
	}
	return nil
}

func (s *Service) Count(ctx context.Context, docType string) (int, error) {
	if err := checkType(docType); err != nil {
		return 0, err
	}
	var n int
	if err := s.fetch.Fetch(ctx, countByTypeQuery, cms.Params{"type": docType}, &n); err != nil {
		return 0, fmt.Errorf("count %s: %w", docType, err)
	}
	return n, nil
}

func (s *Service) HasContent(ctx context.Context, docType string) (bool, error) {
	n, err := s.Count(ctx, docType)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items   []T  `json:"data"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// Window normalizes page and limit and returns the zero-based offset of
// the first item.
func Window(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return page, limit, (page - 1) * limit
}

// ContentByType pages through raw documents of docType, newest first.
func (s *Service) ContentByType(ctx context.Context, docType string, page, limit int) (*Page[json.RawMessage], error) {
	if err := checkType(docType); err != nil {
		return nil, err
	}
	page, limit, offset := Window(page, limit)
	query := fmt.Sprintf(contentByTypeQuery, offset, offset+limit)
	return paginate[json.RawMessage](ctx, s, docType, query, cms.Params{"type": docType}, page, limit, offset)
}

// BlogPostsPage pages through posts, newest first.
func (s *Service) BlogPostsPage(ctx context.Context, page, limit int) (*Page[models.BlogPost], error) {
	page, limit, offset := Window(page, limit)
	query := fmt.Sprintf(blogPostsPageQuery, offset, offset+limit)
	return paginate[models.BlogPost](ctx, s, "blogPost", query, nil, page, limit, offset)
}

func paginate[T any](ctx context.Context, s *Service, docType, query string, params cms.Params, page, limit, offset int) (*Page[T], error) {
	var items []T
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = fetchEach[T](gctx, s.fetch, docType+" page", query, params)
		return err
	})
	g.Go(func() error {
		if err := s.fetch.Fetch(gctx, countByTypeQuery, cms.Params{"type": docType}, &total); err != nil {
			return fmt.Errorf("count %s: %w", docType, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: offset+limit < total,
	}, nil
}

// Home is the data behind the front page.
type Home struct {
	Settings *models.Settings
	Landing  *models.LandingPage
	Featured []models.BlogPost
}

// Home fetches the front page's documents concurrently. A failing branch is
// logged and left empty; the others still render. Settings the caller
// already holds are reused instead of fetched again.
func (s *Service) Home(ctx context.Context, settings *models.Settings) *Home {
	h := Home{Settings: settings}
	var g errgroup.Group

	g.Go(func() error {
		if h.Settings != nil {
			return nil
		}
		settings, err := s.Settings(ctx)
		if err != nil {
			slog.Error("Failed to fetch settings", "error", err)
			return nil
		}
		h.Settings = settings
		return nil
	})
	g.Go(func() error {
		landing, err := s.LandingPage(ctx)
		if err != nil {
			slog.Error("Failed to fetch landing page", "error", err)
			return nil
		}
		h.Landing = landing
		return nil
	})
	g.Go(func() error {
		featured, err := s.FeaturedBlogPosts(ctx)
		if err != nil {
			slog.Error("Failed to fetch featured posts", "error", err)
			return nil
		}
		h.Featured = featured
		return nil
	})
	_ = g.Wait()

	return &h
}
