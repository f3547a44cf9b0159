package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/page"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

type MockContent struct {
	settings     *models.Settings
	landing      *models.LandingPage
	featured     []models.BlogPost
	splash       *models.SplashScreen
	posts        *content.Page[models.BlogPost]
	post         *models.BlogPost
	related      []models.BlogPost
	relatedIDs   []string
	author       *models.Author
	authorIDs    []string
	searchTerms  []string
	diagnostics  *content.Diagnostics
	debug        *content.Debug
	violations   map[string][]schema.Violation
	err          error
	diagnoseErr  error
	landingSlugs []string
	settingsHits int
	homeSettings []*models.Settings
}

func (m *MockContent) Home(ctx context.Context, settings *models.Settings) *content.Home {
	m.homeSettings = append(m.homeSettings, settings)
	if settings == nil {
		m.settingsHits++
		settings = m.settings
	}
	return &content.Home{Settings: settings, Landing: m.landing, Featured: m.featured}
}

func (m *MockContent) Settings(ctx context.Context) (*models.Settings, error) {
	m.settingsHits++
	return m.settings, m.err
}

func (m *MockContent) LandingPageBySlug(ctx context.Context, slug string) (*models.LandingPage, error) {
	m.landingSlugs = append(m.landingSlugs, slug)
	return m.landing, m.err
}

func (m *MockContent) SplashScreen(ctx context.Context) (*models.SplashScreen, error) {
	return m.splash, m.err
}

func (m *MockContent) BlogPostsPage(ctx context.Context, pageNum, limit int) (*content.Page[models.BlogPost], error) {
	return m.posts, m.err
}

func (m *MockContent) BlogPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	return m.post, m.err
}

func (m *MockContent) BlogPostsByCategory(ctx context.Context, category string) ([]models.BlogPost, error) {
	return m.featured, m.err
}

func (m *MockContent) RelatedPosts(ctx context.Context, currentID string, categories []string) ([]models.BlogPost, error) {
	m.relatedIDs = append(m.relatedIDs, currentID)
	return m.related, m.err
}

func (m *MockContent) Categories(ctx context.Context) ([]string, error) {
	return nil, m.err
}

func (m *MockContent) Authors(ctx context.Context) ([]models.Author, error) {
	if m.author == nil {
		return nil, m.err
	}
	return []models.Author{*m.author}, m.err
}

func (m *MockContent) Author(ctx context.Context, slug string) (*models.Author, error) {
	return m.author, m.err
}

func (m *MockContent) AuthorPosts(ctx context.Context, authorID string) ([]models.BlogPost, error) {
	m.authorIDs = append(m.authorIDs, authorID)
	return m.featured, m.err
}

func (m *MockContent) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	m.searchTerms = append(m.searchTerms, term)
	return nil, m.err
}

func (m *MockContent) Diagnostics(ctx context.Context) (*content.Diagnostics, error) {
	return m.diagnostics, m.diagnoseErr
}

func (m *MockContent) Debug(ctx context.Context) (*content.Debug, error) {
	return m.debug, m.err
}

func (m *MockContent) Violations(ctx context.Context, docType string) (map[string][]schema.Violation, error) {
	if docType != "landingPage" {
		return nil, nil
	}
	return m.violations, m.err
}

type MockInvalidator struct {
	calls int
}

func (m *MockInvalidator) Invalidate() {
	m.calls++
}

type renderedTemplate struct {
	name string
	data any
}

type templateRecorder struct {
	rendered []renderedTemplate
}

func (t *templateRecorder) execute(wr io.Writer, name string, data any) error {
	t.rendered = append(t.rendered, renderedTemplate{name: name, data: data})
	_, err := wr.Write([]byte("rendered: " + name))
	return err
}

func (t *templateRecorder) last() renderedTemplate {
	if len(t.rendered) == 0 {
		return renderedTemplate{}
	}
	return t.rendered[len(t.rendered)-1]
}

const (
	testPreviewSecret = "preview-secret"
	testWebhookSecret = "webhook-secret"
)

func hash(t *testing.T, secret string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash secret: %v", err)
	}
	return string(h)
}

type testServer struct {
	*Server
	published *MockContent
	drafts    *MockContent
	templates *templateRecorder
	cache     *MockInvalidator
}

func newTestServer(t *testing.T, published *MockContent) *testServer {
	t.Helper()
	ts := &testServer{
		published: published,
		drafts:    &MockContent{},
		templates: &templateRecorder{},
		cache:     &MockInvalidator{},
	}
	assets := http.FS(fstest.MapFS{
		"static/robots.txt":         {Data: []byte("User-agent: *\nAllow: /\n")},
		"static/images/favicon.svg": {Data: []byte("<svg></svg>")},
		"static/css/site.css":       {Data: []byte("body{}")},
	})
	source := func(preview bool) Content {
		if preview {
			return ts.drafts
		}
		return ts.published
	}
	cfg := Config{
		Version:           "test",
		Port:              "8080",
		PreviewSecretHash: hash(t, testPreviewSecret),
		WebhookSecretHash: hash(t, testWebhookSecret),
		SessionTTL:        time.Hour,
	}
	ts.Server = NewServer(cfg, assets, ts.templates.execute, source, page.NewComposer(imageurl.New("abc123", "production")), ts.cache)
	return ts
}

func (ts *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.Routes().ServeHTTP(w, req)
	return w
}

func landingPage() *models.LandingPage {
	return &models.LandingPage{
		Document:    models.Document{ID: "lp1", Type: "landingPage"},
		Title:       "Welcome",
		Slug:        models.Slug{Current: "welcome"},
		HeroSection: &models.HeroSection{Headline: "Validate continuously"},
	}
}

func TestFormatBuildVersion(t *testing.T) {
	version := FormatBuildVersion("1.0.0")
	if !strings.Contains(version, "1.0.0") {
		t.Errorf("expected version string to contain '1.0.0', got %q", version)
	}
	if !strings.Contains(version, "Go Version:") {
		t.Errorf("expected version string to contain 'Go Version:', got %q", version)
	}
}

func TestSessionCreateAndValidate(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	token := s.createSession()
	if len(token) != 64 {
		t.Errorf("expected token length 64, got %d", len(token))
	}
	if !s.validateSession(token) {
		t.Error("expected session to be valid")
	}
	if s.validateSession("invalid-token") {
		t.Error("expected invalid token to fail validation")
	}
	if s.validateSession("") {
		t.Error("expected empty token to fail validation")
	}

	s.deleteSession(token)
	if s.validateSession(token) {
		t.Error("session should be invalid after deletion")
	}
}

func TestSessionExpiry(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	expired := s.createSession()
	live := s.createSession()

	s.sessionsMu.Lock()
	s.sessions[expired] = time.Now().Add(-1 * time.Hour)
	s.sessionsMu.Unlock()

	if n := s.PruneSessions(); n != 1 {
		t.Errorf("expected 1 pruned session, got %d", n)
	}
	if s.validateSession(expired) {
		t.Error("expired session should be invalid")
	}
	if !s.validateSession(live) {
		t.Error("live session should survive pruning")
	}
}

func TestCheckSecret(t *testing.T) {
	h := hash(t, "s3cret")
	if !checkSecret(h, "s3cret") {
		t.Error("expected matching secret to pass")
	}
	if checkSecret(h, "wrong") {
		t.Error("expected wrong secret to fail")
	}
	if checkSecret("", "s3cret") {
		t.Error("expected unset hash to never match")
	}
	if checkSecret(h, "") {
		t.Error("expected empty secret to fail")
	}
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer(t, &MockContent{landing: landingPage()})

	w := s.get("/")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	last := s.templates.last()
	if last.name != "index.html" {
		t.Fatalf("expected index.html, got %q", last.name)
	}
	view, ok := last.data.(page.LandingView)
	if !ok {
		t.Fatalf("expected LandingView, got %T", last.data)
	}
	if view.Hero == nil || view.Hero.Headline != "Validate continuously" {
		t.Errorf("unexpected hero: %+v", view.Hero)
	}
}

func TestHandleIndexFetchesSettingsOnce(t *testing.T) {
	mock := &MockContent{landing: landingPage(), settings: &models.Settings{Title: "cIV"}}
	s := newTestServer(t, mock)

	s.get("/")
	if mock.settingsHits != 1 {
		t.Errorf("expected settings to be fetched once, got %d", mock.settingsHits)
	}
	if len(mock.homeSettings) != 1 || mock.homeSettings[0] != mock.settings {
		t.Errorf("expected home to reuse middleware settings, got %v", mock.homeSettings)
	}
	view, ok := s.templates.last().data.(page.LandingView)
	if !ok || view.Site.Name != "cIV" {
		t.Errorf("expected site named cIV, got %+v", s.templates.last().data)
	}
}

func TestHandleIndexFallback(t *testing.T) {
	s := newTestServer(t, &MockContent{err: errors.New("unreachable")})

	w := s.get("/")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if name := s.templates.last().name; name != "fallback.html" {
		t.Errorf("expected fallback.html, got %q", name)
	}
}

func TestHandleLanding(t *testing.T) {
	mock := &MockContent{landing: landingPage()}
	s := newTestServer(t, mock)

	w := s.get("/landing/welcome")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if len(mock.landingSlugs) != 1 || mock.landingSlugs[0] != "welcome" {
		t.Errorf("expected lookup by slug 'welcome', got %v", mock.landingSlugs)
	}

	mock.landing = nil
	w = s.get("/landing/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if name := s.templates.last().name; name != "error.html" {
		t.Errorf("expected error.html, got %q", name)
	}
}

func TestHandleSplash(t *testing.T) {
	mock := &MockContent{}
	s := newTestServer(t, mock)

	w := s.get("/splash")
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/landing" {
		t.Errorf("expected redirect to /landing, got %q", loc)
	}

	mock.splash = &models.SplashScreen{IsActive: false, RedirectTo: "https://evil.example"}
	w = s.get("/splash")
	if loc := w.Header().Get("Location"); loc != "/landing" {
		t.Errorf("expected off-site target to fall back to /landing, got %q", loc)
	}

	mock.splash = &models.SplashScreen{IsActive: true, Title: "Hello", RedirectTo: "/blog"}
	w = s.get("/splash")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	view, ok := s.templates.last().data.(page.SplashView)
	if !ok {
		t.Fatalf("expected SplashView, got %T", s.templates.last().data)
	}
	if view.RedirectTo != "/blog" || view.DurationMS != 3000 {
		t.Errorf("unexpected splash view: redirect %q duration %d", view.RedirectTo, view.DurationMS)
	}
}

func TestHandleBlog(t *testing.T) {
	mock := &MockContent{posts: &content.Page[models.BlogPost]{
		Items: []models.BlogPost{{Title: "First", Slug: models.Slug{Current: "first"}}},
		Total: 11, Page: 1, Limit: 10, HasMore: true,
	}}
	s := newTestServer(t, mock)

	w := s.get("/blog?page=1")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	view, ok := s.templates.last().data.(page.BlogListView)
	if !ok {
		t.Fatalf("expected BlogListView, got %T", s.templates.last().data)
	}
	if len(view.Posts) != 1 || view.Posts[0].URL != "/blog/first" {
		t.Errorf("unexpected posts: %+v", view.Posts)
	}
	if view.Pager == nil || view.Pager.NextURL != "/blog?page=2" {
		t.Errorf("unexpected pager: %+v", view.Pager)
	}
}

func TestHandlePost(t *testing.T) {
	mock := &MockContent{}
	s := newTestServer(t, mock)

	w := s.get("/blog/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	mock.post = &models.BlogPost{
		Document:   models.Document{ID: "post-1"},
		Title:      "Hello",
		Slug:       models.Slug{Current: "hello"},
		Categories: []string{"analytics"},
	}
	w = s.get("/blog/hello")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if name := s.templates.last().name; name != "post.html" {
		t.Errorf("expected post.html, got %q", name)
	}
	if len(mock.relatedIDs) != 1 || mock.relatedIDs[0] != "post-1" {
		t.Errorf("expected related lookup for post-1, got %v", mock.relatedIDs)
	}
}

func TestHandleAuthor(t *testing.T) {
	mock := &MockContent{author: &models.Author{
		Document: models.Document{ID: "author-1"},
		Name:     "Ada",
		Slug:     models.Slug{Current: "ada"},
	}}
	s := newTestServer(t, mock)

	w := s.get("/authors/ada")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if len(mock.authorIDs) != 1 || mock.authorIDs[0] != "author-1" {
		t.Errorf("expected posts lookup by author id, got %v", mock.authorIDs)
	}

	w = s.get("/authors")
	if name := s.templates.last().name; name != "authors.html" {
		t.Errorf("expected authors.html, got %q", name)
	}
	if view := s.templates.last().data.(page.AuthorsView); len(view.Authors) != 1 {
		t.Errorf("expected 1 author card, got %d", len(view.Authors))
	}
}

func TestHandleSearch(t *testing.T) {
	mock := &MockContent{}
	s := newTestServer(t, mock)

	s.get("/search?q=")
	if len(mock.searchTerms) != 0 {
		t.Errorf("expected blank query to skip search, got %v", mock.searchTerms)
	}

	s.get("/search?q=%20intelligence%20")
	if len(mock.searchTerms) != 1 || mock.searchTerms[0] != "intelligence" {
		t.Errorf("expected trimmed term, got %v", mock.searchTerms)
	}
}

func TestMaintenanceMode(t *testing.T) {
	mock := &MockContent{
		landing: landingPage(),
		settings: &models.Settings{
			Title:       "cIV",
			Maintenance: &models.Maintenance{Enabled: true, Message: "Back **soon**"},
		},
	}
	s := newTestServer(t, mock)

	w := s.get("/")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	view, ok := s.templates.last().data.(page.MaintenanceView)
	if !ok {
		t.Fatalf("expected MaintenanceView, got %T", s.templates.last().data)
	}
	if !strings.Contains(string(view.Message), "<strong>soon</strong>") {
		t.Errorf("expected rendered markdown, got %q", view.Message)
	}

	// Health and API routes are not gated.
	if w := s.get("/health"); w.Code != http.StatusOK {
		t.Errorf("expected health 200, got %d", w.Code)
	}

	// Editors with a preview session see drafts instead.
	s.drafts.settings = mock.settings
	s.drafts.landing = landingPage()
	token := s.createSession()
	w = s.get("/", &http.Cookie{Name: previewCookie, Value: token})
	if w.Code != http.StatusOK {
		t.Errorf("expected preview to bypass maintenance, got %d", w.Code)
	}
	view2, ok := s.templates.last().data.(page.LandingView)
	if !ok || !view2.Site.Preview {
		t.Errorf("expected preview landing view, got %T", s.templates.last().data)
	}
}

func TestHandleAPITest(t *testing.T) {
	mock := &MockContent{diagnostics: &content.Diagnostics{
		Counts:  map[string]int{"blogPosts": 2},
		Samples: map[string]json.RawMessage{"blogPosts": json.RawMessage(`{"_id":"p1"}`)},
	}}
	s := newTestServer(t, mock)

	w := s.get("/api/test-sanity")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if string(body["success"]) != "true" {
		t.Errorf("expected success true, got %s", body["success"])
	}
	if string(body["message"]) != `"Sanity integration working properly!"` {
		t.Errorf("unexpected message %s", body["message"])
	}
	if string(body["data"]) != `{"blogPosts":2}` {
		t.Errorf("unexpected data %s", body["data"])
	}
	if _, ok := body["sampleData"]; !ok {
		t.Error("expected sampleData")
	}

	mock.diagnoseErr = &cms.Error{Op: "query", StatusCode: http.StatusBadGateway, Err: cms.ErrFetch}
	w = s.get("/api/test-sanity")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	body = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if string(body["success"]) != "false" {
		t.Errorf("expected success false, got %s", body["success"])
	}
	if _, ok := body["error"]; !ok {
		t.Error("expected error message")
	}
	if _, ok := body["data"]; ok {
		t.Error("expected no data on failure")
	}
}

func TestHandlePreview(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	w := s.get("/api/preview?secret=wrong&redirect=/blog")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}

	w = s.get("/api/preview?secret=" + testPreviewSecret + "&redirect=/blog/hello")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/blog/hello" {
		t.Errorf("expected redirect to /blog/hello, got %q", loc)
	}
	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == previewCookie {
			token = c.Value
		}
	}
	if !s.validateSession(token) {
		t.Fatal("expected a valid preview session cookie")
	}

	w = s.get("/api/preview?secret=" + testPreviewSecret + "&redirect=//evil.example")
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected off-site redirect to fall back to /, got %q", loc)
	}

	w = s.get("/api/preview/exit", &http.Cookie{Name: previewCookie, Value: token})
	if w.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", w.Code)
	}
	if s.validateSession(token) {
		t.Error("expected preview session to end")
	}
}

func TestHandleRevalidate(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	req := httptest.NewRequest("POST", "/api/revalidate", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if s.cache.calls != 0 {
		t.Error("cache should not be invalidated without the secret")
	}

	req = httptest.NewRequest("POST", "/api/revalidate", nil)
	req.Header.Set("X-Webhook-Secret", testWebhookSecret)
	w = httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if s.cache.calls != 1 {
		t.Errorf("expected 1 invalidation, got %d", s.cache.calls)
	}
}

func TestHandleTestPage(t *testing.T) {
	mock := &MockContent{
		debug: &content.Debug{
			LandingPage:     json.RawMessage(`{"_id":"lp1","title":"Welcome","slug":{"current":"welcome"}}`),
			AllLandingPages: json.RawMessage(`[{"_id":"lp1","title":"Welcome"}]`),
		},
		violations: map[string][]schema.Violation{"lp1": {{Path: "slug", Message: "is required"}}},
	}
	s := newTestServer(t, mock)

	w := s.get("/test-sanity")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	view, ok := s.templates.last().data.(page.DebugView)
	if !ok {
		t.Fatalf("expected DebugView, got %T", s.templates.last().data)
	}
	if view.Failed || view.Landing == nil || view.Landing.Slug != "welcome" {
		t.Errorf("unexpected debug view: %+v", view)
	}
	if len(view.Violations) != 1 || view.Violations[0].DocumentID != "lp1" {
		t.Errorf("unexpected violations: %+v", view.Violations)
	}
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	w := s.get("/robots.txt")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "User-agent") {
		t.Errorf("unexpected robots.txt response: %d %q", w.Code, w.Body.String())
	}

	w = s.get("/static/css/site.css")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("expected static cache header, got %q", cc)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, &MockContent{})

	w := s.get("/no/such/page")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if name := s.templates.last().name; name != "error.html" {
		t.Errorf("expected error.html, got %q", name)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache, no-store, must-revalidate" {
		t.Errorf("expected no-cache header, got %q", cc)
	}
}
