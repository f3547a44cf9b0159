package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/page"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

func TestTemplatesRender(t *testing.T) {
	assets.Templates = os.DirFS("..")
	tmpl, err := parseTemplates()
	require.NoError(t, err)

	c := page.NewComposer(imageurl.New("abc123", "production"))
	img := &models.Image{Asset: &models.ImageAsset{Ref: "image-abc123-800x600-jpg"}, Alt: "alt"}
	settings := &models.Settings{
		Title:       "cIV",
		Analytics:   &models.Analytics{GoogleAnalyticsID: "G-TEST"},
		Contact:     &models.Contact{Email: "hello@example.com"},
		SocialLinks: &models.SocialLinks{GitHub: "https://github.com/example"},
	}
	post := models.BlogPost{
		Document:   models.Document{ID: "p1"},
		Title:      "Hello",
		Slug:       models.Slug{Current: "hello"},
		MainImage:  img,
		Categories: []string{"analytics"},
		Author:     &models.Author{Name: "Ada", Slug: models.Slug{Current: "ada"}},
	}
	landing := &models.LandingPage{
		Title:       "Welcome",
		HeroSection: &models.HeroSection{Headline: "Hi", BackgroundImage: img, CTAButton: &models.CTAButton{Text: "Go", URL: "/blog"}},
		Sections: models.Sections{
			models.FeatureSection{Title: "Features", Features: []models.Feature{{Title: "Fast", Icon: img}}},
			models.TestimonialSection{Title: "Praise"},
			models.CTASection{Title: "Join", PrimaryButton: &models.CTAButton{Text: "Start", URL: "/start"}},
		},
	}

	for _, preview := range []bool{false, true} {
		site := c.Site(settings).WithPreview(preview)
		landingView, _ := c.Landing(site, landing, []models.BlogPost{post})
		postView, _ := c.Post(site, &post, []models.BlogPost{post})
		authorView, _ := c.AuthorPage(site, post.Author, []models.BlogPost{post})
		splashView, _ := c.Splash(site, &models.SplashScreen{IsActive: true, BrandName: "cIV", Logo: img})

		views := map[string]any{
			"index.html":       landingView,
			"fallback.html":    c.Fallback(c.Site(nil)),
			"splash.html":      splashView,
			"blog.html":        c.BlogList(site, &content.Page[models.BlogPost]{Items: []models.BlogPost{post}, Total: 12, Page: 1, Limit: 10, HasMore: true}, []string{"analytics"}),
			"post.html":        postView,
			"authors.html":     c.Authors(site, []models.Author{*post.Author}),
			"author.html":      authorView,
			"search.html":      c.Search(site, "hello", []models.SearchResult{{Type: "blogPost", Title: "Hello", Slug: models.Slug{Current: "hello"}}}),
			"maintenance.html": c.Maintenance(site, ""),
			"error.html":       c.Error(site, 404),
			"test-sanity.html": c.Debug(site, &content.Debug{
				LandingPage:     json.RawMessage(`{"_id":"lp1","title":"Welcome","heroSection":{"headline":"Hi","backgroundImage":{"asset":{"_ref":"image-abc123-800x600-jpg"}}}}`),
				AllLandingPages: json.RawMessage(`[{"_id":"lp1","title":"Welcome"}]`),
			}, map[string][]schema.Violation{"lp1": {{Path: "slug", Message: "is required"}}}),
		}

		for name, view := range views {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, name, view), name)
			assert.Contains(t, buf.String(), "</html>", name)
			if name == "index.html" {
				assertLandingSections(t, buf.String())
			}
		}
	}

	// Zero-value views must render too.
	for name, view := range map[string]any{
		"index.html":       page.LandingView{},
		"blog.html":        page.BlogListView{},
		"post.html":        page.PostView{},
		"test-sanity.html": page.DebugView{Failed: true},
	} {
		var buf bytes.Buffer
		assert.NoError(t, tmpl.ExecuteTemplate(&buf, name, view), name)
	}
}

// assertLandingSections checks the rendered landing page carries one block
// per section variant, with the empty testimonial state.
func assertLandingSections(t *testing.T, html string) {
	t.Helper()
	assert.Equal(t, 1, strings.Count(html, `<section class="features"`))
	assert.Equal(t, 1, strings.Count(html, `<section class="testimonials"`))
	assert.Equal(t, 1, strings.Count(html, `<section class="cta"`))
	assert.Contains(t, html, `<h2 class="section-title">Features</h2>`)
	assert.Contains(t, html, `<div class="empty-state">`)
	assert.Contains(t, html, page.NoTestimonials)
	assert.Contains(t, html, `<h2>Join</h2>`)
	assert.Contains(t, html, `href="/start"`)
}

func TestCMSConfig(t *testing.T) {
	saved := appConfig
	t.Cleanup(func() { appConfig = saved })

	appConfig.Sanity.ProjectID = "abc123"
	appConfig.Sanity.Dataset = "production"
	appConfig.Sanity.APIVersion = "2024-01-01"
	appConfig.Environment = "production"
	appConfig.Sanity.UseCDN = nil

	cfg := cmsConfig()
	assert.True(t, cfg.UseCDN)
	assert.NoError(t, cfg.Validate())
}
