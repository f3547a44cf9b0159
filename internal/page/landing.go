package page

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
)

const (
	HeroGradient    = "linear-gradient(to right, #2563eb, #7c3aed)"
	heroOverlay     = "linear-gradient(rgba(0, 0, 0, 0.5), rgba(0, 0, 0, 0.5))"
	heroImageWidth  = 1920
	heroImageHeight = 1080
	sectionQuality  = 90

	iconSize   = 64
	avatarSize = 50

	NoTestimonials     = "No testimonials available yet."
	NoTestimonialsHint = "Add testimonials in the studio to see them here."
)

type HeroView struct {
	Headline    string
	Subheadline string
	// Background is the CSS background-image value: the image under a dark
	// overlay, or the brand gradient.
	Background template.CSS
	HasImage   bool
	CTA        *models.CTAButton
}

type FeatureCard struct {
	Title       string
	Description string
	Icon        *ImageView
}

type FeatureBlock struct {
	Key     string
	Title   string
	Cards   []FeatureCard
	Content template.HTML
}

type TestimonialCard struct {
	Quote   string
	Author  string
	Company string
	Avatar  *ImageView
}

type TestimonialBlock struct {
	Key   string
	Title string
	Cards []TestimonialCard
	// Empty is set when the section has no testimonials; the template shows
	// EmptyMessage instead of an empty grid.
	Empty        bool
	EmptyMessage string
	EmptyHint    string
}

type CTABlock struct {
	Key         string
	Title       string
	Description string
	Primary     *models.CTAButton
	Secondary   *models.CTAButton
}

type LandingView struct {
	Site         Site
	Title        string
	Hero         *HeroView
	Features     []FeatureBlock
	Testimonials []TestimonialBlock
	CTAs         []CTABlock
	Featured     []PostCard
}

// Sections is the number of section blocks the view renders.
func (v LandingView) Sections() int {
	return len(v.Features) + len(v.Testimonials) + len(v.CTAs)
}

// FallbackView is rendered when there is no landing page at all.
type FallbackView struct {
	Site    Site
	Title   string
	Tagline string
	Links   []SocialLink
}

func (c *Composer) Fallback(site Site) FallbackView {
	return FallbackView{
		Site:    site,
		Title:   FallbackTitle,
		Tagline: "Continuous Intelligence Validation",
		Links: []SocialLink{
			{Label: "Test Sanity Integration", URL: "/test-sanity"},
			{Label: "API Test", URL: "/api/test-sanity"},
		},
	}
}

// Landing composes a landing page. It returns false when lp is nil so the
// caller can render the fallback instead.
func (c *Composer) Landing(site Site, lp *models.LandingPage, featured []models.BlogPost) (LandingView, bool) {
	if lp == nil {
		return LandingView{}, false
	}

	v := LandingView{
		Site:  site.WithPage(lp.Title, "", lp.SEO, c.imageURL(seoImage(lp.SEO), ogImageWidth, ogImageHeight)),
		Title: lp.Title,
		Hero:  c.hero(lp.HeroSection),
	}

	g := Partition(lp.Sections)
	for _, s := range g.Features {
		v.Features = append(v.Features, c.featureBlock(s))
	}
	for _, s := range g.Testimonials {
		v.Testimonials = append(v.Testimonials, c.testimonialBlock(s))
	}
	for _, s := range g.CTAs {
		v.CTAs = append(v.CTAs, CTABlock{
			Key:         s.Key,
			Title:       s.Title,
			Description: s.Description,
			Primary:     button(s.PrimaryButton),
			Secondary:   button(s.SecondaryButton),
		})
	}
	for _, p := range featured {
		v.Featured = append(v.Featured, c.postCard(p))
	}
	return v, true
}

func seoImage(seo *models.SEO) *models.Image {
	if seo == nil {
		return nil
	}
	return seo.OGImage
}

func (c *Composer) hero(h *models.HeroSection) *HeroView {
	if h == nil {
		return nil
	}
	v := &HeroView{
		Headline:    h.Headline,
		Subheadline: h.Subheadline,
		Background:  template.CSS(HeroGradient),
		CTA:         button(h.CTAButton),
	}
	src, ok := c.images.URL(h.BackgroundImage, imageurl.Options{
		Width:   heroImageWidth,
		Height:  heroImageHeight,
		Quality: sectionQuality,
	})
	if ok {
		if css, ok := cssURL(src); ok {
			v.Background = template.CSS(heroOverlay + ", " + css)
			v.HasImage = true
		}
	}
	return v
}

func (c *Composer) featureBlock(s models.FeatureSection) FeatureBlock {
	b := FeatureBlock{Key: s.Key, Title: s.Title}
	for _, f := range s.Features {
		b.Cards = append(b.Cards, FeatureCard{
			Title:       f.Title,
			Description: f.Description,
			Icon:        c.image(f.Icon, iconSize, iconSize, sectionQuality, f.Title, imageurl.PlaceholderIcon),
		})
	}
	if len(b.Cards) == 0 {
		b.Content = c.text.Render(s.Content)
	}
	return b
}

func (c *Composer) testimonialBlock(s models.TestimonialSection) TestimonialBlock {
	b := TestimonialBlock{Key: s.Key, Title: s.Title}
	for _, t := range s.Testimonials {
		b.Cards = append(b.Cards, TestimonialCard{
			Quote:   t.Quote,
			Author:  t.Author,
			Company: t.Company,
			Avatar:  c.image(t.Avatar, avatarSize, avatarSize, sectionQuality, t.Author, imageurl.PlaceholderAvatar),
		})
	}
	if len(b.Cards) == 0 {
		b.Empty = true
		b.EmptyMessage = NoTestimonials
		b.EmptyHint = NoTestimonialsHint
	}
	return b
}

// button drops buttons that have nowhere to go.
func button(b *models.CTAButton) *models.CTAButton {
	if b == nil || strings.TrimSpace(b.URL) == "" {
		return nil
	}
	out := *b
	if strings.TrimSpace(out.Text) == "" {
		out.Text = "Learn more"
	}
	return &out
}

// cssURL wraps an http(s) URL for use in a CSS value.
func cssURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "http", "https":
	case "":
		if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
			return "", false
		}
	default:
		return "", false
	}
	if strings.ContainsAny(raw, "\"'()\\ \n\r\t<>") {
		return "", false
	}
	return `url("` + raw + `")`, true
}
