package page

import (
	"strings"

	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
)

const (
	// Used when no settings document exists at all.
	DefaultTitle       = "cIV - Continuous Intelligence Validation"
	DefaultDescription = "A modern platform for continuous intelligence validation and analytics"

	// Used when settings exist but leave a field empty.
	FallbackTitle       = "cIV Platform"
	FallbackDescription = "Continuous Intelligence Validation Platform"

	SiteAuthor  = "cIV Team"
	TwitterCard = "summary_large_image"
	Locale      = "en_US"
	Robots      = "index, follow, max-image-preview:large, max-snippet:-1, max-video-preview:-1"

	ogImageWidth  = 1200
	ogImageHeight = 630

	logoWidth = 160
)

var DefaultKeywords = []string{"continuous intelligence", "validation", "analytics", "data"}

// Head is everything rendered into <head>.
type Head struct {
	Title        string
	Description  string
	Keywords     []string
	Author       string
	Canonical    string
	OGType       string
	OGImage      string
	TwitterCard  string
	TwitterImage string
	Favicon      string
	Locale       string
	Robots       string
	Analytics    *models.Analytics
}

func (h Head) KeywordList() string {
	return strings.Join(h.Keywords, ", ")
}

type SocialLink struct {
	Label string
	URL   string
}

// Site carries the site-wide chrome: head defaults, header and footer.
type Site struct {
	Name    string
	Head    Head
	Logo    *ImageView
	Social  []SocialLink
	Contact *models.Contact
	Preview bool
}

// Site builds the site chrome from settings. Nil settings yield the
// hardcoded defaults.
func (c *Composer) Site(settings *models.Settings) Site {
	head := Head{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Keywords:    DefaultKeywords,
		Author:      SiteAuthor,
		OGType:      "website",
		TwitterCard: TwitterCard,
		Locale:      Locale,
		Robots:      Robots,
	}
	site := Site{Name: FallbackTitle}

	if settings == nil {
		site.Head = head
		return site
	}

	head.Title = first(seoTitle(settings.SEO), settings.Title, FallbackTitle)
	head.Description = first(seoDescription(settings.SEO), settings.Description, FallbackDescription)
	if len(settings.Keywords) > 0 {
		head.Keywords = settings.Keywords
	}
	head.Canonical = strings.TrimRight(settings.URL, "/")
	head.Analytics = settings.Analytics
	if settings.SEO != nil {
		head.OGImage = c.imageURL(settings.SEO.OGImage, ogImageWidth, ogImageHeight)
		head.TwitterImage = first(c.imageURL(settings.SEO.TwitterImage, ogImageWidth, ogImageHeight), head.OGImage)
	}
	if u, ok := c.images.URL(settings.Favicon, imageurl.Options{Width: 32, Height: 32, Format: "png"}); ok {
		head.Favicon = u
	}

	site.Name = first(settings.Title, FallbackTitle)
	site.Head = head
	site.Logo = c.image(settings.Logo, logoWidth, 0, 0, site.Name, "")
	site.Social = socialLinks(settings.SocialLinks)
	site.Contact = settings.Contact
	return site
}

// WithPage overrides the head for a single page. The page's own SEO block
// wins, then its title and description, then the site defaults.
func (s Site) WithPage(title, description string, seo *models.SEO, ogImage string) Site {
	if t := first(seoTitle(seo), title); t != "" {
		if t != s.Name {
			t = t + " | " + s.Name
		}
		s.Head.Title = t
	}
	if d := first(seoDescription(seo), description); d != "" {
		s.Head.Description = d
	}
	if ogImage != "" {
		s.Head.OGImage = ogImage
		s.Head.OGType = "article"
	}
	return s
}

func (s Site) WithPreview(preview bool) Site {
	s.Preview = preview
	return s
}

func (c *Composer) imageURL(img *models.Image, w, h int) string {
	u, _ := c.images.URL(img, imageurl.Options{Width: w, Height: h})
	return u
}

func seoTitle(seo *models.SEO) string {
	if seo == nil {
		return ""
	}
	return seo.MetaTitle
}

func seoDescription(seo *models.SEO) string {
	if seo == nil {
		return ""
	}
	return seo.MetaDescription
}

func socialLinks(l *models.SocialLinks) []SocialLink {
	if l == nil {
		return nil
	}
	var out []SocialLink
	for _, s := range []SocialLink{
		{"Twitter", l.Twitter},
		{"Facebook", l.Facebook},
		{"Instagram", l.Instagram},
		{"LinkedIn", l.LinkedIn},
		{"YouTube", l.YouTube},
		{"GitHub", l.GitHub},
		{"Website", l.Website},
	} {
		if s.URL != "" {
			out = append(out, s)
		}
	}
	return out
}

// first returns the first non-blank value.
func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
