// Package page turns fetched documents into view models for the templates.
// Every optional field is resolved here, so templates only test for
// presence and never reach into raw documents.
package page

import (
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/portabletext"
)

// Groups holds a landing page's sections split by variant, each group in
// document order.
type Groups struct {
	Features     []models.FeatureSection
	Testimonials []models.TestimonialSection
	CTAs         []models.CTASection
}

// Partition splits sections by variant. Unknown variants are dropped.
func Partition(sections models.Sections) Groups {
	var g Groups
	for _, sec := range sections {
		switch s := sec.(type) {
		case models.FeatureSection:
			g.Features = append(g.Features, s)
		case models.TestimonialSection:
			g.Testimonials = append(g.Testimonials, s)
		case models.CTASection:
			g.CTAs = append(g.CTAs, s)
		default:
		}
	}
	return g
}

// ImageView is a resolved image ready for an <img> tag.
type ImageView struct {
	Src    string
	Alt    string
	Width  int
	Height int
}

type Composer struct {
	images *imageurl.Builder
	text   *portabletext.Renderer
}

func NewComposer(images *imageurl.Builder) *Composer {
	c := &Composer{images: images}
	c.text = portabletext.NewRenderer(func(img *models.Image, w, h int) (string, bool) {
		return images.URL(img, imageurl.Options{Width: w, Height: h})
	})
	return c
}

// image resolves img at the given size. A nil image yields nil; an image
// whose reference cannot be resolved falls back to placeholder. A zero
// height keeps the asset's own aspect ratio.
func (c *Composer) image(img *models.Image, w, h, quality int, alt, placeholder string) *ImageView {
	if img == nil || img.Asset == nil {
		return nil
	}
	if h == 0 {
		if d, ok := imageurl.ImageDimensions(img); ok && d.AspectRatio() > 0 {
			h = int(float64(w)/d.AspectRatio() + 0.5)
		}
	}
	src := c.images.URLOr(img, imageurl.Options{Width: w, Height: h, Quality: quality}, placeholder)
	if src == "" {
		return nil
	}
	if img.Alt != "" {
		alt = img.Alt
	}
	return &ImageView{Src: src, Alt: alt, Width: w, Height: h}
}
