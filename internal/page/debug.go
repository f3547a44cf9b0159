package page

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

type DebugLanding struct {
	ID            string
	Title         string
	Slug          string
	HasHero       bool
	Headline      string
	Subheadline   string
	HasBackground bool
	AssetID       string
	AssetURL      string
	Alt           string
	GeneratedURL  string
}

type DebugViolation struct {
	DocumentID string
	Path       string
	Message    string
}

// DebugView backs the integration test page: what the landing query
// returned, every landing page in the dataset, and stored documents that
// fail validation.
type DebugView struct {
	Site       Site
	Failed     bool
	Landing    *DebugLanding
	RawLanding string
	Pages      []DebugLanding
	Violations []DebugViolation
}

type debugPage struct {
	ID          string              `json:"_id"`
	Title       string              `json:"title"`
	Slug        models.Slug         `json:"slug"`
	HeroSection *models.HeroSection `json:"heroSection"`
}

func (c *Composer) Debug(site Site, d *content.Debug, violations map[string][]schema.Violation) DebugView {
	v := DebugView{Site: site.WithPage("Sanity Integration Test", "", nil, "")}
	if d == nil {
		v.Failed = true
		return v
	}

	var lp *debugPage
	if err := json.Unmarshal(d.LandingPage, &lp); err == nil && lp != nil {
		dl := c.debugLanding(*lp)
		v.Landing = &dl
		v.RawLanding = indent(d.LandingPage)
	}

	var pages []debugPage
	if err := json.Unmarshal(d.AllLandingPages, &pages); err == nil {
		for _, p := range pages {
			v.Pages = append(v.Pages, c.debugLanding(p))
		}
	}

	ids := make([]string, 0, len(violations))
	for id := range violations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, vi := range violations[id] {
			v.Violations = append(v.Violations, DebugViolation{DocumentID: id, Path: vi.Path, Message: vi.Message})
		}
	}
	return v
}

func (c *Composer) debugLanding(p debugPage) DebugLanding {
	dl := DebugLanding{ID: p.ID, Title: p.Title, Slug: p.Slug.Current}
	h := p.HeroSection
	if h == nil {
		return dl
	}
	dl.HasHero = true
	dl.Headline = h.Headline
	dl.Subheadline = h.Subheadline
	if img := h.BackgroundImage; img != nil && img.Asset != nil {
		dl.HasBackground = true
		dl.AssetID = img.AssetID()
		dl.AssetURL = img.ResolvedURL()
		dl.Alt = first(img.Alt, "No alt text")
		dl.GeneratedURL, _ = c.images.FromID(img.AssetID(), img.Crop, img.Hotspot, imageurl.Options{Width: 400, Height: 200})
	}
	return dl
}

func indent(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
