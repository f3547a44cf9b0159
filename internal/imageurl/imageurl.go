// Package imageurl turns image asset references into CDN transform URLs.
package imageurl

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/continuous-intelligence/cIV/internal/models"
)

const (
	DefaultBaseURL = "https://cdn.sanity.io"
	DefaultQuality = 80

	PlaceholderImage  = "/static/images/placeholder.svg"
	PlaceholderIcon   = "/static/images/placeholder-icon.svg"
	PlaceholderAvatar = "/static/images/placeholder-avatar.svg"
)

var formats = map[string]bool{
	"webp": true,
	"jpg":  true,
	"png":  true,
}

// Options are the transform parameters. Zero values are omitted, except
// Quality where zero selects DefaultQuality.
type Options struct {
	Width   int
	Height  int
	Quality int
	Format  string
}

type Dimensions struct {
	Width  int
	Height int
}

// AspectRatio is width over height, or zero for degenerate dimensions.
func (d Dimensions) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

type Builder struct {
	ProjectID string
	Dataset   string
	BaseURL   string
}

func New(projectID, dataset string) *Builder {
	return &Builder{
		ProjectID: projectID,
		Dataset:   dataset,
		BaseURL:   DefaultBaseURL,
	}
}

// asset is a parsed asset id: <prefix>-<hash>-<width>x<height>-<ext>.
type asset struct {
	hash string
	dims Dimensions
	ext  string
}

func parseAssetID(id string) (asset, bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		return asset{}, false
	}
	if parts[0] == "" || parts[1] == "" || parts[3] == "" {
		return asset{}, false
	}
	dims, ok := parseDimensions(parts[2])
	if !ok {
		return asset{}, false
	}
	return asset{hash: parts[1], dims: dims, ext: parts[3]}, true
}

func parseDimensions(s string) (Dimensions, bool) {
	w, h, found := strings.Cut(s, "x")
	if !found {
		return Dimensions{}, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Dimensions{}, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Dimensions{}, false
	}
	return Dimensions{Width: width, Height: height}, true
}

// DimensionsOf decodes the pixel size embedded in an asset id without any
// network call.
func DimensionsOf(id string) (Dimensions, bool) {
	a, ok := parseAssetID(id)
	if !ok {
		return Dimensions{}, false
	}
	return a.dims, true
}

// ImageDimensions is DimensionsOf for an image reference.
func ImageDimensions(img *models.Image) (Dimensions, bool) {
	return DimensionsOf(img.AssetID())
}

// URL resolves img to a fetchable URL. A URL already dereferenced by the
// query is returned as is; otherwise a transform URL is built from the asset
// id. It reports false for an absent or malformed reference.
func (b *Builder) URL(img *models.Image, opts Options) (string, bool) {
	if img == nil || img.Asset == nil {
		return "", false
	}
	if u := img.ResolvedURL(); u != "" {
		return u, true
	}
	return b.FromID(img.AssetID(), img.Crop, img.Hotspot, opts)
}

// URLOr is URL with a fallback for unresolvable references.
func (b *Builder) URLOr(img *models.Image, opts Options, fallback string) string {
	if u, ok := b.URL(img, opts); ok {
		return u
	}
	return fallback
}

// FromID builds a transform URL from a raw asset id.
func (b *Builder) FromID(id string, crop *models.Crop, hotspot *models.Hotspot, opts Options) (string, bool) {
	a, ok := parseAssetID(id)
	if !ok || b.ProjectID == "" || b.Dataset == "" {
		return "", false
	}

	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	path := fmt.Sprintf("%s/images/%s/%s/%s-%dx%d.%s",
		strings.TrimRight(base, "/"), b.ProjectID, b.Dataset, a.hash, a.dims.Width, a.dims.Height, a.ext)

	// Query parameters are written in a fixed order so the same input always
	// yields the same string.
	var params []string
	if rect, ok := cropRect(crop, a.dims); ok {
		params = append(params, "rect="+rect)
	}
	if hotspot != nil && opts.Width > 0 && opts.Height > 0 {
		params = append(params,
			"fp-x="+formatFloat(hotspot.X),
			"fp-y="+formatFloat(hotspot.Y),
		)
	}
	if opts.Width > 0 {
		params = append(params, "w="+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		params = append(params, "h="+strconv.Itoa(opts.Height))
	}
	params = append(params, "q="+strconv.Itoa(quality(opts.Quality)))
	if f := strings.ToLower(opts.Format); formats[f] {
		params = append(params, "fm="+url.QueryEscape(f))
	}
	if opts.Width > 0 && opts.Height > 0 {
		params = append(params, "fit=crop")
	}

	return path + "?" + strings.Join(params, "&"), true
}

func quality(q int) int {
	switch {
	case q == 0:
		return DefaultQuality
	case q < 0:
		return 0
	case q > 100:
		return 100
	}
	return q
}

// cropRect converts fractional crop insets into a pixel rectangle.
func cropRect(c *models.Crop, d Dimensions) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.Top == 0 && c.Bottom == 0 && c.Left == 0 && c.Right == 0 {
		return "", false
	}
	left := int(math.Round(c.Left * float64(d.Width)))
	top := int(math.Round(c.Top * float64(d.Height)))
	width := int(math.Round((1 - c.Left - c.Right) * float64(d.Width)))
	height := int(math.Round((1 - c.Top - c.Bottom) * float64(d.Height)))
	if width <= 0 || height <= 0 {
		return "", false
	}
	return fmt.Sprintf("%d,%d,%d,%d", left, top, width, height), true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
