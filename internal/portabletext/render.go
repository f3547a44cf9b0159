// Package portabletext renders structured rich text blocks to sanitized HTML.
package portabletext

import (
	"html"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/continuous-intelligence/cIV/internal/models"
)

const (
	ImageWidth  = 800
	ImageHeight = 600
)

// ImageURLFunc resolves an embedded image to a URL at the given size.
type ImageURLFunc func(img *models.Image, width, height int) (string, bool)

type Renderer struct {
	images ImageURLFunc
	policy *bluemonday.Policy
}

func NewRenderer(images ImageURLFunc) *Renderer {
	return &Renderer{images: images, policy: Policy()}
}

// Policy is the sanitizer applied to every rendered fragment.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "del", "figure", "figcaption", "pre", "code", "br")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9_\- +#]+$`)).Globally()
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts blocks to HTML safe to embed in a template.
func (r *Renderer) Render(blocks models.Blocks) template.HTML {
	if len(blocks) == 0 {
		return ""
	}
	return template.HTML(r.policy.Sanitize(r.render(blocks)))
}

type openList struct {
	tag   string
	level int
}

func (r *Renderer) render(blocks models.Blocks) string {
	var b strings.Builder
	var lists []openList

	closeLists := func(above int) {
		for len(lists) > 0 && lists[len(lists)-1].level > above {
			b.WriteString("</li></" + lists[len(lists)-1].tag + ">")
			lists = lists[:len(lists)-1]
		}
	}

	for _, blk := range blocks {
		if blk.Type == models.BlockTypeBlock && blk.ListItem != "" {
			level := max(blk.Level, 1)
			tag := listTag(blk.ListItem)

			closeLists(level)
			if n := len(lists); n > 0 && lists[n-1].level == level && lists[n-1].tag != tag {
				closeLists(level - 1)
			}
			if n := len(lists); n > 0 && lists[n-1].level == level {
				b.WriteString("</li>")
			} else {
				b.WriteString("<" + tag + ">")
				lists = append(lists, openList{tag: tag, level: level})
			}
			b.WriteString("<li>")
			b.WriteString(spans(blk))
			continue
		}

		closeLists(0)
		r.block(&b, blk)
	}
	closeLists(0)

	return b.String()
}

func listTag(item string) string {
	if item == "number" {
		return "ol"
	}
	return "ul"
}

func (r *Renderer) block(b *strings.Builder, blk models.Block) {
	switch blk.Type {
	case models.BlockTypeBlock:
		tag := styleTag(blk.Style)
		b.WriteString("<" + tag + ">")
		b.WriteString(spans(blk))
		b.WriteString("</" + tag + ">")

	case models.BlockTypeImage:
		img := blk.Image()
		if img == nil || r.images == nil {
			return
		}
		src, ok := r.images(img, ImageWidth, ImageHeight)
		if !ok {
			return
		}
		b.WriteString(`<figure class="pt-image"><img src="`)
		b.WriteString(html.EscapeString(src))
		b.WriteString(`" alt="`)
		b.WriteString(html.EscapeString(img.Alt))
		b.WriteString(`" width="` + strconv.Itoa(ImageWidth) + `" height="` + strconv.Itoa(ImageHeight) + `">`)
		if img.Alt != "" {
			b.WriteString("<figcaption>" + html.EscapeString(img.Alt) + "</figcaption>")
		}
		b.WriteString("</figure>")

	case models.BlockTypeCodeBlock:
		lang := blk.Language
		if lang == "" {
			lang = "text"
		}
		b.WriteString(`<pre class="pt-code"><code class="language-`)
		b.WriteString(html.EscapeString(lang))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(blk.Code))
		b.WriteString("</code></pre>")

	default:
		// Unknown node types fall back to whatever text they carry.
		text := spans(blk)
		if text == "" && blk.Text != "" {
			text = html.EscapeString(blk.Text)
		}
		if text != "" {
			b.WriteString("<p>" + text + "</p>")
		}
	}
}

func styleTag(style string) string {
	switch style {
	case "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		return style
	}
	return "p"
}

var markTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "del",
}

func spans(blk models.Block) string {
	defs := make(map[string]models.MarkDef, len(blk.MarkDefs))
	for _, d := range blk.MarkDefs {
		defs[d.Key] = d
	}

	var b strings.Builder
	for _, sp := range blk.Children {
		var closers []string
		for _, m := range sp.Marks {
			if tag, ok := markTags[m]; ok {
				b.WriteString("<" + tag + ">")
				closers = append(closers, "</"+tag+">")
				continue
			}
			def, ok := defs[m]
			if !ok || def.Type != "link" || def.Href == "" {
				continue
			}
			b.WriteString(`<a href="`)
			b.WriteString(html.EscapeString(def.Href))
			b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			closers = append(closers, "</a>")
		}

		lines := strings.Split(sp.Text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteString("<br>")
			}
			b.WriteString(html.EscapeString(line))
		}

		for i := len(closers) - 1; i >= 0; i-- {
			b.WriteString(closers[i])
		}
	}
	return b.String()
}
