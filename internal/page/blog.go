package page

import (
	"html/template"
	"math"
	"net/url"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/imageurl"
	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/portabletext"
)

const (
	WordsPerMinute = 200
	dateLayout     = "January 2, 2006"

	cardImageWidth   = 600
	cardImageHeight  = 400
	postImageWidth   = 1200
	postImageHeight  = 630
	authorImageSize  = 96
	excerptLength    = 160
	authorBioExcerpt = 140
)

type CategoryLink struct {
	Name  string
	Title string
	URL   string
}

func Category(name string) CategoryLink {
	return CategoryLink{
		Name:  name,
		Title: cases.Title(language.English).String(name),
		URL:   "/blog/category/" + url.PathEscape(name),
	}
}

func categories(names []string) []CategoryLink {
	out := make([]CategoryLink, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, Category(n))
		}
	}
	return out
}

type AuthorCard struct {
	Name    string
	URL     string
	Image   *ImageView
	Excerpt string
}

type PostCard struct {
	Title      string
	URL        string
	Excerpt    string
	Date       string
	DateISO    string
	ReadTime   int
	Image      *ImageView
	Author     *AuthorCard
	Categories []CategoryLink
}

func postURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "/blog/" + url.PathEscape(slug)
}

func authorURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "/authors/" + url.PathEscape(slug)
}

func formatDate(t models.Time) (string, string) {
	if t.IsZero() {
		return "", ""
	}
	return t.Format(dateLayout), t.Format("2006-01-02")
}

func (c *Composer) authorCard(a *models.Author) *AuthorCard {
	if a == nil || a.Name == "" {
		return nil
	}
	return &AuthorCard{
		Name:    a.Name,
		URL:     authorURL(a.Slug.Current),
		Image:   c.image(a.Image, authorImageSize, authorImageSize, 0, a.Name, imageurl.PlaceholderAvatar),
		Excerpt: portabletext.Excerpt(a.Bio, authorBioExcerpt),
	}
}

func (c *Composer) postCard(p models.BlogPost) PostCard {
	date, iso := formatDate(p.PublishedAt)
	excerpt := p.Excerpt
	if excerpt == "" {
		excerpt = portabletext.Excerpt(p.Body, excerptLength)
	}
	return PostCard{
		Title:      first(p.Title, "Untitled"),
		URL:        postURL(p.Slug.Current),
		Excerpt:    excerpt,
		Date:       date,
		DateISO:    iso,
		ReadTime:   int(p.ReadTime),
		Image:      c.image(p.MainImage, cardImageWidth, cardImageHeight, 0, p.Title, imageurl.PlaceholderImage),
		Author:     c.authorCard(p.Author),
		Categories: categories(p.Categories),
	}
}

// ReadTime is the stored estimate, or one computed from the body at
// WordsPerMinute, never less than a minute.
func ReadTime(p models.BlogPost) int {
	if p.ReadTime > 0 {
		return int(p.ReadTime)
	}
	words := portabletext.WordCount(p.Body)
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}

type Pager struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

type BlogListView struct {
	Site       Site
	Heading    string
	Category   *CategoryLink
	Posts      []PostCard
	Categories []CategoryLink
	Pager      *Pager
}

func (c *Composer) BlogList(site Site, page *content.Page[models.BlogPost], cats []string) BlogListView {
	v := BlogListView{
		Site:       site.WithPage("Blog", "", nil, ""),
		Heading:    "Blog",
		Categories: categories(cats),
	}
	if page == nil {
		return v
	}
	for _, p := range page.Items {
		v.Posts = append(v.Posts, c.postCard(p))
	}

	totalPages := 1
	if page.Limit > 0 && page.Total > 0 {
		totalPages = (page.Total + page.Limit - 1) / page.Limit
	}
	pager := &Pager{Page: page.Page, TotalPages: totalPages}
	if page.Page > 1 {
		pager.PrevURL = "/blog?page=" + strconv.Itoa(page.Page-1)
	}
	if page.HasMore {
		pager.NextURL = "/blog?page=" + strconv.Itoa(page.Page+1)
	}
	v.Pager = pager
	return v
}

func (c *Composer) CategoryList(site Site, category string, posts []models.BlogPost) BlogListView {
	cat := Category(category)
	v := BlogListView{
		Site:     site.WithPage(cat.Title, "Posts in "+cat.Title, nil, ""),
		Heading:  cat.Title,
		Category: &cat,
	}
	for _, p := range posts {
		v.Posts = append(v.Posts, c.postCard(p))
	}
	return v
}

type PostView struct {
	Site     Site
	Card     PostCard
	Image    *ImageView
	Body     template.HTML
	ReadTime int
	Author   *AuthorView
	Related  []PostCard
}

func (c *Composer) Post(site Site, p *models.BlogPost, related []models.BlogPost) (PostView, bool) {
	if p == nil {
		return PostView{}, false
	}

	image := c.image(p.MainImage, postImageWidth, postImageHeight, 0, p.Title, "")
	ogImage := ""
	if image != nil {
		ogImage = image.Src
	}
	if seoImg := c.imageURL(seoImage(p.SEO), ogImageWidth, ogImageHeight); seoImg != "" {
		ogImage = seoImg
	}

	v := PostView{
		Site:     site.WithPage(p.Title, p.Excerpt, p.SEO, ogImage),
		Card:     c.postCard(*p),
		Image:    image,
		Body:     c.text.Render(p.Body),
		ReadTime: ReadTime(*p),
	}
	if p.Author != nil && p.Author.Name != "" {
		a := c.author(*p.Author)
		v.Author = &a
	}
	for _, r := range related {
		v.Related = append(v.Related, c.postCard(r))
	}
	return v, true
}

type AuthorView struct {
	Name   string
	URL    string
	Image  *ImageView
	Bio    template.HTML
	Email  string
	Social []SocialLink
}

type AuthorPageView struct {
	Site   Site
	Author AuthorView
	Posts  []PostCard
}

type AuthorsView struct {
	Site    Site
	Authors []AuthorCard
}

func (c *Composer) author(a models.Author) AuthorView {
	return AuthorView{
		Name:   a.Name,
		URL:    authorURL(a.Slug.Current),
		Image:  c.image(a.Image, authorImageSize, authorImageSize, 0, a.Name, imageurl.PlaceholderAvatar),
		Bio:    c.text.Render(a.Bio),
		Email:  a.Email,
		Social: socialLinks(a.SocialLinks),
	}
}

func (c *Composer) AuthorPage(site Site, a *models.Author, posts []models.BlogPost) (AuthorPageView, bool) {
	if a == nil {
		return AuthorPageView{}, false
	}
	v := AuthorPageView{
		Site:   site.WithPage(a.Name, portabletext.Excerpt(a.Bio, excerptLength), nil, ""),
		Author: c.author(*a),
	}
	for _, p := range posts {
		v.Posts = append(v.Posts, c.postCard(p))
	}
	return v, true
}

func (c *Composer) Authors(site Site, authors []models.Author) AuthorsView {
	v := AuthorsView{Site: site.WithPage("Authors", "", nil, "")}
	for i := range authors {
		if card := c.authorCard(&authors[i]); card != nil {
			v.Authors = append(v.Authors, *card)
		}
	}
	return v
}

type SearchHit struct {
	Kind    string
	Title   string
	URL     string
	Excerpt string
	Author  string
	Date    string
}

type SearchView struct {
	Site    Site
	Query   string
	Results []SearchHit
}

func (c *Composer) Search(site Site, query string, results []models.SearchResult) SearchView {
	v := SearchView{
		Site:  site.WithPage("Search", "", nil, ""),
		Query: query,
	}
	for _, r := range results {
		hit := SearchHit{Title: first(r.Title, "Untitled"), Excerpt: r.Excerpt}
		switch r.Type {
		case "blogPost":
			hit.Kind = "Post"
			hit.URL = postURL(r.Slug.Current)
		case "landingPage":
			hit.Kind = "Page"
			if r.Slug.Current != "" {
				hit.URL = "/landing/" + url.PathEscape(r.Slug.Current)
			}
		default:
			continue
		}
		if r.Author != nil {
			hit.Author = r.Author.Name
		}
		hit.Date, _ = formatDate(r.PublishedAt)
		v.Results = append(v.Results, hit)
	}
	return v
}
