package models

type Document struct {
	ID        string `json:"_id"`
	Type      string `json:"_type"`
	CreatedAt Time   `json:"_createdAt,omitempty"`
	UpdatedAt Time   `json:"_updatedAt,omitempty"`
	Rev       string `json:"_rev,omitempty"`
}

type Slug struct {
	Current string `json:"current"`
}

type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	OGImage         *Image `json:"ogImage,omitempty"`
	TwitterImage    *Image `json:"twitterImage,omitempty"`
}

type CTAButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type HeroSection struct {
	Headline        string     `json:"headline"`
	Subheadline     string     `json:"subheadline,omitempty"`
	BackgroundImage *Image     `json:"backgroundImage,omitempty"`
	CTAButton       *CTAButton `json:"ctaButton,omitempty"`
}

type LandingPage struct {
	Document
	Title       string       `json:"title"`
	Slug        Slug         `json:"slug"`
	SEO         *SEO         `json:"seo,omitempty"`
	HeroSection *HeroSection `json:"heroSection,omitempty"`
	Sections    Sections     `json:"sections,omitempty"`
}

type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Website   string `json:"website,omitempty"`
}

type Author struct {
	Document
	Name        string       `json:"name"`
	Slug        Slug         `json:"slug"`
	Image       *Image       `json:"image,omitempty"`
	Bio         Blocks       `json:"bio,omitempty"`
	Email       string       `json:"email,omitempty"`
	SocialLinks *SocialLinks `json:"socialLinks,omitempty"`
}

// BlogPost carries its author as a snapshot resolved by the query projection.
type BlogPost struct {
	Document
	Title       string   `json:"title"`
	Slug        Slug     `json:"slug"`
	Author      *Author  `json:"author,omitempty"`
	MainImage   *Image   `json:"mainImage,omitempty"`
	Categories  Strings  `json:"categories,omitempty"`
	PublishedAt Time     `json:"publishedAt"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Body        Blocks   `json:"body,omitempty"`
	SEO         *SEO     `json:"seo,omitempty"`
	Featured    Bool     `json:"featured,omitempty"`
	ReadTime    Int      `json:"readTime,omitempty"`
}

type AnimationSettings struct {
	Duration Float `json:"duration,omitempty"`
	FadeIn   *Bool `json:"fadeIn,omitempty"`
	FadeOut  *Bool `json:"fadeOut,omitempty"`
	Scale    *Bool `json:"scale,omitempty"`
}

type SkipButton struct {
	Show     *Bool  `json:"show,omitempty"`
	Text     string `json:"text,omitempty"`
	Position string `json:"position,omitempty"`
}

type SplashScreen struct {
	Document
	Title             string             `json:"title"`
	IsActive          Bool               `json:"isActive"`
	Logo              *Image             `json:"logo,omitempty"`
	BrandName         string             `json:"brandName"`
	Tagline           string             `json:"tagline,omitempty"`
	BackgroundColor   string             `json:"backgroundColor,omitempty"`
	TextColor         string             `json:"textColor,omitempty"`
	AnimationSettings *AnimationSettings `json:"animationSettings,omitempty"`
	SkipButton        *SkipButton        `json:"skipButton,omitempty"`
	RedirectTo        string             `json:"redirectTo,omitempty"`
}

type Analytics struct {
	GoogleAnalyticsID  string `json:"googleAnalyticsId,omitempty"`
	GoogleTagManagerID string `json:"googleTagManagerId,omitempty"`
	FacebookPixelID    string `json:"facebookPixelId,omitempty"`
}

type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type Maintenance struct {
	Enabled Bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

type Settings struct {
	Document
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Keywords    Strings      `json:"keywords,omitempty"`
	URL         string       `json:"url,omitempty"`
	Logo        *Image       `json:"logo,omitempty"`
	Favicon     *Image       `json:"favicon,omitempty"`
	SocialLinks *SocialLinks `json:"socialLinks,omitempty"`
	SEO         *SEO         `json:"seo,omitempty"`
	Analytics   *Analytics   `json:"analytics,omitempty"`
	Contact     *Contact     `json:"contact,omitempty"`
	Maintenance *Maintenance `json:"maintenance,omitempty"`
}

// SearchResult is the mixed projection returned by the search query.
type SearchResult struct {
	ID          string  `json:"_id"`
	Type        string  `json:"_type"`
	Title       string  `json:"title"`
	Slug        Slug    `json:"slug"`
	Author      *Author `json:"author,omitempty"`
	PublishedAt Time    `json:"publishedAt,omitempty"`
	Excerpt     string  `json:"excerpt,omitempty"`
}
