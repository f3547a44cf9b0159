package schema

const (
	HexColorPattern = `^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`
	SlugPattern     = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	MetaTitleMax       = 60
	MetaDescriptionMax = 160
	SlugMax            = 96
)

var SkipButtonPositions = []string{"top-right", "top-left", "bottom-right", "bottom-left"}

var (
	hexColor = Regex(HexColorPattern, "Please enter a valid hex color")
	slugRule = Regex(SlugPattern, "Slug must be lowercase letters, digits and dashes")
)

func imageField(name, title string) Field {
	return Field{
		Name:  name,
		Title: title,
		Type:  TypeImage,
		Fields: []Field{
			{Name: "alt", Title: "Alternative Text", Type: TypeString},
		},
	}
}

func slugField() Field {
	return Field{
		Name:     "slug",
		Title:    "Slug",
		Type:     TypeSlug,
		Required: true,
		Rules:    []Rule{MaxLength(SlugMax), slugRule},
	}
}

func seoField(title string, withTwitter bool) Field {
	f := Field{
		Name:  "seo",
		Title: title,
		Type:  TypeObject,
		Fields: []Field{
			{Name: "metaTitle", Title: "Meta Title", Type: TypeString, Rules: []Rule{MaxLength(MetaTitleMax)}},
			{Name: "metaDescription", Title: "Meta Description", Type: TypeText, Rules: []Rule{MaxLength(MetaDescriptionMax)}},
			imageField("ogImage", "Open Graph Image"),
		},
	}
	if withTwitter {
		f.Fields = append(f.Fields, imageField("twitterImage", "Twitter Image"))
	}
	return f
}

func buttonField(name, title string) Field {
	return Field{
		Name:  name,
		Title: title,
		Type:  TypeObject,
		Fields: []Field{
			{Name: "text", Title: "Button Text", Type: TypeString},
			{Name: "url", Title: "Button URL", Type: TypeURL},
		},
	}
}

func richText(name, title string) Field {
	return Field{
		Name:  name,
		Title: title,
		Type:  TypeArray,
		Of:    []Member{{Type: TypeBlock}},
	}
}

// Types lists every document type, pages first.
func Types() []Document {
	return []Document{
		LandingPage,
		SplashScreen,
		BlogPost,
		Author,
		Settings,
	}
}

var LandingPage = Document{
	Name:  "landingPage",
	Title: "Landing Page",
	Fields: []Field{
		{Name: "title", Title: "Page Title", Type: TypeString, Required: true},
		slugField(),
		seoField("SEO", false),
		{
			Name:  "heroSection",
			Title: "Hero Section",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "headline", Title: "Headline", Type: TypeString, Required: true},
				{Name: "subheadline", Title: "Subheadline", Type: TypeText},
				imageField("backgroundImage", "Background Image"),
				buttonField("ctaButton", "CTA Button"),
			},
		},
		{
			Name:  "sections",
			Title: "Page Sections",
			Type:  TypeArray,
			Of: []Member{
				{
					Type:  TypeObject,
					Name:  "featureSection",
					Title: "Feature Section",
					Fields: []Field{
						{Name: "title", Title: "Section Title", Type: TypeString},
						richText("content", "Content"),
						{
							Name:  "features",
							Title: "Features",
							Type:  TypeArray,
							Of: []Member{{
								Type: TypeObject,
								Fields: []Field{
									{Name: "title", Title: "Feature Title", Type: TypeString},
									{Name: "description", Title: "Feature Description", Type: TypeText},
									imageField("icon", "Feature Icon"),
								},
							}},
						},
					},
				},
				{
					Type:  TypeObject,
					Name:  "testimonialSection",
					Title: "Testimonial Section",
					Fields: []Field{
						{Name: "title", Title: "Section Title", Type: TypeString},
						{
							Name:  "testimonials",
							Title: "Testimonials",
							Type:  TypeArray,
							Of: []Member{{
								Type: TypeObject,
								Fields: []Field{
									{Name: "quote", Title: "Quote", Type: TypeText},
									{Name: "author", Title: "Author", Type: TypeString},
									{Name: "company", Title: "Company", Type: TypeString},
									imageField("avatar", "Avatar"),
								},
							}},
						},
					},
				},
				{
					Type:  TypeObject,
					Name:  "ctaSection",
					Title: "Call to Action Section",
					Fields: []Field{
						{Name: "title", Title: "Section Title", Type: TypeString},
						{Name: "description", Title: "Description", Type: TypeText},
						buttonField("primaryButton", "Primary Button"),
						buttonField("secondaryButton", "Secondary Button"),
					},
				},
			},
		},
	},
}

var SplashScreen = Document{
	Name:      "splashScreen",
	Title:     "Splash Screen",
	Singleton: true,
	Fields: []Field{
		{Name: "title", Title: "Title", Type: TypeString, Required: true},
		{Name: "isActive", Title: "Enable Splash Screen", Type: TypeBoolean, Initial: true},
		imageField("logo", "Logo"),
		{Name: "brandName", Title: "Brand Name", Type: TypeString, Required: true},
		{Name: "tagline", Title: "Tagline", Type: TypeString},
		{Name: "backgroundColor", Title: "Background Color", Type: TypeString, Rules: []Rule{hexColor}},
		{Name: "textColor", Title: "Text Color", Type: TypeString, Rules: []Rule{hexColor}},
		{
			Name:  "animationSettings",
			Title: "Animation Settings",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "duration", Title: "Duration (seconds)", Type: TypeNumber, Rules: []Rule{Range(1, 10)}, Initial: 3},
				{Name: "fadeIn", Title: "Fade In Animation", Type: TypeBoolean, Initial: true},
				{Name: "fadeOut", Title: "Fade Out Animation", Type: TypeBoolean, Initial: true},
				{Name: "scale", Title: "Scale Animation", Type: TypeBoolean, Initial: false},
			},
		},
		{
			Name:  "skipButton",
			Title: "Skip Button",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "show", Title: "Show Skip Button", Type: TypeBoolean, Initial: true},
				{Name: "text", Title: "Skip Button Text", Type: TypeString, Initial: "Skip"},
				{Name: "position", Title: "Button Position", Type: TypeString, Rules: []Rule{OneOf(SkipButtonPositions...)}, Initial: "top-right"},
			},
		},
		{Name: "redirectTo", Title: "Redirect To", Type: TypeString, Initial: "/landing"},
	},
}

var BlogPost = Document{
	Name:  "blogPost",
	Title: "Blog Post",
	Fields: []Field{
		{Name: "title", Title: "Title", Type: TypeString, Required: true},
		slugField(),
		{Name: "author", Title: "Author", Type: TypeRef, To: "author", Required: true},
		imageField("mainImage", "Main Image"),
		{Name: "categories", Title: "Categories", Type: TypeArray, Of: []Member{{Type: TypeString}}},
		{Name: "publishedAt", Title: "Published At", Type: TypeDatetime, Required: true},
		{Name: "excerpt", Title: "Excerpt", Type: TypeText, Rules: []Rule{MaxLength(200)}},
		{
			Name:  "body",
			Title: "Body",
			Type:  TypeArray,
			Of: []Member{
				{Type: TypeBlock},
				{Type: TypeImage, Name: "image"},
				{Type: TypeObject, Name: "codeBlock", Fields: []Field{
					{Name: "language", Title: "Language", Type: TypeString},
					{Name: "code", Title: "Code", Type: TypeText},
				}},
			},
		},
		seoField("SEO", false),
		{Name: "featured", Title: "Featured", Type: TypeBoolean, Initial: false},
		{Name: "readTime", Title: "Read Time (minutes)", Type: TypeNumber, Rules: []Rule{Range(1, 120)}},
	},
}

var Author = Document{
	Name:  "author",
	Title: "Author",
	Fields: []Field{
		{Name: "name", Title: "Name", Type: TypeString, Required: true},
		slugField(),
		imageField("image", "Image"),
		richText("bio", "Bio"),
		{Name: "email", Title: "Email", Type: TypeEmail},
		{
			Name:  "socialLinks",
			Title: "Social Links",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "twitter", Title: "Twitter", Type: TypeURL},
				{Name: "linkedin", Title: "LinkedIn", Type: TypeURL},
				{Name: "github", Title: "GitHub", Type: TypeURL},
				{Name: "website", Title: "Website", Type: TypeURL},
			},
		},
	},
}

var Settings = Document{
	Name:      "settings",
	Title:     "Settings",
	Singleton: true,
	Fields: []Field{
		{Name: "title", Title: "Site Title", Type: TypeString, Required: true},
		{Name: "description", Title: "Site Description", Type: TypeText, Rules: []Rule{MaxLength(MetaDescriptionMax)}},
		{Name: "keywords", Title: "Keywords", Type: TypeArray, Of: []Member{{Type: TypeString}}, Description: "Keywords for SEO"},
		{Name: "url", Title: "Site URL", Type: TypeURL, Description: "The main URL of your site"},
		imageField("logo", "Logo"),
		{Name: "favicon", Title: "Favicon", Type: TypeImage, Description: "Upload a 32x32 PNG for best results"},
		{
			Name:  "socialLinks",
			Title: "Social Links",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "twitter", Title: "Twitter", Type: TypeURL},
				{Name: "facebook", Title: "Facebook", Type: TypeURL},
				{Name: "instagram", Title: "Instagram", Type: TypeURL},
				{Name: "linkedin", Title: "LinkedIn", Type: TypeURL},
				{Name: "youtube", Title: "YouTube", Type: TypeURL},
				{Name: "github", Title: "GitHub", Type: TypeURL},
			},
		},
		seoField("Default SEO", true),
		{
			Name:  "analytics",
			Title: "Analytics",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "googleAnalyticsId", Title: "Google Analytics ID", Type: TypeString},
				{Name: "googleTagManagerId", Title: "Google Tag Manager ID", Type: TypeString},
				{Name: "facebookPixelId", Title: "Facebook Pixel ID", Type: TypeString},
			},
		},
		{
			Name:  "contact",
			Title: "Contact Information",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "email", Title: "Email", Type: TypeEmail},
				{Name: "phone", Title: "Phone", Type: TypeString},
				{Name: "address", Title: "Address", Type: TypeText},
			},
		},
		{
			Name:  "maintenance",
			Title: "Maintenance Mode",
			Type:  TypeObject,
			Fields: []Field{
				{Name: "enabled", Title: "Enable Maintenance Mode", Type: TypeBoolean, Initial: false},
				{Name: "message", Title: "Maintenance Message", Type: TypeText},
			},
		},
	},
}
