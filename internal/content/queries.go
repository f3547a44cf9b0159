package content

// Image fields are projected with the asset dereferenced so the renderer can
// use the CDN URL directly.
const imageProjection = `{
    asset->{
      _id,
      url
    },
    alt,
    hotspot,
    crop
  }`

const seoProjection = `seo {
    metaTitle,
    metaDescription,
    ogImage ` + imageProjection + `
  }`

const landingPageProjection = `{
  _id,
  _type,
  _createdAt,
  _updatedAt,
  title,
  slug,
  ` + seoProjection + `,
  heroSection {
    headline,
    subheadline,
    backgroundImage ` + imageProjection + `,
    ctaButton {
      text,
      url
    }
  },
  sections[] {
    _type,
    _key,
    _type == "featureSection" => {
      title,
      content,
      features[] {
        title,
        description,
        icon ` + imageProjection + `
      }
    },
    _type == "testimonialSection" => {
      title,
      testimonials[] {
        quote,
        author,
        company,
        avatar ` + imageProjection + `
      }
    },
    _type == "ctaSection" => {
      title,
      description,
      primaryButton {
        text,
        url
      },
      secondaryButton {
        text,
        url
      }
    }
  }
}`

const landingPageQuery = `*[_type == "landingPage"] | order(_createdAt asc) [0] ` + landingPageProjection

const landingPageBySlugQuery = `*[_type == "landingPage" && slug.current == $slug][0] ` + landingPageProjection

const postCardProjection = `{
  _id,
  _type,
  title,
  slug,
  author-> {
    _id,
    name,
    slug,
    image ` + imageProjection + `
  },
  mainImage ` + imageProjection + `,
  categories,
  publishedAt,
  excerpt,
  featured,
  readTime
}`

const blogPostsQuery = `*[_type == "blogPost"] | order(publishedAt desc) ` + postCardProjection

const blogPostQuery = `*[_type == "blogPost" && slug.current == $slug][0] {
  _id,
  _type,
  _createdAt,
  _updatedAt,
  title,
  slug,
  author-> {
    _id,
    name,
    slug,
    image ` + imageProjection + `,
    bio,
    email,
    socialLinks
  },
  mainImage ` + imageProjection + `,
  categories,
  publishedAt,
  excerpt,
  body,
  ` + seoProjection + `,
  featured,
  readTime
}`

const featuredBlogPostsQuery = `*[_type == "blogPost" && featured == true] | order(publishedAt desc) [0...3] ` + postCardProjection

const categoryQuery = `*[_type == "blogPost" && $category in categories] | order(publishedAt desc) ` + postCardProjection

// Candidates only; ranking by overlap happens after the fetch.
const relatedPostsQuery = `*[_type == "blogPost" && _id != $currentId && count(categories[@ in $categories]) > 0] | order(publishedAt desc) {
  _id,
  _type,
  title,
  slug,
  author-> {
    name
  },
  mainImage ` + imageProjection + `,
  categories,
  publishedAt,
  excerpt,
  readTime,
  "overlap": count(categories[@ in $categories])
}`

const authorProjection = `{
  _id,
  _type,
  name,
  slug,
  image ` + imageProjection + `,
  bio,
  email,
  socialLinks
}`

const authorQuery = `*[_type == "author" && slug.current == $slug][0] ` + authorProjection

const authorsQuery = `*[_type == "author"] | order(name asc) ` + authorProjection

const authorPostsQuery = `*[_type == "blogPost" && author._ref == $authorId] | order(publishedAt desc) ` + postCardProjection

const splashScreenQuery = `{
  "doc": *[_type == "splashScreen"] | order(_createdAt asc) [0] {
    _id,
    _type,
    title,
    isActive,
    logo ` + imageProjection + `,
    brandName,
    tagline,
    backgroundColor,
    textColor,
    animationSettings {
      duration,
      fadeIn,
      fadeOut,
      scale
    },
    skipButton {
      show,
      text,
      position
    },
    redirectTo
  },
  "count": count(*[_type == "splashScreen"])
}`

const settingsQuery = `{
  "doc": *[_type == "settings"] | order(_createdAt asc) [0] {
    _id,
    _type,
    title,
    description,
    keywords,
    url,
    logo ` + imageProjection + `,
    favicon ` + imageProjection + `,
    socialLinks,
    seo {
      metaTitle,
      metaDescription,
      ogImage ` + imageProjection + `,
      twitterImage ` + imageProjection + `
    },
    analytics,
    contact,
    maintenance
  },
  "count": count(*[_type == "settings"])
}`

const searchQuery = `*[_type in ["blogPost", "landingPage"] && (title match $searchTerm || pt::text(body) match $searchTerm)] | order(_updatedAt desc) {
  _id,
  _type,
  title,
  slug,
  _type == "blogPost" => {
    author-> {
      name
    },
    publishedAt,
    excerpt
  }
}`

const categoriesQuery = `*[_type == "blogPost" && defined(categories)].categories[]`

// Slice bounds are formatted in; both are ints.
const recentPostsQuery = `*[_type == "blogPost"] | order(publishedAt desc) [0...%d] {
  _id,
  _type,
  title,
  slug,
  author-> {
    name
  },
  publishedAt,
  excerpt
}`

const documentsByTypeQuery = `*[_type == $type]`

const countByTypeQuery = `count(*[_type == $type])`

const contentByTypeQuery = `*[_type == $type] | order(_createdAt desc) [%d...%d]`

const blogPostsPageQuery = `*[_type == "blogPost"] | order(publishedAt desc) [%d...%d] ` + postCardProjection

// Diagnostic queries, one per document type.
var diagnosticQueries = []struct {
	Name  string
	Query string
}{
	{"settings", `*[_type == "settings"]{ _id, title, description, seo, socialLinks, contact }`},
	{"authors", `*[_type == "author"]{ _id, name, "slug": slug.current, email, socialLinks }`},
	{"splashScreens", `*[_type == "splashScreen"]{ _id, title, brandName, tagline, isActive, backgroundColor, textColor, redirectTo }`},
	{"landingPages", `*[_type == "landingPage"]{ _id, title, "slug": slug.current, seo, heroSection }`},
	{"blogPosts", `*[_type == "blogPost"]{ _id, title, "slug": slug.current, excerpt, categories, featured, readTime, seo }`},
}

const allLandingPagesQuery = `*[_type == "landingPage"] {
  _id,
  title,
  slug,
  heroSection {
    headline,
    subheadline,
    backgroundImage ` + imageProjection + `
  }
}`
