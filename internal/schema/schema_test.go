package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func paths(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Path)
	}
	return out
}

func TestTypes(t *testing.T) {
	names := map[string]bool{}
	for _, d := range Types() {
		assert.False(t, names[d.Name], "duplicate type %s", d.Name)
		names[d.Name] = true
	}
	for _, n := range []string{"landingPage", "splashScreen", "blogPost", "author", "settings"} {
		assert.True(t, names[n], n)
	}

	settings, ok := Lookup("settings")
	require.True(t, ok)
	assert.True(t, settings.Singleton)
	splash, _ := Lookup("splashScreen")
	assert.True(t, splash.Singleton)
	post, _ := Lookup("blogPost")
	assert.False(t, post.Singleton)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestValidateRequired(t *testing.T) {
	vs := Validate(map[string]any{"_type": "blogPost"})
	assert.ElementsMatch(t, []string{"title", "slug", "author", "publishedAt"}, paths(vs))

	vs = Validate(map[string]any{
		"_type":       "blogPost",
		"title":       "  ",
		"slug":        map[string]any{"current": "hello-world"},
		"author":      map[string]any{"_type": "reference", "_ref": "author-1"},
		"publishedAt": "2024-03-01T10:00:00Z",
	})
	assert.Equal(t, []string{"title"}, paths(vs))
}

func TestValidateUnknownType(t *testing.T) {
	vs := Validate(map[string]any{"title": "x"})
	require.Len(t, vs, 1)
	assert.Equal(t, "_type", vs[0].Path)

	vs = Validate(map[string]any{"_type": "page"})
	require.Len(t, vs, 1)
	assert.Contains(t, vs[0].Message, "unknown document type")
}

func TestValidateHexColor(t *testing.T) {
	base := func(bg string) map[string]any {
		return map[string]any{
			"_type":           "splashScreen",
			"title":           "Splash",
			"brandName":       "cIV",
			"backgroundColor": bg,
		}
	}

	for _, ok := range []string{"#fff", "#FFFFFF", "#1a2B3c"} {
		assert.Empty(t, Validate(base(ok)), ok)
	}
	for _, bad := range []string{"fff", "#ffff", "#gggggg", "red"} {
		vs := Validate(base(bad))
		require.Len(t, vs, 1, bad)
		assert.Equal(t, "backgroundColor", vs[0].Path)
		assert.Equal(t, "Please enter a valid hex color", vs[0].Message)
	}
}

func TestValidateRangeAndEnum(t *testing.T) {
	doc := map[string]any{
		"_type":     "splashScreen",
		"title":     "Splash",
		"brandName": "cIV",
		"animationSettings": map[string]any{
			"duration": 11,
		},
		"skipButton": map[string]any{
			"position": "middle",
		},
	}
	vs := Validate(doc)
	assert.ElementsMatch(t, []string{"animationSettings.duration", "skipButton.position"}, paths(vs))

	doc["animationSettings"] = map[string]any{"duration": 2.5}
	doc["skipButton"] = map[string]any{"position": "bottom-left"}
	assert.Empty(t, Validate(doc))

	doc["animationSettings"] = map[string]any{"duration": "fast"}
	vs = Validate(doc)
	require.Len(t, vs, 1)
	assert.Equal(t, "must be a number", vs[0].Message)
}

func TestValidateMaxLength(t *testing.T) {
	long := make([]byte, MetaDescriptionMax+1)
	for i := range long {
		long[i] = 'a'
	}
	doc := map[string]any{
		"_type": "landingPage",
		"title": "Home",
		"slug":  map[string]any{"current": "home"},
		"seo": map[string]any{
			"metaTitle":       "Fine",
			"metaDescription": string(long),
		},
	}
	vs := Validate(doc)
	require.Len(t, vs, 1)
	assert.Equal(t, "seo.metaDescription", vs[0].Path)
	assert.Equal(t, "at most 160 characters", vs[0].Message)

	// Runes, not bytes.
	doc["seo"] = map[string]any{"metaTitle": string(bytes.Repeat([]byte("é"), MetaTitleMax))}
	assert.Empty(t, Validate(doc))
}

func TestValidateSlugAndSections(t *testing.T) {
	doc := map[string]any{
		"_type": "landingPage",
		"title": "Home",
		"slug":  map[string]any{"current": "Not A Slug"},
		"sections": []any{
			map[string]any{"_type": "featureSection", "title": "Features", "features": []any{
				map[string]any{"title": "Fast", "description": "Very"},
			}},
			map[string]any{"_type": "ctaSection", "primaryButton": map[string]any{"text": "Go", "url": "not-a-url"}},
			map[string]any{"_type": "carousel"},
		},
	}
	vs := Validate(doc)
	assert.ElementsMatch(t, []string{"slug.current", "sections[1].primaryButton.url"}, paths(vs))
}

func TestValidateSettings(t *testing.T) {
	doc := map[string]any{
		"_type":    "settings",
		"title":    "cIV",
		"keywords": []any{"analytics", 3},
		"contact":  map[string]any{"email": "nobody"},
		"maintenance": map[string]any{
			"enabled": "yes",
		},
	}
	vs := Validate(doc)
	assert.ElementsMatch(t, []string{"keywords[1]", "contact.email", "maintenance.enabled"}, paths(vs))
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, "settings"))

	var out struct {
		Types []Document `yaml:"types"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Types, 1)
	assert.Equal(t, "settings", out.Types[0].Name)
	assert.True(t, out.Types[0].Singleton)
	_, ok := out.Types[0].Field("maintenance")
	assert.True(t, ok)

	buf.Reset()
	require.NoError(t, WriteYAML(&buf))
	assert.Contains(t, buf.String(), "name: landingPage")
	assert.Contains(t, buf.String(), "kind: regex")

	var unknown *UnknownTypeError
	err := WriteYAML(&buf, "page")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "page", unknown.Name)
}
