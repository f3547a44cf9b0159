package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	SectionFeature     = "featureSection"
	SectionTestimonial = "testimonialSection"
	SectionCTA         = "ctaSection"
)

// PageSection is one entry of a landing page's section list. The set of
// implementations is closed: FeatureSection, TestimonialSection, CTASection,
// and UnknownSection for tags this build does not know about.
type PageSection interface {
	SectionType() string
	section()
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        *Image `json:"icon,omitempty"`
}

type Testimonial struct {
	Quote   string `json:"quote"`
	Author  string `json:"author"`
	Company string `json:"company,omitempty"`
	Avatar  *Image `json:"avatar,omitempty"`
}

type FeatureSection struct {
	Key      string    `json:"_key,omitempty"`
	Title    string    `json:"title,omitempty"`
	Content  Blocks    `json:"content,omitempty"`
	Features []Feature `json:"features,omitempty"`
}

type TestimonialSection struct {
	Key          string        `json:"_key,omitempty"`
	Title        string        `json:"title,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`
}

type CTASection struct {
	Key             string     `json:"_key,omitempty"`
	Title           string     `json:"title,omitempty"`
	Description     string     `json:"description,omitempty"`
	PrimaryButton   *CTAButton `json:"primaryButton,omitempty"`
	SecondaryButton *CTAButton `json:"secondaryButton,omitempty"`
}

// UnknownSection keeps the tag of a section variant that is not modelled.
type UnknownSection struct {
	Key  string `json:"_key,omitempty"`
	Type string `json:"_type"`
}

func (FeatureSection) SectionType() string     { return SectionFeature }
func (TestimonialSection) SectionType() string { return SectionTestimonial }
func (CTASection) SectionType() string         { return SectionCTA }
func (u UnknownSection) SectionType() string   { return u.Type }

func (FeatureSection) section()     {}
func (TestimonialSection) section() {}
func (CTASection) section()         {}
func (UnknownSection) section()     {}

// Sections decodes a heterogeneous section array by its _type tag.
type Sections []PageSection

func (s *Sections) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode sections: %w", err)
	}

	out := make(Sections, 0, len(raw))
	for _, r := range raw {
		sec, ok := decodeSection(r)
		if ok {
			out = append(out, sec)
		}
	}
	*s = out
	return nil
}

// decodeSection never fails the surrounding document: a section that does
// not decode becomes an UnknownSection carrying whatever tag it had, and a
// null entry is skipped.
func decodeSection(r json.RawMessage) (PageSection, bool) {
	var head struct {
		Key  string `json:"_key"`
		Type string `json:"_type"`
	}
	if err := json.Unmarshal(r, &head); err != nil {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
		return nil, false
	}

	unknown := UnknownSection{Key: head.Key, Type: head.Type}

	switch head.Type {
	case SectionFeature:
		var fs FeatureSection
		if err := json.Unmarshal(r, &fs); err != nil {
			return unknown, true
		}
		return fs, true
	case SectionTestimonial:
		var ts TestimonialSection
		if err := json.Unmarshal(r, &ts); err != nil {
			return unknown, true
		}
		return ts, true
	case SectionCTA:
		var cs CTASection
		if err := json.Unmarshal(r, &cs); err != nil {
			return unknown, true
		}
		return cs, true
	default:
		return unknown, true
	}
}

func (s Sections) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(s))
	for _, sec := range s {
		switch v := sec.(type) {
		case FeatureSection:
			out = append(out, struct {
				Type string `json:"_type"`
				FeatureSection
			}{SectionFeature, v})
		case TestimonialSection:
			out = append(out, struct {
				Type string `json:"_type"`
				TestimonialSection
			}{SectionTestimonial, v})
		case CTASection:
			out = append(out, struct {
				Type string `json:"_type"`
				CTASection
			}{SectionCTA, v})
		case UnknownSection:
			out = append(out, v)
		}
	}
	return json.Marshal(out)
}
