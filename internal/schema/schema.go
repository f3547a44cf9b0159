// Package schema declares the content document types and the rules the
// authoring side enforces when a document is saved.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeSlug     FieldType = "slug"
	TypeURL      FieldType = "url"
	TypeEmail    FieldType = "email"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDatetime FieldType = "datetime"
	TypeImage    FieldType = "image"
	TypeObject   FieldType = "object"
	TypeArray    FieldType = "array"
	TypeBlock    FieldType = "block"
	TypeRef      FieldType = "reference"
)

// Document describes one document type.
type Document struct {
	Name      string  `yaml:"name"`
	Title     string  `yaml:"title"`
	Singleton bool    `yaml:"singleton,omitempty"`
	Fields    []Field `yaml:"fields"`
}

// Field describes one field. Object fields nest Fields; array fields list
// the member shapes they accept in Of.
type Field struct {
	Name        string    `yaml:"name"`
	Title       string    `yaml:"title,omitempty"`
	Type        FieldType `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Required    bool      `yaml:"required,omitempty"`
	Rules       []Rule    `yaml:"rules,omitempty"`
	Fields      []Field   `yaml:"fields,omitempty"`
	Of          []Member  `yaml:"of,omitempty"`
	To          string    `yaml:"to,omitempty"`
	Initial     any       `yaml:"initial,omitempty"`
}

// Member is an accepted array element shape. Named object members are
// discriminated by their _type.
type Member struct {
	Type   FieldType `yaml:"type"`
	Name   string    `yaml:"name,omitempty"`
	Title  string    `yaml:"title,omitempty"`
	Fields []Field   `yaml:"fields,omitempty"`
}

type RuleKind string

const (
	RuleMaxLength RuleKind = "maxLength"
	RuleRange     RuleKind = "range"
	RuleRegex     RuleKind = "regex"
	RuleOneOf     RuleKind = "oneOf"
)

// Rule is a single constraint. Only the fields relevant to Kind are set.
type Rule struct {
	Kind    RuleKind `yaml:"kind"`
	Max     float64  `yaml:"max,omitempty"`
	Min     float64  `yaml:"min,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	Values  []string `yaml:"values,omitempty"`
	Message string   `yaml:"message,omitempty"`

	re *regexp.Regexp
}

func MaxLength(n int) Rule {
	return Rule{Kind: RuleMaxLength, Max: float64(n)}
}

func Range(min, max float64) Rule {
	return Rule{Kind: RuleRange, Min: min, Max: max}
}

func Regex(pattern, message string) Rule {
	return Rule{Kind: RuleRegex, Pattern: pattern, Message: message, re: regexp.MustCompile(pattern)}
}

func OneOf(values ...string) Rule {
	return Rule{Kind: RuleOneOf, Values: values}
}

func (r Rule) String() string {
	switch r.Kind {
	case RuleMaxLength:
		return fmt.Sprintf("at most %d characters", int(r.Max))
	case RuleRange:
		return fmt.Sprintf("between %g and %g", r.Min, r.Max)
	case RuleRegex:
		if r.Message != "" {
			return r.Message
		}
		return "must match " + r.Pattern
	case RuleOneOf:
		return "one of " + strings.Join(r.Values, ", ")
	}
	return string(r.Kind)
}

// Lookup returns the document type named name.
func Lookup(name string) (Document, bool) {
	for _, d := range Types() {
		if d.Name == name {
			return d, true
		}
	}
	return Document{}, false
}

// Field returns the top-level field named name.
func (d Document) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
