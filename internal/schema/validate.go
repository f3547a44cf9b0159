package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Violation is one failed rule, addressed by a dotted field path.
type Violation struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Validate checks doc against the document type named by its _type. The
// document is the decoded JSON or YAML form, so numbers may arrive as any
// numeric kind.
func Validate(doc map[string]any) []Violation {
	typ, _ := doc["_type"].(string)
	if typ == "" {
		return []Violation{{Path: "_type", Message: "is required"}}
	}
	d, ok := Lookup(typ)
	if !ok {
		return []Violation{{Path: "_type", Message: fmt.Sprintf("unknown document type %q", typ)}}
	}
	return d.Validate(doc)
}

func (d Document) Validate(doc map[string]any) []Violation {
	var out []Violation
	validateFields(d.Fields, doc, "", &out)
	return out
}

func validateFields(fields []Field, obj map[string]any, prefix string, out *[]Violation) {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		v, present := obj[f.Name]
		if !present || v == nil || isBlank(f, v) {
			if f.Required {
				*out = append(*out, Violation{Path: path, Message: "is required"})
			}
			continue
		}
		validateValue(f, v, path, out)
	}
}

func isBlank(f Field, v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		if f.Type == TypeSlug {
			s, _ := t["current"].(string)
			return strings.TrimSpace(s) == ""
		}
	}
	return false
}

func validateValue(f Field, v any, path string, out *[]Violation) {
	bad := func(format string, args ...any) {
		*out = append(*out, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch f.Type {
	case TypeString, TypeText:
		s, ok := v.(string)
		if !ok {
			bad("must be a string")
			return
		}
		applyRules(f.Rules, s, 0, path, out)

	case TypeURL:
		s, ok := v.(string)
		if !ok {
			bad("must be a string")
			return
		}
		if u, err := url.Parse(s); err != nil || u.Scheme == "" || u.Host == "" {
			bad("must be an absolute URL")
		}

	case TypeEmail:
		s, ok := v.(string)
		if !ok {
			bad("must be a string")
			return
		}
		if _, err := mail.ParseAddress(s); err != nil {
			bad("must be an email address")
		}

	case TypeSlug:
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case map[string]any:
			s, _ = t["current"].(string)
		}
		if s == "" {
			bad("must be a slug")
			return
		}
		applyRules(f.Rules, s, 0, path+".current", out)

	case TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			bad("must be a number")
			return
		}
		applyRules(f.Rules, "", n, path, out)

	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			bad("must be a boolean")
		}

	case TypeDatetime:
		s, ok := v.(string)
		if ok {
			if _, err := time.Parse(time.RFC3339, s); err == nil {
				return
			}
		} else if _, ok := v.(time.Time); ok {
			return
		}
		bad("must be an RFC 3339 date-time")

	case TypeImage, TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			bad("must be an object")
			return
		}
		validateFields(f.Fields, m, path, out)

	case TypeRef:
		m, ok := v.(map[string]any)
		if !ok {
			bad("must be a reference")
			return
		}
		if ref, _ := m["_ref"].(string); ref == "" {
			bad("must be a reference")
		}

	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			bad("must be an array")
			return
		}
		for i, item := range items {
			validateMember(f.Of, item, fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}

func validateMember(of []Member, item any, path string, out *[]Violation) {
	if len(of) == 0 {
		return
	}
	m, isObj := item.(map[string]any)
	if !isObj {
		for _, mem := range of {
			if mem.Type == TypeString {
				if _, ok := item.(string); ok {
					return
				}
			}
		}
		*out = append(*out, Violation{Path: path, Message: "unexpected value"})
		return
	}

	typ, _ := m["_type"].(string)
	for _, mem := range of {
		switch {
		case mem.Name != "" && mem.Name == typ:
			validateFields(mem.Fields, m, path, out)
			return
		case mem.Name == "" && mem.Type == TypeObject:
			validateFields(mem.Fields, m, path, out)
			return
		case mem.Type == TypeBlock && typ == "block":
			return
		}
	}
	// Unrecognised member types are tolerated; readers skip them.
}

func applyRules(rules []Rule, s string, n float64, path string, out *[]Violation) {
	for _, r := range rules {
		ok := true
		switch r.Kind {
		case RuleMaxLength:
			ok = float64(utf8.RuneCountInString(s)) <= r.Max
		case RuleRange:
			ok = n >= r.Min && n <= r.Max
		case RuleRegex:
			re := r.re
			if re == nil {
				var err error
				if re, err = regexp.Compile(r.Pattern); err != nil {
					continue
				}
			}
			ok = re.MatchString(s)
		case RuleOneOf:
			ok = false
			for _, v := range r.Values {
				if v == s {
					ok = true
					break
				}
			}
		}
		if !ok {
			*out = append(*out, Violation{Path: path, Message: r.String()})
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
