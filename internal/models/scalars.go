package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The scalar types below decode whatever the CMS holds for a field without
// failing the enclosing document. A value of the wrong shape decodes to the
// zero value.

// Int accepts a JSON number or a numeric string.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	*i = 0
	switch v := scalar(b).(type) {
	case float64:
		*i = Int(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*i = Int(f)
		}
	}
	return nil
}

// Float accepts a JSON number or a numeric string.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = 0
	switch v := scalar(b).(type) {
	case float64:
		*f = Float(v)
	case string:
		if p, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*f = Float(p)
		}
	}
	return nil
}

// Bool accepts a JSON boolean, "true"/"false" style strings and numbers.
type Bool bool

func (t *Bool) UnmarshalJSON(b []byte) error {
	*t = false
	switch v := scalar(b).(type) {
	case bool:
		*t = Bool(v)
	case float64:
		*t = v != 0
	case string:
		if p, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*t = Bool(p)
		}
	}
	return nil
}

// Strings accepts an array of strings or a single comma separated string.
// Non-string array members and blank entries are dropped.
type Strings []string

func (s *Strings) UnmarshalJSON(b []byte) error {
	*s = nil
	switch v := scalar(b).(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*s = append(*s, part)
			}
		}
	case []any:
		for _, m := range v {
			if str, ok := m.(string); ok && strings.TrimSpace(str) != "" {
				*s = append(*s, str)
			}
		}
	}
	return nil
}

func scalar(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return v
}
