package schema

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes the named document types, or all of them when names is
// empty.
func WriteYAML(w io.Writer, names ...string) error {
	docs := Types()
	if len(names) > 0 {
		docs = docs[:0:0]
		for _, n := range names {
			d, ok := Lookup(n)
			if !ok {
				return &UnknownTypeError{Name: n}
			}
			docs = append(docs, d)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"types": docs}); err != nil {
		return err
	}
	return enc.Close()
}

type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return "schema: unknown document type " + e.Name
}
