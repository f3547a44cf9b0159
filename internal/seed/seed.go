// Package seed loads documents from a YAML file, validates them against the
// content schema and writes them to the CMS in one transaction.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

var ErrDuplicateSingleton = errors.New("more than one document of a singleton type")

// File is the seed file layout.
type File struct {
	Documents []map[string]any `yaml:"documents"`
}

func Load(r io.Reader) ([]map[string]any, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return f.Documents, nil
}

// InvalidDocumentError lists the violations of one seed document.
type InvalidDocumentError struct {
	Index      int
	ID         string
	Type       string
	Violations []schema.Violation
}

func (e *InvalidDocumentError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	name := e.ID
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("document %s (%s): %s", name, e.Type, strings.Join(parts, "; "))
}

type Options struct {
	// DryRun stops after validation.
	DryRun bool
	// KeepExisting leaves documents that already exist untouched instead of
	// replacing them.
	KeepExisting bool
}

// Plan validates docs and turns them into mutations. Documents without an
// _id get one: singletons use their type name so a second seed replaces
// the first, everything else gets a random UUID.
func Plan(docs []map[string]any, opts Options) ([]cms.Mutation, error) {
	var errs []error
	singletons := map[string]int{}

	for i, doc := range docs {
		typ, _ := doc["_type"].(string)
		id, _ := doc["_id"].(string)
		if vs := schema.Validate(doc); len(vs) > 0 {
			errs = append(errs, &InvalidDocumentError{Index: i, ID: id, Type: typ, Violations: vs})
		}
		if d, ok := schema.Lookup(typ); ok && d.Singleton {
			singletons[typ]++
			if singletons[typ] == 2 {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSingleton, typ))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	mutations := make([]cms.Mutation, 0, len(docs))
	for _, doc := range docs {
		if id, _ := doc["_id"].(string); id == "" {
			typ := doc["_type"].(string)
			if d, _ := schema.Lookup(typ); d.Singleton {
				doc["_id"] = typ
			} else {
				doc["_id"] = uuid.NewString()
			}
		}
		if opts.KeepExisting {
			mutations = append(mutations, cms.CreateIfNotExists(doc))
		} else {
			mutations = append(mutations, cms.CreateOrReplace(doc))
		}
	}
	return mutations, nil
}

type Mutator interface {
	Mutate(ctx context.Context, mutations ...cms.Mutation) (*cms.MutateResult, error)
}

// Run loads, validates and writes a seed file.
func Run(ctx context.Context, m Mutator, r io.Reader, opts Options) (*cms.MutateResult, int, error) {
	docs, err := Load(r)
	if err != nil {
		return nil, 0, err
	}
	mutations, err := Plan(docs, opts)
	if err != nil {
		return nil, 0, err
	}
	if opts.DryRun {
		return &cms.MutateResult{}, len(mutations), nil
	}
	res, err := m.Mutate(ctx, mutations...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to write documents: %w", err)
	}
	return res, len(mutations), nil
}
