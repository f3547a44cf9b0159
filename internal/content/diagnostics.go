package content

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

// Diagnostics summarizes what the dataset holds: a count and the first
// document of each type, plus warnings about singleton types stored more
// than once.
type Diagnostics struct {
	Counts   map[string]int             `json:"data"`
	Samples  map[string]json.RawMessage `json:"sampleData"`
	Warnings []string                   `json:"warnings,omitempty"`
}

var singletonChecks = map[string]string{
	"settings":      "settings",
	"splashScreens": "splashScreen",
}

// Diagnostics runs one query per document type concurrently. Any failing
// query fails the whole report.
func (s *Service) Diagnostics(ctx context.Context) (*Diagnostics, error) {
	results := make([][]json.RawMessage, len(diagnosticQueries))

	g, gctx := errgroup.WithContext(ctx)
	for i, dq := range diagnosticQueries {
		g.Go(func() error {
			var docs []json.RawMessage
			if err := s.fetch.Fetch(gctx, dq.Query, nil, &docs); err != nil {
				return fmt.Errorf("diagnose %s: %w", dq.Name, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Diagnostics{
		Counts:  make(map[string]int, len(diagnosticQueries)),
		Samples: make(map[string]json.RawMessage, len(diagnosticQueries)),
	}
	for i, dq := range diagnosticQueries {
		docs := results[i]
		d.Counts[dq.Name] = len(docs)
		if len(docs) > 0 {
			d.Samples[dq.Name] = docs[0]
		} else {
			d.Samples[dq.Name] = json.RawMessage("null")
		}
		if docType, ok := singletonChecks[dq.Name]; ok && len(docs) > 1 {
			d.Warnings = append(d.Warnings, fmt.Sprintf("%d %s documents found; only the oldest is used", len(docs), docType))
		}
	}
	return d, nil
}

// Violations validates every document of docType against the schema and
// returns the failures keyed by document id.
func (s *Service) Violations(ctx context.Context, docType string) (map[string][]schema.Violation, error) {
	d, ok := schema.Lookup(docType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, docType)
	}

	var docs []map[string]any
	if err := s.fetch.Fetch(ctx, documentsByTypeQuery, cms.Params{"type": docType}, &docs); err != nil {
		return nil, fmt.Errorf("fetch %s documents: %w", docType, err)
	}

	out := map[string][]schema.Violation{}
	for _, doc := range docs {
		if vs := d.Validate(doc); len(vs) > 0 {
			id, _ := doc["_id"].(string)
			out[id] = vs
		}
	}
	return out, nil
}

// Debug is the raw data behind the integration test page.
type Debug struct {
	LandingPage     json.RawMessage
	AllLandingPages json.RawMessage
}

func (s *Service) Debug(ctx context.Context) (*Debug, error) {
	var d Debug
	if err := s.fetch.Fetch(ctx, landingPageQuery, nil, &d.LandingPage); err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}
	if err := s.fetch.Fetch(ctx, allLandingPagesQuery, nil, &d.AllLandingPages); err != nil {
		return nil, fmt.Errorf("fetch landing pages: %w", err)
	}
	return &d, nil
}
