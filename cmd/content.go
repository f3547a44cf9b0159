package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/content"
	"github.com/continuous-intelligence/cIV/internal/schema"
	"github.com/continuous-intelligence/cIV/internal/seed"
)

var (
	contentPage    int
	contentLimit   int
	recentLimit    int
	contentPreview bool
	contentFormat  string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and edit documents in the CMS",
}

func newClients() (*cms.Clients, error) {
	cfg := cmsConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cms.NewClients(cfg), nil
}

func readService() (*content.Service, error) {
	clients, err := newClients()
	if err != nil {
		return nil, err
	}
	return content.New(clients.For(contentPreview)), nil
}

func printResult(v any) error {
	switch contentFormat {
	case "yaml":
		// Round-trip through JSON so raw documents print as YAML mappings.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(doc)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

var contentListCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List documents of a type, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := readService()
		if err != nil {
			return err
		}
		page, err := svc.ContentByType(cmd.Context(), args[0], contentPage, contentLimit)
		if err != nil {
			return err
		}
		return printResult(page)
	},
}

var contentCountCmd = &cobra.Command{
	Use:   "count <type>...",
	Short: "Count documents per type",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := readService()
		if err != nil {
			return err
		}
		counts := make(map[string]int, len(args))
		for _, docType := range args {
			n, err := svc.Count(cmd.Context(), docType)
			if err != nil {
				return err
			}
			counts[docType] = n
		}
		return printResult(counts)
	},
}

var contentRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently published posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := readService()
		if err != nil {
			return err
		}
		posts, err := svc.RecentPosts(cmd.Context(), recentLimit)
		if err != nil {
			return err
		}
		return printResult(posts)
	},
}

var contentCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate stored documents against the schema",
	Long: `Check reports every document type that has no content yet and every
stored document that fails validation. It exits non-zero on violations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := readService()
		if err != nil {
			return err
		}
		failed := 0
		for _, d := range schema.Types() {
			docType := d.Name
			ok, err := svc.HasContent(cmd.Context(), docType)
			if err != nil {
				return err
			}
			if !ok {
				slog.Warn("No documents of type", slog.String("type", docType))
				continue
			}
			found, err := svc.Violations(cmd.Context(), docType)
			if err != nil {
				return err
			}
			for id, vs := range found {
				for _, v := range vs {
					slog.Error("Invalid document", slog.String("type", docType), slog.String("id", id), slog.String("violation", v.String()))
					failed++
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d schema violations", failed)
		}
		slog.Info("All documents are valid")
		return nil
	},
}

var contentSetCmd = &cobra.Command{
	Use:   "set <id> <field=value>...",
	Short: "Set top-level fields on a document",
	Long: `Set loads the document, converts each value to the type its schema
field declares and writes the change only if the updated document still
validates. Numbers, booleans, comma separated string lists, slugs and
plain strings can be set this way.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clients, err := newClients()
		if err != nil {
			return err
		}
		if !clients.Write.Authenticated() {
			return fmt.Errorf("writing documents: %w", cms.ErrUnauthorized)
		}
		res, err := setFields(cmd.Context(), clients.Write, args[0], args[1:])
		if err != nil {
			return err
		}
		slog.Info("Applied mutations", slog.Int("count", len(res.Results)), slog.String("transaction_id", res.TransactionID))
		return nil
	},
}

const documentQuery = `*[_id == $id][0]`

var errDocumentNotFound = errors.New("document not found")

type documentStore interface {
	Fetch(ctx context.Context, query string, params cms.Params, out any) error
	Mutate(ctx context.Context, mutations ...cms.Mutation) (*cms.MutateResult, error)
}

// setFields patches the given field=value assignments onto document id.
// The patch is only sent when the updated document passes validation.
func setFields(ctx context.Context, store documentStore, id string, assignments []string) (*cms.MutateResult, error) {
	var doc map[string]any
	if err := store.Fetch(ctx, documentQuery, cms.Params{"id": id}, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", errDocumentNotFound, id)
	}
	typ, _ := doc["_type"].(string)
	def, ok := schema.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", content.ErrUnknownType, typ)
	}

	set := make(map[string]any, len(assignments))
	for _, kv := range assignments {
		k, raw, ok := strings.Cut(kv, "=")
		if !ok || k == "" || strings.HasPrefix(k, "_") {
			return nil, fmt.Errorf("invalid assignment %q", kv)
		}
		f, ok := def.Field(k)
		if !ok {
			return nil, fmt.Errorf("%s has no field %q", typ, k)
		}
		v, err := fieldValue(f, raw)
		if err != nil {
			return nil, err
		}
		set[k] = v
		doc[k] = v
	}

	if vs := def.Validate(doc); len(vs) > 0 {
		return nil, &seed.InvalidDocumentError{ID: id, Type: typ, Violations: vs}
	}
	return store.Mutate(ctx, cms.PatchSet(id, set))
}

// fieldValue converts a command line value to the JSON shape of field f.
func fieldValue(f schema.Field, raw string) (any, error) {
	switch f.Type {
	case schema.TypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.Name, raw)
		}
		return n, nil
	case schema.TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a boolean", f.Name, raw)
		}
		return b, nil
	case schema.TypeSlug:
		return map[string]any{"_type": "slug", "current": raw}, nil
	case schema.TypeArray:
		if len(f.Of) != 1 || f.Of[0].Type != schema.TypeString {
			break
		}
		items := []any{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	case schema.TypeString, schema.TypeText, schema.TypeURL, schema.TypeEmail, schema.TypeDatetime:
		return raw, nil
	}
	return nil, fmt.Errorf("%s: %s fields cannot be set from the command line", f.Name, f.Type)
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mutations := make([]cms.Mutation, len(args))
		for i, id := range args {
			mutations[i] = cms.Delete(id)
		}
		return mutate(cmd, mutations...)
	},
}

func mutate(cmd *cobra.Command, mutations ...cms.Mutation) error {
	clients, err := newClients()
	if err != nil {
		return err
	}
	if !clients.Write.Authenticated() {
		return fmt.Errorf("writing documents: %w", cms.ErrUnauthorized)
	}
	res, err := clients.Write.Mutate(cmd.Context(), mutations...)
	if err != nil {
		return err
	}
	slog.Info("Applied mutations", slog.Int("count", len(res.Results)), slog.String("transaction_id", res.TransactionID))
	return nil
}

func init() {
	contentCmd.PersistentFlags().BoolVar(&contentPreview, "drafts", false, "read drafts instead of published content")
	contentCmd.PersistentFlags().StringVarP(&contentFormat, "output", "o", "json", "output format (json or yaml)")
	contentListCmd.Flags().IntVar(&contentPage, "page", 1, "page number")
	contentListCmd.Flags().IntVar(&contentLimit, "limit", content.DefaultPageLimit, "documents per page")
	contentRecentCmd.Flags().IntVar(&recentLimit, "limit", content.DefaultRecentLimit, "number of posts")

	contentCmd.AddCommand(contentListCmd, contentCountCmd, contentRecentCmd, contentCheckCmd, contentSetCmd, contentDeleteCmd)
	rootCmd.AddCommand(contentCmd)
}
