// Package cms is the data access client for the headless CMS HTTP API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/continuous-intelligence/cIV/internal/cache"
	"github.com/continuous-intelligence/cIV/internal/database"
)

type Perspective string

const (
	PerspectivePublished     Perspective = "published"
	PerspectivePreviewDrafts Perspective = "previewDrafts"
)

// Queries longer than this are sent as POST bodies.
const maxGetURLLength = 11 * 1024

const defaultTimeout = 30 * time.Second

// Config is the process-wide connection configuration, built once at start.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
	Timeout    time.Duration
}

func (c Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return errors.New("cms: project id is required")
	case c.Dataset == "":
		return errors.New("cms: dataset is required")
	case c.APIVersion == "":
		return errors.New("cms: api version is required")
	}
	return nil
}

// Params are the variable bindings of a query, sent as $name.
type Params map[string]any

type options struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	snapshots  database.Database
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the API host, for tests and proxies.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCache caches published query results in process.
func WithCache(c *cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithSnapshots persists published query results and serves the last one
// when the API is unreachable.
func WithSnapshots(db database.Database) Option {
	return func(o *options) { o.snapshots = db }
}

type Client struct {
	cfg         Config
	baseURL     string
	token       string
	perspective Perspective
	http        *http.Client
	cache       *cache.Cache
	snapshots   database.Database
}

// Clients holds the three configurations the site uses.
type Clients struct {
	// Public reads published content without a token, through the CDN when
	// configured, and is the only cached client.
	Public *Client
	// Write is authenticated and uncached.
	Write *Client
	// Preview is authenticated, uncached and reads drafts.
	Preview *Client
}

func NewClients(cfg Config, opts ...Option) *Clients {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}

	apiBase := o.baseURL
	publicBase := o.baseURL
	if apiBase == "" {
		apiBase = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
		publicBase = apiBase
		if cfg.UseCDN {
			publicBase = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
		}
	}

	return &Clients{
		Public: &Client{
			cfg:         cfg,
			baseURL:     publicBase,
			perspective: PerspectivePublished,
			http:        o.httpClient,
			cache:       o.cache,
			snapshots:   o.snapshots,
		},
		Write: &Client{
			cfg:         cfg,
			baseURL:     apiBase,
			token:       cfg.Token,
			perspective: PerspectivePublished,
			http:        o.httpClient,
		},
		Preview: &Client{
			cfg:         cfg,
			baseURL:     apiBase,
			token:       cfg.Token,
			perspective: PerspectivePreviewDrafts,
			http:        o.httpClient,
		},
	}
}

// For selects the read client for a request.
func (c *Clients) For(preview bool) *Client {
	if preview {
		return c.Preview
	}
	return c.Public
}

func (c *Client) Perspective() Perspective {
	return c.perspective
}

func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) Cached() bool {
	return c.cache != nil
}

// Invalidate drops every cached result.
func (c *Client) Invalidate() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Fetch runs query with params and decodes the result into out. A query
// matching nothing decodes JSON null, leaving pointer targets nil.
func (c *Client) Fetch(ctx context.Context, query string, params Params, out any) error {
	raw, err := c.FetchRaw(ctx, query, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: "decode result", Err: err}
	}
	return nil
}

// FetchRaw runs query with params and returns the undecoded result.
func (c *Client) FetchRaw(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	encoded, err := encodeParams(params)
	if err != nil {
		return nil, &Error{Op: "encode params", Err: err}
	}

	key := cache.Key(string(c.perspective), query, canonicalParams(encoded))
	if c.cache != nil {
		if raw, ok := c.cache.Get(key); ok {
			return raw, nil
		}
	}

	raw, err := c.query(ctx, query, encoded)
	if err != nil {
		if stale, ok := c.loadSnapshot(ctx, key, err); ok {
			return stale, nil
		}
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, raw)
	}
	if c.snapshots != nil {
		snap := database.Snapshot{Key: key, Query: query, Payload: raw, FetchedAt: time.Now()}
		if err := c.snapshots.SaveSnapshot(ctx, snap); err != nil {
			slog.Warn("Failed to save content snapshot", "error", err)
		}
	}
	return raw, nil
}

func (c *Client) loadSnapshot(ctx context.Context, key string, cause error) (json.RawMessage, bool) {
	if c.snapshots == nil {
		return nil, false
	}
	snap, err := c.snapshots.LoadSnapshot(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrNoSnapshot) {
			slog.Warn("Failed to load content snapshot", "error", err)
		}
		return nil, false
	}
	slog.Warn("Serving stale content snapshot",
		slog.String("fetched_at", snap.FetchedAt.Format(time.RFC3339)),
		slog.Any("cause", cause),
	)
	return snap.Payload, true
}

func (c *Client) endpoint(kind string) string {
	return fmt.Sprintf("%s/v%s/data/%s/%s", c.baseURL, c.cfg.APIVersion, kind, c.cfg.Dataset)
}

func (c *Client) query(ctx context.Context, query string, params map[string]string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", query)
	for name, v := range params {
		q.Set("$"+name, v)
	}
	q.Set("perspective", string(c.perspective))

	getURL := c.endpoint("query") + "?" + q.Encode()

	var req *http.Request
	var err error
	if len(getURL) <= maxGetURLLength {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	} else {
		body, merr := queryBody(query, params)
		if merr != nil {
			return nil, &Error{Op: "encode query", Err: merr}
		}
		postURL := c.endpoint("query") + "?" + url.Values{"perspective": {string(c.perspective)}}.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, &Error{Op: "build request", Err: err}
	}

	body, err := c.do(req, "query")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "decode response", Err: err}
	}
	if len(resp.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return resp.Result, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "civ-site")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Description: apiError(body)}
	}
	return body, nil
}

func encodeParams(params Params) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for name, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		out[name] = string(b)
	}
	return out, nil
}

func canonicalParams(encoded map[string]string) string {
	names := make([]string, 0, len(encoded))
	for n := range encoded {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(encoded[n])
		b.WriteByte('&')
	}
	return b.String()
}

func queryBody(query string, params map[string]string) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(params))
	for name, v := range params {
		raw[name] = json.RawMessage(v)
	}
	return json.Marshal(struct {
		Query  string                     `json:"query"`
		Params map[string]json.RawMessage `json:"params,omitempty"`
	}{query, raw})
}
