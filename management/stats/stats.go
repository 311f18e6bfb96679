package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/s0up4200/godoof/management"
)

const basePath = "/api/v2/stats"

// API is the part of the management client the stats endpoints use.
type API interface {
	Get(ctx context.Context, operation, path string, params url.Values, result any) error
	Stream(ctx context.Context, operation, method, path string, params url.Values) (io.ReadCloser, error)
}

var _ API = (*management.Client)(nil)

// Client requests statistics reports from the management API.
type Client struct {
	api API
}

// NewClient creates a stats client on top of a management client.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// Report is a statistics response as returned by the API.
type Report struct {
	Format Format
	Data   []byte
}

// Decode unmarshals a JSON report into v.
func (r *Report) Decode(v any) error {
	if r.Format == FormatCSV {
		return ErrNotJSON
	}
	return json.Unmarshal(r.Data, v)
}

// String returns the raw report body.
func (r *Report) String() string {
	return string(r.Data)
}

// Banners reports banner impressions and clicks.
func (c *Client) Banners(ctx context.Context, opts BannersOptions) (*Report, error) {
	return c.fetch(ctx, "stats.banners", opts.Range, opts.Format, opts.values(), "banners")
}

// Checkouts reports checkouts over time.
func (c *Client) Checkouts(ctx context.Context, opts TimelineOptions) (*Report, error) {
	return c.fetch(ctx, "stats.checkouts", opts.Range, opts.Format, opts.values(), "checkouts")
}

// Clicks reports result clicks over time.
func (c *Client) Clicks(ctx context.Context, opts TimelineOptions) (*Report, error) {
	return c.fetch(ctx, "stats.clicks", opts.Range, opts.Format, opts.values(), "clicks")
}

// ClicksByQuery reports clicks on results of one search term. The term is
// sent in the path only.
func (c *Client) ClicksByQuery(ctx context.Context, query string, opts TimelineOptions) (*Report, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query", ErrMissingArgument)
	}
	return c.fetch(ctx, "stats.clicks_by_query", opts.Range, opts.Format, opts.values(), "clicks", "by-query", query)
}

// ClickSearches reports the top searches that led to clicks on the item
// identified by dfid.
func (c *Client) ClickSearches(ctx context.Context, dfid string, opts DeviceOptions) (*Report, error) {
	if dfid == "" {
		return nil, fmt.Errorf("%w: dfid", ErrMissingArgument)
	}
	return c.fetch(ctx, "stats.click_searches", opts.Range, opts.Format, opts.values(), "clicks", dfid, "searches", "top")
}

// ClicksTop reports the most clicked items.
func (c *Client) ClicksTop(ctx context.Context, opts ClicksTopOptions) (*Report, error) {
	return c.fetch(ctx, "stats.clicks_top", opts.Range, opts.Format, opts.values(), "clicks", "top")
}

// CustomResults reports custom result impressions.
func (c *Client) CustomResults(ctx context.Context, opts CustomResultsOptions) (*Report, error) {
	return c.fetch(ctx, "stats.custom_results", opts.Range, opts.Format, opts.values(), "custom-results")
}

// Facets reports facet usage.
func (c *Client) Facets(ctx context.Context, opts FacetsOptions) (*Report, error) {
	return c.fetch(ctx, "stats.facets", opts.Range, opts.Format, opts.values(), "facets")
}

// FacetsTop reports the most used facets.
func (c *Client) FacetsTop(ctx context.Context, opts FacetsOptions) (*Report, error) {
	return c.fetch(ctx, "stats.facets_top", opts.Range, opts.Format, opts.values(), "facets", "top")
}

// Inits reports search session starts over time.
func (c *Client) Inits(ctx context.Context, opts TimelineOptions) (*Report, error) {
	return c.fetch(ctx, "stats.inits", opts.Range, opts.Format, opts.values(), "inits")
}

// InitsLocations reports where search sessions started.
func (c *Client) InitsLocations(ctx context.Context, opts DeviceOptions) (*Report, error) {
	return c.fetch(ctx, "stats.inits_locations", opts.Range, opts.Format, opts.values(), "inits", "locations")
}

// Redirects reports redirection hits.
func (c *Client) Redirects(ctx context.Context, opts RedirectsOptions) (*Report, error) {
	return c.fetch(ctx, "stats.redirects", opts.Range, opts.Format, opts.values(), "redirects")
}

// Searches reports searches over time.
func (c *Client) Searches(ctx context.Context, opts SearchesOptions) (*Report, error) {
	return c.fetch(ctx, "stats.searches", opts.Range, opts.Format, opts.values(), "searches")
}

// SearchesTop reports the most frequent search terms.
func (c *Client) SearchesTop(ctx context.Context, opts SearchesTopOptions) (*Report, error) {
	return c.fetch(ctx, "stats.searches_top", opts.Range, opts.Format, opts.values(), "searches", "top")
}

// Usage reports the account's request counters.
func (c *Client) Usage(ctx context.Context, opts UsageOptions) (*Report, error) {
	return c.fetch(ctx, "stats.usage", opts.Range, opts.Format, opts.values(), "usage")
}

// QueryLog streams the raw query log of the range. The caller must close the
// returned reader.
func (c *Client) QueryLog(ctx context.Context, r Range) (io.ReadCloser, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	body, err := c.api.Stream(ctx, "stats.query_log", http.MethodGet, path("query_log"), r.values())
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, operation string, r Range, format Format, params url.Values, segments ...string) (*Report, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	p := path(segments...)

	// CSV reports are not JSON and are read raw from the stream.
	if format == FormatCSV {
		body, err := c.api.Stream(ctx, operation, http.MethodGet, p, params)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s report: %w", operation, err)
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s report: %w", operation, err)
		}
		return &Report{Format: FormatCSV, Data: data}, nil
	}

	var raw json.RawMessage
	if err := c.api.Get(ctx, operation, p, params, &raw); err != nil {
		return nil, fmt.Errorf("failed to get %s report: %w", operation, err)
	}
	return &Report{Format: FormatJSON, Data: raw}, nil
}

func path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return basePath + "/" + strings.Join(escaped, "/")
}
