package management

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/godoof/apiclient"
)

// Client is a Doofinder management API client.
type Client struct {
	api    *apiclient.Client
	logger zerolog.Logger
}

// NewClient creates a management API client. Values not set through options
// fall back to the DOOFINDER_* environment variables. The host is the
// explicit management host if any, otherwise https://{zone}-api.doofinder.com.
func NewClient(opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !o.skipEnv {
		env, err := LoadEnv()
		if err != nil {
			return nil, err
		}
		if o.token == "" {
			o.token = env.Token
		}
		if o.host == "" {
			o.host = env.ManagementHost
		}
		if o.zone == "" {
			o.zone = env.Zone
		}
	}

	if o.token == "" {
		return nil, ErrMissingToken
	}
	host := o.host
	if host == "" {
		if o.zone == "" {
			return nil, ErrMissingZone
		}
		host = HostForZone(o.zone)
	}

	apiOpts := append([]apiclient.Option{}, o.apiOpts...)
	apiOpts = append(apiOpts, apiclient.WithErrorHandler(classify))

	api, err := apiclient.New(host, o.token, apiOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    api,
		logger: api.Logger(),
	}, nil
}

// Host returns the resolved management host.
func (c *Client) Host() string {
	return c.api.Host()
}

// Get performs a GET request against the management API. operation names
// the call in metrics and traces.
func (c *Client) Get(ctx context.Context, operation, path string, params url.Values, result any) error {
	return c.api.Get(apiclient.WithOperation(ctx, operation), path, params, result)
}

// Request performs a request with an optional JSON body.
func (c *Client) Request(ctx context.Context, operation, method, path string, params url.Values, body, result any) error {
	return c.api.Request(apiclient.WithOperation(ctx, operation), method, path, params, body, result)
}

// Stream performs a request and returns the unbuffered response body.
// The caller must close it.
func (c *Client) Stream(ctx context.Context, operation, method, path string, params url.Values) (io.ReadCloser, error) {
	return c.api.Stream(apiclient.WithOperation(ctx, operation), method, path, params)
}

// TestConnection verifies the host and token by listing search engines.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.ListSearchEngines(ctx); err != nil {
		return err
	}
	c.logger.Debug().Str("host", c.Host()).Msg("Successfully connected to Doofinder")
	return nil
}

// buildPath joins escaped segments under the API root.
func buildPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return apiRoot + "/" + strings.Join(escaped, "/")
}

const apiRoot = "/api/v2"

func enginePath(hashid string, rest ...string) string {
	return buildPath(append([]string{"search_engines", hashid}, rest...)...)
}

func indexPath(hashid, index string, rest ...string) string {
	return enginePath(hashid, append([]string{"indices", index}, rest...)...)
}
