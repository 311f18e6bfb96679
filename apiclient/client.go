package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s0up4200/godoof/metrics"
	"github.com/s0up4200/godoof/tracing"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrorHandler maps a non-2xx response into an error.
type ErrorHandler func(*Response) error

// Response is a buffered non-2xx response handed to an ErrorHandler.
type Response struct {
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// HTTPError converts the response into a generic *HTTPError.
func (r *Response) HTTPError() *HTTPError {
	return &HTTPError{
		Method:     r.Method,
		Path:       r.Path,
		StatusCode: r.StatusCode,
		Body:       string(r.Body),
		RequestID:  r.RequestID,
		RetryAfter: retryAfterFromHeader(r.Header),
	}
}

// Client is the HTTP base shared by the Doofinder API clients.
type Client struct {
	host    string
	token   string
	http    *resty.Client
	logger  zerolog.Logger
	limiter *rate.Limiter
	opts    clientOptions
}

// New creates a client for host authenticating with token.
func New(host, token string, opts ...Option) (*Client, error) {
	if host == "" {
		return nil, ErrMissingHost
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	host = strings.TrimRight(host, "/")

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(host).
		SetAuthScheme("Token").
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", options.userAgent).
		SetLogger(restyLogger{logger: options.logger}).
		SetDebug(options.debug)

	c := &Client{
		host:   host,
		token:  token,
		http:   rc,
		logger: options.logger,
		opts:   options,
	}
	if options.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(options.rateLimit), options.burst)
	}
	return c, nil
}

// Host returns the base URL requests are sent to.
func (c *Client) Host() string {
	return c.host
}

// Logger returns the client's logger.
func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result any) error {
	return c.Request(ctx, http.MethodGet, path, params, nil, result)
}

// Request performs a request with an optional JSON body and decodes the JSON
// response into result. A nil result discards the response body.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, body, result any) error {
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	resp, err := c.execute(ctx, method, path, params, body, false)
	if err != nil {
		return err
	}

	if result == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to parse response from %s %s: %w", method, path, err)
	}
	return nil
}

// Stream performs a request and returns the response body without buffering
// it. The caller must close the returned reader.
func (c *Client) Stream(ctx context.Context, method, path string, params url.Values) (io.ReadCloser, error) {
	resp, err := c.execute(ctx, method, path, params, nil, true)
	if err != nil {
		return nil, err
	}
	return &countingReader{rc: resp.RawBody(), operation: operationFrom(ctx, method)}, nil
}

func (c *Client) execute(ctx context.Context, method, path string, params url.Values, body any, stream bool) (*resty.Response, error) {
	operation := operationFrom(ctx, method)
	requestID := uuid.NewString()

	ctx, span := tracing.StartSpan(ctx, "doofinder."+operation)
	defer span.End()
	tracing.AddRequestAttributes(span, method, path, requestID)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.retryDelay
	b.MaxInterval = c.opts.maxRetryDelay
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}

		start := time.Now()
		resp, err := c.send(ctx, method, path, params, body, stream, requestID)
		duration := time.Since(start)

		if err != nil {
			metrics.RecordAPICall(operation, duration.Seconds(), 0)
			netErr := &NetworkError{Method: method, Path: path, Attempt: attempt + 1, Err: err}
			tracing.RecordError(span, netErr)
			c.logger.Debug().
				Err(err).
				Str("method", method).
				Str("path", path).
				Str("request_id", requestID).
				Dur("duration", duration).
				Msg("Doofinder API request failed")

			if attempt < c.opts.maxRetries && ctx.Err() == nil && isIdempotent(method) {
				delay := b.NextBackOff()
				metrics.RecordRetry(operation)
				c.logger.Debug().
					Err(err).
					Int("attempt", attempt+1).
					Dur("delay", delay).
					Str("request_id", requestID).
					Msg("Retrying Doofinder API request")
				if err := sleepCtx(ctx, delay); err != nil {
					tracing.RecordError(span, err)
					return nil, err
				}
				continue
			}
			return nil, netErr
		}

		status := resp.StatusCode()
		metrics.RecordAPICall(operation, duration.Seconds(), status)
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("request_id", requestID).
			Dur("duration", duration).
			Msg("Doofinder API request")

		if status < http.StatusBadRequest {
			tracing.AddResponseAttributes(span, status)
			return resp, nil
		}

		if attempt < c.opts.maxRetries && isTransient(status) {
			delay := b.NextBackOff()
			if ra := retryAfterFromHeader(resp.Header()); ra > 0 {
				delay = ra
			}
			if stream {
				resp.RawBody().Close()
			}
			metrics.RecordRetry(operation)
			c.logger.Debug().
				Int("status", status).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Str("request_id", requestID).
				Msg("Retrying Doofinder API request")

			if err := sleepCtx(ctx, delay); err != nil {
				tracing.RecordError(span, err)
				return nil, err
			}
			continue
		}

		tracing.AddResponseAttributes(span, status)
		apiErr := c.handleError(operation, method, path, requestID, resp, stream)
		tracing.RecordError(span, apiErr)
		return nil, apiErr
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isIdempotent reports whether a request that failed in transit can be
// sent again without risking a duplicate write.
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body any, stream bool, requestID string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetDoNotParseResponse(stream)

	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	return req.Execute(method, path)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if c.limiter.Tokens() < 1 {
		metrics.RateLimitWaits.Inc()
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) handleError(operation, method, path, requestID string, resp *resty.Response, stream bool) error {
	body := resp.Body()
	if stream {
		raw := resp.RawBody()
		data, err := io.ReadAll(raw)
		raw.Close()
		if err != nil {
			return &NetworkError{Method: method, Path: path, Attempt: 1, Err: err}
		}
		body = data
	}

	r := &Response{
		Operation:  operation,
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       body,
		RequestID:  requestID,
	}
	if c.opts.errorHandler != nil {
		if err := c.opts.errorHandler(r); err != nil {
			return err
		}
	}
	return r.HTTPError()
}

func isTransient(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type operationKey struct{}

// WithOperation names the API operation performed with ctx. The name labels
// metrics and spans.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

func operationFrom(ctx context.Context, method string) string {
	if name, ok := ctx.Value(operationKey{}).(string); ok && name != "" {
		return name
	}
	return strings.ToLower(method)
}

type countingReader struct {
	rc        io.ReadCloser
	operation string
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	metrics.RecordStreamedBytes(r.operation, n)
	return n, err
}

func (r *countingReader) Close() error {
	return r.rc.Close()
}
