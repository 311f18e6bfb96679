package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "godoof"

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	httpClient    *http.Client
	logger        zerolog.Logger
	timeout       time.Duration
	userAgent     string
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	rateLimit     float64
	burst         int
	debug         bool
	errorHandler  ErrorHandler
}

func defaultOptions() clientOptions {
	return clientOptions{
		logger:        zerolog.Nop(),
		timeout:       30 * time.Second,
		userAgent:     DefaultUserAgent,
		retryDelay:    500 * time.Millisecond,
		maxRetryDelay: 10 * time.Second,
	}
}

// WithHTTPClient uses hc as the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTimeout sets the timeout applied to buffered requests.
// Streamed requests are bounded only by the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts for transient
// statuses. Zero disables retries.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryDelay sets the initial and maximum backoff between retries.
func WithRetryDelay(initial, max time.Duration) Option {
	return func(o *clientOptions) {
		if initial > 0 {
			o.retryDelay = initial
		}
		if max > 0 {
			o.maxRetryDelay = max
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		o.rateLimit = rps
		if burst < 1 {
			burst = 1
		}
		o.burst = burst
	}
}

// WithDebug dumps requests and responses to the logger at debug level.
func WithDebug(enabled bool) Option {
	return func(o *clientOptions) {
		o.debug = enabled
	}
}

// WithErrorHandler installs the function that turns non-2xx responses into errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *clientOptions) {
		o.errorHandler = h
	}
}
