package management

import "github.com/s0up4200/godoof/apiclient"

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	token   string
	zone    string
	host    string
	apiOpts []apiclient.Option
	skipEnv bool
}

// WithToken sets the API token. It overrides DOOFINDER_TOKEN.
func WithToken(token string) Option {
	return func(o *clientOptions) {
		o.token = token
	}
}

// WithZone sets the zone used to derive the host, e.g. "eu1" or "us1".
func WithZone(zone string) Option {
	return func(o *clientOptions) {
		o.zone = zone
	}
}

// WithHost sets the management host explicitly. It takes precedence over the zone.
func WithHost(host string) Option {
	return func(o *clientOptions) {
		o.host = host
	}
}

// WithAPIOptions passes options through to the underlying apiclient.
func WithAPIOptions(opts ...apiclient.Option) Option {
	return func(o *clientOptions) {
		o.apiOpts = append(o.apiOpts, opts...)
	}
}

// WithoutEnv disables the environment defaults.
func WithoutEnv() Option {
	return func(o *clientOptions) {
		o.skipEnv = true
	}
}
