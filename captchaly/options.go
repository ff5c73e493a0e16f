package captchaly

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public captchaly endpoint
	DefaultBaseURL = "https://v1.captchaly.com"
	// DefaultPoolSize keeps enough idle connections for heavy parallel use
	DefaultPoolSize = 1000
	// LegacyTimeout is the request timeout the legacy API has always used
	LegacyTimeout = 45 * time.Second
)

// Option configures a Client or LegacyClient.
type Option func(*clientOptions)

// clientOptions holds configuration options for the clients.
type clientOptions struct {
	baseURL            string
	timeout            time.Duration
	poolSize           int
	httpClient         *http.Client
	verbose            bool
	insecureSkipVerify bool
	userAgent          string
}

func defaultOptions(timeout time.Duration) clientOptions {
	return clientOptions{
		baseURL:  DefaultBaseURL,
		timeout:  timeout,
		poolSize: DefaultPoolSize,
		verbose:  true,
	}
}

// WithBaseURL points the client at another host.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithPoolSize sets the number of idle connections kept per host.
func WithPoolSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.poolSize = size
		}
	}
}

// WithHTTPClient replaces the pooled HTTP client entirely.
// Timeout, pool size and certificate options are ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithVerbose toggles logging of balances, tokens and failed responses.
func WithVerbose(verbose bool) Option {
	return func(o *clientOptions) {
		o.verbose = verbose
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *clientOptions) {
		o.insecureSkipVerify = true
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}
