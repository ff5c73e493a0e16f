package captchaly

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// baseClient holds what both variants share: credentials, the pooled HTTP
// client and response handling.
type baseClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
	verbose    bool
	userAgent  string
}

func newBaseClient(apiKey string, logger zerolog.Logger, options clientOptions) (baseClient, error) {
	if apiKey == "" {
		return baseClient{}, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = newPooledHTTPClient(options)
	}

	return baseClient{
		baseURL:    strings.TrimRight(options.baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		verbose:    options.verbose,
		userAgent:  options.userAgent,
	}, nil
}

// newPooledHTTPClient builds a client whose transport keeps poolSize idle
// connections per host so many goroutines can share it.
func newPooledHTTPClient(options clientOptions) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.MaxIdleConns = options.poolSize
	transport.MaxIdleConnsPerHost = options.poolSize
	if options.insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   options.timeout,
	}
}

// doRequest performs an HTTP request and returns the status code and body
func (c *baseClient) doRequest(ctx context.Context, method, endpoint string, params url.Values, header http.Header, body io.Reader) (int, []byte, error) {
	requestURL := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("Making captchaly API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

func (c *baseClient) handleBalance(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		if c.verbose {
			c.logger.Error().Int("status", status).Str("body", string(body)).Msg("Balance request failed")
		}
		return "", newBalanceError(status, body)
	}

	balance, err := extractBalance(body)
	if err != nil {
		return "", err
	}

	if c.verbose {
		c.logger.Info().Str("balance", balance).Msg("Balance retrieved")
	}
	return balance, nil
}

func (c *baseClient) handleSubmit(endpoint string, status int, body []byte) (string, error) {
	if status != http.StatusOK {
		if c.verbose {
			c.logger.Error().
				Str("endpoint", endpoint).
				Int("status", status).
				Str("body", string(body)).
				Msg("Task submission failed")
		}
		return "", newSubmitError(status, body)
	}

	token, err := extractToken(body)
	if err != nil {
		return "", err
	}

	if c.verbose {
		c.logger.Info().Str("endpoint", endpoint).Str("token", token).Msg("Token retrieved")
	}
	return token, nil
}

// Client talks to the current captchaly API: GET requests, bearer token auth.
// It is safe for concurrent use.
type Client struct {
	baseClient
}

// NewClient creates a new captchaly client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	options := defaultOptions(0)
	for _, opt := range opts {
		opt(&options)
	}

	base, err := newBaseClient(apiKey, logger, options)
	if err != nil {
		return nil, err
	}

	return &Client{baseClient: base}, nil
}

// Variant implements API
func (c *Client) Variant() Variant {
	return VariantRevised
}

// GetBalance retrieves the account balance from /account
func (c *Client) GetBalance(ctx context.Context) (string, error) {
	params := url.Values{"apikey": {c.apiKey}}

	status, body, err := c.doRequest(ctx, http.MethodGet, "account", params, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}

	return c.handleBalance(status, body)
}

// Submit sends the payload as query parameters to /{endpoint}
func (c *Client) Submit(ctx context.Context, endpoint string, payload Payload) (string, error) {
	endpoint = strings.ToLower(endpoint)
	header := http.Header{"Authorization": {"Bearer " + c.apiKey}}

	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, payload.Values(), header, nil)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s task: %w", endpoint, err)
	}

	return c.handleSubmit(endpoint, status, body)
}
