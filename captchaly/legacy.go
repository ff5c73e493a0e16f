package captchaly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// LegacyClient talks to the first-generation API: POST requests with the key
// sent as clientKey. Requests time out after 45 seconds unless overridden.
type LegacyClient struct {
	baseClient
}

// NewLegacyClient creates a client for the legacy API
func NewLegacyClient(apiKey string, logger zerolog.Logger, opts ...Option) (*LegacyClient, error) {
	options := defaultOptions(LegacyTimeout)
	for _, opt := range opts {
		opt(&options)
	}

	base, err := newBaseClient(apiKey, logger, options)
	if err != nil {
		return nil, err
	}

	return &LegacyClient{baseClient: base}, nil
}

// Variant implements API
func (c *LegacyClient) Variant() Variant {
	return VariantLegacy
}

// GetBalance posts {"clientKey": ...} to /getBalance
func (c *LegacyClient) GetBalance(ctx context.Context) (string, error) {
	reqBody, err := json.Marshal(map[string]string{"clientKey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to encode balance request: %w", err)
	}

	header := http.Header{"Content-Type": {"application/json"}}
	status, body, err := c.doRequest(ctx, http.MethodPost, "getBalance", nil, header, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}

	return c.handleBalance(status, body)
}

// Submit posts to /{endpoint} with the payload and clientKey as query parameters
func (c *LegacyClient) Submit(ctx context.Context, endpoint string, payload Payload) (string, error) {
	endpoint = strings.ToLower(endpoint)
	params := payload.Values()
	params.Set("clientKey", c.apiKey)

	status, body, err := c.doRequest(ctx, http.MethodPost, endpoint, params, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s task: %w", endpoint, err)
	}

	return c.handleSubmit(endpoint, status, body)
}
