package captchaly

import (
	"context"
)

// API defines the transport operations both client variants provide
type API interface {
	// Variant reports which generation of the service API the client speaks
	Variant() Variant

	// GetBalance returns the account balance
	GetBalance(ctx context.Context) (string, error)

	// Submit sends a built payload to the task endpoint and returns the token
	Submit(ctx context.Context, endpoint string, payload Payload) (string, error)
}

var (
	_ API = (*Client)(nil)
	_ API = (*LegacyClient)(nil)
)
