package captchaly

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL)}, opts...)
	client, err := NewClient("test-key", zerolog.Nop(), opts...)
	require.NoError(t, err)

	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		_, err := NewClient("", zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("test-key", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		assert.Equal(t, time.Duration(0), client.httpClient.Timeout)
		assert.True(t, client.verbose)
		assert.Equal(t, VariantRevised, client.Variant())

		transport, ok := client.httpClient.Transport.(*http.Transport)
		require.True(t, ok)
		assert.Equal(t, DefaultPoolSize, transport.MaxIdleConnsPerHost)
		assert.Equal(t, DefaultPoolSize, transport.MaxIdleConns)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL("http://localhost:8000/"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", client.baseURL)
	})
}

func TestClientOptions(t *testing.T) {
	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("test-key", zerolog.Nop(), WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with pool size", func(t *testing.T) {
		client, err := NewClient("test-key", zerolog.Nop(), WithPoolSize(50))
		require.NoError(t, err)
		transport := client.httpClient.Transport.(*http.Transport)
		assert.Equal(t, 50, transport.MaxIdleConnsPerHost)
	})

	t.Run("with insecure skip verify", func(t *testing.T) {
		client, err := NewClient("test-key", zerolog.Nop(), WithInsecureSkipVerify())
		require.NoError(t, err)
		transport := client.httpClient.Transport.(*http.Transport)
		require.NotNil(t, transport.TLSClientConfig)
		assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("test-key", zerolog.Nop(), WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})
}

func TestClientGetBalance(t *testing.T) {
	t.Run("string balance", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/account", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
			w.Write([]byte(`{"balance": "12.50"}`))
		})

		balance, err := client.GetBalance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "12.50", balance)
	})

	t.Run("numeric balance", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"balance": 3.25}`))
		})

		balance, err := client.GetBalance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "3.25", balance)
	})

	t.Run("error keeps raw body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid key"}`))
		})

		balance, err := client.GetBalance(context.Background())
		require.Error(t, err)
		assert.Empty(t, balance)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, `{"detail":"Invalid key"}`, apiErr.Message)
		assert.Equal(t, `{"detail":"Invalid key"}`, Text(balance, err))
	})

	t.Run("error with empty body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.GetBalance(context.Background())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Empty(t, apiErr.Message)
	})

	t.Run("missing balance field", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		_, err := client.GetBalance(context.Background())
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestClientSubmit(t *testing.T) {
	payload := Payload{
		{Key: "sitekey", Value: "site-key"},
		{Key: "fast", Value: true},
		{Key: "url", Value: "https://example.com"},
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/recaptchav3", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		query := r.URL.Query()
		assert.Equal(t, "site-key", query.Get("sitekey"))
		assert.Equal(t, "true", query.Get("fast"))
		assert.Equal(t, "https://example.com", query.Get("url"))
		assert.False(t, query.Has("apikey"))

		w.Write([]byte(`{"token": "abc123"}`))
	})

	token, err := client.Submit(context.Background(), "RecaptchaV3", payload)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestClientSubmitStatusMessages(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    ErrorKind
		message string
		target  error
	}{
		{http.StatusUnauthorized, `{}`, ErrorInvalidAPIKey, "Invalid API key.", ErrInvalidAPIKey},
		{http.StatusPaymentRequired, `{}`, ErrorInsufficientFunds, "Your account doesn't have enough funds. Please recharge your account!", ErrInsufficientFunds},
		{http.StatusForbidden, `{}`, ErrorSubscriptionExpired, "Your account subscription has expired. Please renew your subscription or use the Pay-Per-Token service!", ErrSubscriptionExpired},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["query","sitekey"],"msg":"field required","type":"value_error.missing"}]}`, ErrorValidation, "field required", ErrValidation},
		{http.StatusTooManyRequests, `{}`, ErrorConcurrencyLimit, "Concurrency limit reached! Please wait until your other requests finish!", ErrConcurrencyLimit},
		{http.StatusServiceUnavailable, `{}`, ErrorSolveFailed, "Failed to solve the captcha. Please try again.", ErrSolveFailed},
		{http.StatusInternalServerError, `oops`, ErrorUnknown, "Unknown error.", ErrUnknown},
		{http.StatusTeapot, ``, ErrorUnknown, "Unknown error.", ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			token, err := client.Submit(context.Background(), "hcaptcha", nil)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.message, Text(token, err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.body, apiErr.Body)
		})
	}
}

func TestClientSubmitTokenShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		wantErr  error
	}{
		{name: "string token", body: `{"token":"abc123"}`, expected: "abc123"},
		{name: "object token", body: `{"token":{"code":"ok"}}`, expected: `{"code":"ok"}`},
		{name: "single quoted body", body: `{'code':'ok'}`, expected: `{'code':'ok'}`},
		{name: "null token", body: `{"token":null}`, wantErr: ErrInvalidResponse},
		{name: "object without token", body: `{"error":"x"}`, wantErr: ErrInvalidResponse},
		{name: "empty object", body: `{}`, wantErr: ErrInvalidResponse},
		{name: "not json", body: `<html>`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			token, err := client.Submit(context.Background(), "geetest", nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Submit(context.Background(), "recaptchav2", nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "request failed")
}

func TestClientContextCancel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Submit(ctx, "recaptchav2", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientUserAgent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "captchaly-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"token":"abc123"}`))
	}, WithUserAgent("captchaly-test/1.0"))

	_, err := client.Submit(context.Background(), "recaptchav2", nil)
	require.NoError(t, err)
}
