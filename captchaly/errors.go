package captchaly

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Messages returned by the service for known status codes. These strings are part
// of the documented client behaviour and must not change.
const (
	MessageInvalidAPIKey       = "Invalid API key."
	MessageInsufficientFunds   = "Your account doesn't have enough funds. Please recharge your account!"
	MessageSubscriptionExpired = "Your account subscription has expired. Please renew your subscription or use the Pay-Per-Token service!"
	MessageConcurrencyLimit    = "Concurrency limit reached! Please wait until your other requests finish!"
	MessageSolveFailed         = "Failed to solve the captcha. Please try again."
	MessageUnknown             = "Unknown error."
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid captchaly configuration")
	// ErrUnsupportedTask indicates the task kind is not offered by the client variant
	ErrUnsupportedTask = errors.New("task kind not supported by this client variant")
	// ErrInvalidResponse indicates a 200 response without a usable value
	ErrInvalidResponse = errors.New("invalid response from captchaly API")

	ErrInvalidAPIKey       = errors.New("invalid API key")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSubscriptionExpired = errors.New("subscription expired")
	ErrValidation          = errors.New("validation error")
	ErrConcurrencyLimit    = errors.New("concurrency limit reached")
	ErrSolveFailed         = errors.New("solve failed")
	ErrUnknown             = errors.New("unknown error")
)

// ErrorKind classifies a non-200 response
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota
	ErrorInvalidAPIKey
	ErrorInsufficientFunds
	ErrorSubscriptionExpired
	ErrorValidation
	ErrorConcurrencyLimit
	ErrorSolveFailed
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrorInvalidAPIKey:
		return "INVALID_API_KEY"
	case ErrorInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case ErrorSubscriptionExpired:
		return "SUBSCRIPTION_EXPIRED"
	case ErrorValidation:
		return "VALIDATION"
	case ErrorConcurrencyLimit:
		return "CONCURRENCY_LIMIT"
	case ErrorSolveFailed:
		return "SOLVE_FAILED"
	default:
		return "UNKNOWN"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorInvalidAPIKey:
		return ErrInvalidAPIKey
	case ErrorInsufficientFunds:
		return ErrInsufficientFunds
	case ErrorSubscriptionExpired:
		return ErrSubscriptionExpired
	case ErrorValidation:
		return ErrValidation
	case ErrorConcurrencyLimit:
		return ErrConcurrencyLimit
	case ErrorSolveFailed:
		return ErrSolveFailed
	default:
		return ErrUnknown
	}
}

// kindForStatus maps an HTTP status code to its ErrorKind
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return ErrorInvalidAPIKey
	case http.StatusPaymentRequired:
		return ErrorInsufficientFunds
	case http.StatusForbidden:
		return ErrorSubscriptionExpired
	case http.StatusUnprocessableEntity:
		return ErrorValidation
	case http.StatusTooManyRequests:
		return ErrorConcurrencyLimit
	case http.StatusServiceUnavailable:
		return ErrorSolveFailed
	default:
		return ErrorUnknown
	}
}

// APIError represents a non-200 response from the captchaly API
type APIError struct {
	StatusCode int
	Kind       ErrorKind
	// Message is the human-readable text the service contract defines for the status
	Message string
	Body    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("captchaly API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the sentinel error for the kind so errors.Is works
func (e *APIError) Unwrap() error {
	return e.Kind.sentinel()
}

// IsRetryable reports whether the same request may succeed later
func (e *APIError) IsRetryable() bool {
	return e.Kind == ErrorConcurrencyLimit || e.Kind == ErrorSolveFailed
}

// IsUnauthorized checks if the error indicates an account problem
func (e *APIError) IsUnauthorized() bool {
	return e.Kind == ErrorInvalidAPIKey || e.Kind == ErrorSubscriptionExpired
}

// newSubmitError builds the APIError for a failed task submission
func newSubmitError(status int, body []byte) *APIError {
	kind := kindForStatus(status)
	apiErr := &APIError{
		StatusCode: status,
		Kind:       kind,
		Body:       string(body),
	}

	switch kind {
	case ErrorInvalidAPIKey:
		apiErr.Message = MessageInvalidAPIKey
	case ErrorInsufficientFunds:
		apiErr.Message = MessageInsufficientFunds
	case ErrorSubscriptionExpired:
		apiErr.Message = MessageSubscriptionExpired
	case ErrorValidation:
		apiErr.Message = validationMessage(body)
	case ErrorConcurrencyLimit:
		apiErr.Message = MessageConcurrencyLimit
	case ErrorSolveFailed:
		apiErr.Message = MessageSolveFailed
	default:
		apiErr.Message = MessageUnknown
	}

	return apiErr
}

// newBalanceError keeps the raw body as the message, balance errors are not mapped
func newBalanceError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Kind:       kindForStatus(status),
		Message:    strings.TrimSpace(string(body)),
		Body:       string(body),
	}
}

// Text renders a solve outcome as the plain string older clients returned: the
// token on success, the service message for API errors, or the error text.
func Text(token string, err error) string {
	if err == nil {
		return token
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
