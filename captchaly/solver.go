package captchaly

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Solver exposes one method per challenge type on top of an API transport
type Solver struct {
	api    API
	logger zerolog.Logger
}

// NewSolver creates a Solver backed by the given transport
func NewSolver(api API, logger zerolog.Logger) *Solver {
	return &Solver{
		api:    api,
		logger: logger,
	}
}

// Variant reports the variant of the underlying transport
func (s *Solver) Variant() Variant {
	return s.api.Variant()
}

// Build returns the request Solve would send, without sending it
func (s *Solver) Build(kind Kind, task Task) (Request, error) {
	return BuildTask(s.api.Variant(), kind, task)
}

// Solve builds the task for kind and submits it
func (s *Solver) Solve(ctx context.Context, kind Kind, task Task) (string, error) {
	req, err := s.Build(kind, task)
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Str("kind", string(kind)).
		Str("endpoint", req.Endpoint).
		Strs("fields", req.Payload.Keys()).
		Msg("Submitting task")

	return s.api.Submit(ctx, req.Endpoint, req.Payload)
}

// GetBalance returns the account balance
func (s *Solver) GetBalance(ctx context.Context) (string, error) {
	return s.api.GetBalance(ctx)
}

// ReCaptchaV2 solves a reCAPTCHA v2 challenge
func (s *Solver) ReCaptchaV2(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindReCaptchaV2, NewTask(websiteURL, websiteKey, opts...))
}

// ReCaptchaV2Enterprise solves a reCAPTCHA v2 Enterprise challenge (legacy only)
func (s *Solver) ReCaptchaV2Enterprise(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindReCaptchaV2Enterprise, NewTask(websiteURL, websiteKey, opts...))
}

// ReCaptchaV2HSEnterprise solves a high-score reCAPTCHA v2 Enterprise challenge (legacy only)
func (s *Solver) ReCaptchaV2HSEnterprise(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindReCaptchaV2HSEnterprise, NewTask(websiteURL, websiteKey, opts...))
}

// ReCaptchaV3 solves a reCAPTCHA v3 challenge. On the legacy API a usable
// proxy switches the task to its proxied type.
func (s *Solver) ReCaptchaV3(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindReCaptchaV3, NewTask(websiteURL, websiteKey, opts...))
}

// ReCaptchaV3HS solves a high-score reCAPTCHA v3 challenge (legacy only)
func (s *Solver) ReCaptchaV3HS(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindReCaptchaV3HS, NewTask(websiteURL, websiteKey, opts...))
}

// ReCaptchaMobile solves a mobile app reCAPTCHA (legacy only)
func (s *Solver) ReCaptchaMobile(ctx context.Context, appKey string, opts ...TaskOption) (string, error) {
	task := NewTask("", "", opts...)
	task.AppKey = appKey
	return s.Solve(ctx, KindReCaptchaMobile, task)
}

// HCaptcha solves an hCaptcha challenge
func (s *Solver) HCaptcha(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindHCaptcha, NewTask(websiteURL, websiteKey, opts...))
}

// HCaptchaEnterprise solves an hCaptcha Enterprise challenge. A proxy is recommended.
func (s *Solver) HCaptchaEnterprise(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindHCaptchaEnterprise, NewTask(websiteURL, websiteKey, opts...))
}

// Turnstile solves a Cloudflare Turnstile challenge (revised only)
func (s *Solver) Turnstile(ctx context.Context, websiteURL, websiteKey string, opts ...TaskOption) (string, error) {
	return s.Solve(ctx, KindTurnstile, NewTask(websiteURL, websiteKey, opts...))
}

// GeeTestV4 solves a GeeTest v4 challenge (revised only). The service returns the
// solution as a single-quoted object, which is decoded into a map.
func (s *Solver) GeeTestV4(ctx context.Context, websiteURL, captchaID string) (map[string]any, error) {
	task := NewTask(websiteURL, "")
	task.CaptchaID = captchaID

	token, err := s.Solve(ctx, KindGeeTestV4, task)
	if err != nil {
		return nil, err
	}

	return ParseGeeTestSolution(token)
}

// ParseGeeTestSolution decodes a GeeTest v4 token into its fields
func ParseGeeTestSolution(token string) (map[string]any, error) {
	solution, err := parseRelaxedObject(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if solution == nil {
		return nil, fmt.Errorf("%w: empty GeeTest solution", ErrInvalidResponse)
	}
	return solution, nil
}
