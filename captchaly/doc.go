// Package captchaly provides a client for the captchaly CAPTCHA-solving service.
//
// The service does all of the solving; this package builds the request for each
// challenge type, sends it, and maps the response to a token or a typed error.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client / LegacyClient: transports for the current (GET, bearer token) and the
//     first-generation (POST, clientKey) API, sharing one pooled HTTP client
//   - BuildTask: a single builder driven by a per-variant schema table
//   - Solver: one method per challenge type on top of either transport
//   - Errors: APIError with the fixed per-status messages
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := captchaly.NewClient("your-api-key", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	solver := captchaly.NewSolver(client, logger)
//	token, err := solver.HCaptcha(ctx, "https://example.com", "site-key",
//		captchaly.WithProxy(&captchaly.Proxy{Type: "http", Address: "1.2.3.4", Port: 8080}),
//	)
//
// # Error Handling
//
// Non-200 responses come back as *APIError. Its Message holds the exact text
// the service documents for the status code, and errors.Is matches the
// per-kind sentinels:
//
//	if errors.Is(err, captchaly.ErrInsufficientFunds) {
//		// Top up
//	}
//
// Callers that expect the old string-only behaviour can use Text(token, err).
package captchaly
