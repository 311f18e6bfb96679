// Package apiclient provides the HTTP base shared by the Doofinder API clients.
//
// It owns the pieces every endpoint needs: resolving the host, injecting the
// "Authorization: Token <token>" header, dispatching GET/POST/PATCH/DELETE
// requests with JSON bodies, and handing non-2xx responses to an
// ErrorHandler installed by the domain layer.
//
// # Features
//
//   - resty transport with zerolog request logging
//   - Optional exponential backoff on 408, 429, 502, 503 and 504
//   - Optional client-side rate limiting
//   - Prometheus metrics and an OpenTelemetry span per call
//   - Unbuffered streaming for large responses
//
// # Usage
//
//	client, err := apiclient.New("https://eu1-api.doofinder.com", token,
//	    apiclient.WithLogger(logger),
//	    apiclient.WithMaxRetries(3),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var engines []map[string]any
//	err = client.Get(ctx, "/api/v2/search_engines", nil, &engines)
package apiclient
