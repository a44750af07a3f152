// Package types defines the error envelope shared between the proxy
// handlers and the middleware chain.
//
// Every failed gateway response, whatever its origin, serializes to the
// same JSON shape so the dashboard frontend has a single error contract:
//
//	{"error": "<message>", "detail": {...}, "status": 502}
//
// The detail and status fields are optional and only populated when the
// failure originated at the research backend.
package types
