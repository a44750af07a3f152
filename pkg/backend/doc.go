// Package backend implements the HTTP client for the Alpha Research backend
// API, the upstream service that owns research articles, papers, market data,
// and the article-generation workflow.
//
// The client resolves the backend base URL once from configuration, pools
// connections, and performs exactly one attempt per request: failures are
// surfaced immediately as typed errors rather than retried, so the gateway's
// callers always see the first failure.
//
// Error model:
//
//   - 2xx responses are returned as an opaque Payload (status, content type,
//     raw body) so the gateway can relay them byte-for-byte.
//   - Non-2xx responses are parsed as the backend's {"detail": ...} error
//     body, where detail is either a structured object or a plain string,
//     and surfaced as *Error with the upstream status code preserved.
//   - Requests that never produce a response (connection refused, DNS
//     failure, timeout) are surfaced as *TransportError.
//
// The client also tracks reachability: repeated transport failures mark the
// backend unhealthy, which feeds the gateway's readiness probe.
package backend
