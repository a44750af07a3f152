// Gateway is the HTTP proxy for the Alpha Research dashboard.
//
// It sits between the browser and the Alpha Research backend, providing:
//   - Request forwarding with byte-identical response relay
//   - Backend error normalization with dependency hints
//   - Trace ID propagation for debugging failed operations
//   - An SQLite audit trail for proxied requests
//   - Prometheus metrics and health endpoints
//
// Usage:
//
//	# Start the gateway with default configuration
//	gateway run
//
//	# Start with a custom configuration file
//	gateway run --config /path/to/config.yaml
//
//	# Show version information
//	gateway version
//
//	# Validate a configuration file
//	gateway validate --config /path/to/config.yaml
//
//	# Query the audit trail
//	gateway audit query --trace-id a3b5c7d9
package main

func main() {
	Execute()
}
