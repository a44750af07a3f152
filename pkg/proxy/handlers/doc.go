// Package handlers implements the gateway's HTTP endpoints.
//
// Every handler follows the same shape: validate the inbound request
// (rejecting with 400 before any backend call), invoke exactly one
// backend operation, and relay the result. Success payloads are written
// byte for byte; failures are normalized into the shared error envelope.
package handlers
