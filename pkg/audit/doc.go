// Package audit persists a per-request audit trail for the gateway.
//
// Every proxied request produces one Record: which backend operation ran,
// the outcome status, latency, and any error classification, keyed by
// request ID and backend trace ID. Records are written asynchronously by
// a Recorder into SQLite storage and pruned on a retention schedule.
//
// The trail exists so an operator can answer "what happened to trace
// a3b5c7d9" after the fact, without grepping logs.
package audit
