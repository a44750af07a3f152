// Package proxy implements the gateway's request and response plumbing:
// request validation, error normalization and response writing.
//
// The normalization rules live in HandleError. In rough order:
//
//  1. Request-validation failures become 400 envelopes without ever
//     touching the backend.
//  2. Backend errors keep their original HTTP status. If the backend's
//     stderr shows a Python missing-module signature, the message is
//     rewritten to an actionable install instruction; otherwise the
//     backend's message is relayed with the trace ID appended when one
//     is available.
//  3. Transport failures collapse to a fixed 500 envelope so the
//     dashboard can distinguish "backend down" from "backend errored".
//
// Successful backend payloads bypass this package's encoding entirely
// and are relayed byte for byte via WriteRelay.
package proxy
