// Package middleware provides HTTP middleware for the gateway:
// panic recovery, request logging, request-ID correlation and CORS.
//
// The chain is assembled in pkg/server, outermost first:
//
//	recovery -> request ID -> logging -> CORS -> metrics -> mux
package middleware
