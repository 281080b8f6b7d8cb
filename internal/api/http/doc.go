// Package http contains the Gin handlers for the fetch service: the
// single-endpoint page fetch at GET /, plus health and info. Fetch owns
// the per-request session lifecycle and maps domain failures to HTTP
// status codes (400 bad request, 408 timeout, 500 upstream/browser).
package http
