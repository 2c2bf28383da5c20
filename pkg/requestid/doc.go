// Package requestid attaches correlation identifiers to HTTP requests.
//
// The middleware reuses a valid client-supplied X-Request-ID or generates a
// UUID, binds it to the request context, and echoes it on the response.
// LoggerExtractor plugs into the logger package so every log record emitted
// while handling the request carries the same id.
package requestid
