// Package server holds the HTTP server configuration and the mapping of
// service errors to HTTP responses.
//
// # Configuration
//
// The Config struct defines the listen port, the API key and the graceful
// shutdown bound.
//
// # Errors
//
// StatusFor maps errors to status codes: store.ErrNotFound becomes 404,
// configuration, missing key column and row limit errors become 400, and
// everything else 500. Handlers use Error to write the JSON error body.
package server
