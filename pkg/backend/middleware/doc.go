// Package middleware provides the gin middleware of the HTTP API: request ID tracking,
// structured request logging, panic recovery, bearer-token authentication and CORS.
package middleware
