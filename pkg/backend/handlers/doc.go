// Package handlers provides the gin handlers of the HTTP API: liveness, provider
// listing, health snapshots and on-demand tests, dispatch, and usage statistics. Every
// handler answers with the backendtypes.APIResponse envelope.
package handlers
