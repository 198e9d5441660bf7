// Package backendtypes defines the configuration and wire types of the HTTP API.
//
// BackendConfig is decoded by viper from the application config file; APIResponse is the
// envelope every endpoint answers with:
//
//	{"success": true, "data": {...}, "request_id": "...", "timestamp": "..."}
//	{"success": false, "error": {"code": "PROVIDERS_EXHAUSTED", "message": "..."}, ...}
package backendtypes
