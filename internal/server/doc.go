// Package server exposes the edit curation workflow over HTTP.
//
// # Router
//
// [Server] wraps a chi router. Requests pass through request id, real ip, [RequestLogger],
// panic recovery and, when origins are configured, CORS.
//
// # Responses
//
// Every response body is an [Envelope]:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": "edit not found: 42"}
//
// [HandleError] maps workflow errors to status codes:
//   - validation → 400
//   - missing edit or membership → 404
//   - disallowed status transition → 409
//   - missing storefront term → 412
//   - anything else → 500
//
// Partial failures during sync or approval are not errors: they return 200 with per-item counts.
//
// # Validation
//
// Request bodies are decoded into DTOs and checked by [Validator], which reports fields by their JSON names.
package server
