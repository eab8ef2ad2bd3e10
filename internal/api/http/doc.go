// Package http exposes the relay to callers over HTTP using gin.
//
// Endpoints:
//   - POST /rest, POST /fetch: body is a request {url, method, body, headers, options}
//   - POST /request/:kind: generic form; unknown kinds are refused with 400
//   - GET /health: bridge state
//   - POST /bridge/reconnect: tear the bridge down and connect again
//   - GET /metrics: Prometheus exposition
//
// Responses are {"success": true, "data": ...} or {"success": false, "error": "..."}.
// A readiness timeout maps to 504, a failed remote envelope to 502, a cancelled
// request to 503 and a malformed body to 400.
package http
