// Package monitoring provides Prometheus metrics for the relay and its HTTP surface.
//
// Metrics live on a private registry so several relays (and tests) can coexist
// in one process. All recording methods are safe on a nil *Metrics.
//
// Metric families:
//   - relay_requests_total{kind,outcome}, relay_request_duration_seconds{kind}
//   - relay_readiness_wait_seconds, relay_readiness_timeouts_total
//   - relay_handshakes_total{result}, relay_connection_ready
//   - relay_http_requests_total{method,path,status}, relay_http_request_duration_seconds
package monitoring
