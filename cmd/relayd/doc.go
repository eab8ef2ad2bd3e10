// Package main is the entry point for relayd, the framerelay bridge daemon.
//
// relayd hosts a relay frame and exposes it to local callers over HTTP:
//
//	Caller → relayd (HTTP) → frame channel (websocket | NATS) → target origin
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve (default command)
//	relayd --port 8000 --target-url https://vf.example.com
//
//	# One-shot request through the bridge
//	relayd request --kind rest --url /services/data/v45.0/sobjects
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
