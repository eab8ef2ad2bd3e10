// Package middleware provides the HTTP middleware of the relay surface.
//
// Middleware stack:
//   - Recovery: panic recovery, logged through zap
//   - CORS: cross-origin policy built on gin-contrib/cors
//   - RateLimit: per-IP token buckets with idle-client eviction
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.CORSOrigins(cfg.CORS.Origins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
