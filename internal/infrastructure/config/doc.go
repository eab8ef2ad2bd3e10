// Package config provides 12-factor configuration for the relay service.
//
// Configuration is loaded from environment variables with defaults; CLI flags
// override individual values.
//
// Configuration Sections:
//   - Server: HTTP listener (PORT, HOST)
//   - Relay: readiness wait policy and request defaults file
//   - Lookup: target-URL lookup service and frame page path
//   - Transport: channel transport settings
//   - Logging: log level and output format
//   - RateLimit, CORS: HTTP surface protection
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
