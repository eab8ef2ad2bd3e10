// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON on stderr for machine parsing
//   - Development: colored console on stderr for humans
//
// Components receive a *Logger and derive named sub-loggers:
//
//	base, err := logging.New(logging.Config{Level: "info"})
//	logger := base.Named("relay")
//	logger.Info("Handshake complete", zap.String("frame_src", src))
//	logger.Error("Handshake failed", zap.Error(err))
package logging
