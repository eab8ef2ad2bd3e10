// Package server assembles the relay bridge and serves it over HTTP.
//
// A Bridge wires the lookup resolver, the frame connection, the relay and
// the host adapter. A Server puts the Gin router in front of it with the
// middleware stack (recovery, tracing, metrics, CORS, rate limiting).
//
// Server Lifecycle:
//  1. Load configuration from the environment
//  2. Build the bridge and the router
//  3. Ready the bridge (a failed lookup is logged, not fatal)
//  4. Serve HTTP until the context is cancelled
//  5. Shut down HTTP, destroy the bridge, flush traces
//
// Example Usage:
//
//	cfg, _ := config.Load()
//	srv, err := server.NewServer(cfg, nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = srv.Run(ctx)
package server
