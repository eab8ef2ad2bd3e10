package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/host"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/config"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/framerelay/internal/lookup"
	"github.com/GriffinCanCode/framerelay/internal/relay"
	"github.com/GriffinCanCode/framerelay/internal/transport"
	natstransport "github.com/GriffinCanCode/framerelay/internal/transport/nats"
	wstransport "github.com/GriffinCanCode/framerelay/internal/transport/ws"
)

// ErrNoTarget is returned when neither a target URL nor a lookup service is configured
var ErrNoTarget = errors.New("TARGET_URL or LOOKUP_URL must be set")

// Bridge is one host instance: container, connection, relay and adapter
type Bridge struct {
	Container  *dom.Element
	Connection *relay.Connection
	Relay      *relay.Relay
	Adapter    *host.Adapter
}

// NewBridge assembles a bridge from configuration. Transport defaults to a
// mux of the websocket and NATS transports.
func NewBridge(cfg *config.Config, t transport.Transport, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*Bridge, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	resolver, err := newResolver(cfg.Lookup, logger)
	if err != nil {
		return nil, err
	}

	defaults := relay.DefaultRequests()
	if path := cfg.Relay.DefaultsFile; path != "" {
		loaded, err := config.LoadRequestDefaults(path)
		if err != nil {
			return nil, err
		}
		defaults = defaults.Override(loaded)
		logger.Info("Loaded request defaults", zap.String("path", path), zap.Int("kinds", len(loaded)))
	}

	if t == nil {
		t = NewTransport(cfg.Transport, logger)
	}

	container := dom.NewContainer()
	conn := relay.NewConnection(t, logger).WithMetrics(metrics)
	r := relay.NewRelay(conn, logger).
		WithPolicy(relay.WaitPolicy{
			PollInterval: cfg.Relay.PollInterval,
			Timeout:      cfg.Relay.WaitTimeout,
		}).
		WithDefaults(defaults).
		WithMetrics(metrics).
		WithTracer(tracer)
	adapter := host.NewAdapter(conn, resolver, container, logger).WithPagePath(cfg.Lookup.PagePath)

	return &Bridge{
		Container:  container,
		Connection: conn,
		Relay:      r,
		Adapter:    adapter,
	}, nil
}

// Close destroys the adapter and waits for a pending handshake to settle
func (b *Bridge) Close() {
	b.Adapter.Destroy()
	b.Connection.Wait()
}

// NewTransport routes http(s)/ws(s) frames to websockets and nats frames to NATS
func NewTransport(cfg config.TransportConfig, logger *logging.Logger) *transport.Mux {
	mux := transport.NewMux()
	mux.Register(wstransport.New(wstransport.Config{
		HandshakeTimeout:  cfg.WSHandshakeTimeout,
		EnableCompression: cfg.WSEnableCompression,
	}, logger), wstransport.Schemes()...)
	mux.Register(natstransport.New(natstransport.Config{
		ClientName:     cfg.NATSClientName,
		ConnectTimeout: cfg.NATSConnectTimeout,
	}, logger), natstransport.Schemes()...)
	return mux
}

func newResolver(cfg config.LookupConfig, logger *logging.Logger) (lookup.Resolver, error) {
	if cfg.TargetURL != "" {
		return lookup.StaticResolver(cfg.TargetURL), nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("failed to configure lookup: %w", ErrNoTarget)
	}

	log := logger.Named("lookup")
	breaker := resilience.New("lookup", resilience.Settings{
		FailureThreshold: cfg.BreakerFailures,
		OpenTimeout:      cfg.BreakerTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return lookup.NewHTTPResolver(lookup.HTTPConfig{
		URL:     cfg.URL,
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		Breaker: breaker,
	}, logger), nil
}
