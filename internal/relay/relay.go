package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

const invalidKindLabel = "invalid"

// EndpointSource yields the current endpoint, nil while not ready
type EndpointSource interface {
	Endpoint() transport.Endpoint
}

// Relay turns requests into channel invocations
type Relay struct {
	source   EndpointSource
	policy   WaitPolicy
	defaults Defaults
	clock    clock.Clock
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// NewRelay creates a relay reading its endpoint from source
func NewRelay(source EndpointSource, logger *logging.Logger) *Relay {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Relay{
		source:   source,
		policy:   DefaultWaitPolicy(),
		defaults: DefaultRequests(),
		clock:    clock.New(),
		logger:   logger.Named("relay"),
	}
}

// WithPolicy overrides the readiness wait policy
func (r *Relay) WithPolicy(p WaitPolicy) *Relay {
	r.policy = p.normalized()
	return r
}

// WithDefaults replaces the per-kind request defaults
func (r *Relay) WithDefaults(d Defaults) *Relay {
	r.defaults = d
	return r
}

// WithClock substitutes the clock driving the readiness wait
func (r *Relay) WithClock(c clock.Clock) *Relay {
	r.clock = c
	return r
}

// WithMetrics attaches a metrics collector
func (r *Relay) WithMetrics(m *monitoring.Metrics) *Relay {
	r.metrics = m
	return r
}

// WithTracer records a span per send
func (r *Relay) WithTracer(t *tracing.Tracer) *Relay {
	r.tracer = t
	return r
}

// Policy returns the readiness wait policy in use
func (r *Relay) Policy() WaitPolicy {
	return r.policy
}

// RestRequest performs a REST request inside the frame
func (r *Relay) RestRequest(ctx context.Context, req types.Request) (interface{}, error) {
	return r.Send(ctx, types.KindREST, req)
}

// FetchRequest performs a fetch request inside the frame
func (r *Relay) FetchRequest(ctx context.Context, req types.Request) (interface{}, error) {
	return r.Send(ctx, types.KindFetch, req)
}

// Send merges defaults into req, waits for the endpoint and dispatches by kind.
// It returns the envelope data on success and a *RemoteError when the envelope
// reports failure. Readiness timeouts and rejections of the remote call are
// returned unchanged.
func (r *Relay) Send(ctx context.Context, kind types.RequestKind, req types.Request) (data interface{}, err error) {
	label := kindLabel(kind)
	span, ctx := r.tracer.StartSpan(ctx, "relay."+label)
	span.SetTag("url", req.URL)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		r.tracer.Finish(span)
	}()

	start := r.clock.Now()
	merged := r.defaults.Merge(kind, req)

	endpoint, err := r.awaitEndpoint(ctx)
	if err != nil {
		outcome := monitoring.OutcomeError
		if errors.Is(err, ErrTimeout) {
			outcome = monitoring.OutcomeTimeout
		}
		r.logger.Warn("Frame not ready", zap.String("kind", label), zap.Error(err))
		r.metrics.RecordRequest(label, outcome, r.clock.Since(start))
		return nil, err
	}

	env, err := r.dispatch(ctx, endpoint, kind, merged)
	if err != nil {
		r.logger.Warn("Remote call rejected", zap.String("kind", label), zap.Error(err))
		r.metrics.RecordRequest(label, monitoring.OutcomeError, r.clock.Since(start))
		return nil, err
	}

	if !env.Success {
		rerr := newRemoteError(env.Data, !kind.Valid())
		outcome := monitoring.OutcomeRemoteFailure
		if rerr.Local {
			outcome = monitoring.OutcomeInvalidKind
		}
		r.logger.Debug("Remote request failed",
			zap.String("kind", label),
			zap.String("url", merged.URL),
			zap.String("error", rerr.Error()),
		)
		r.metrics.RecordRequest(label, outcome, r.clock.Since(start))
		return nil, rerr
	}

	r.metrics.RecordRequest(label, monitoring.OutcomeSuccess, r.clock.Since(start))
	return env.Data, nil
}

// kindLabel keeps metric and span names to the known kinds plus "invalid"
func kindLabel(kind types.RequestKind) string {
	if !kind.Valid() {
		return invalidKindLabel
	}
	return kind.String()
}

func (r *Relay) awaitEndpoint(ctx context.Context) (transport.Endpoint, error) {
	start := r.clock.Now()
	endpoint, err := Await(ctx, r.clock, r.policy, func() (transport.Endpoint, bool) {
		ep := r.source.Endpoint()
		return ep, ep != nil
	})
	r.metrics.RecordReadinessWait(r.clock.Since(start), errors.Is(err, ErrTimeout))
	return endpoint, err
}

// dispatch never contacts the endpoint for an unknown kind
func (r *Relay) dispatch(ctx context.Context, endpoint transport.Endpoint, kind types.RequestKind, req types.Request) (types.Envelope, error) {
	switch kind {
	case types.KindREST:
		return endpoint.RestRequest(ctx, req)
	case types.KindFetch:
		return endpoint.FetchRequest(ctx, req)
	default:
		return types.Failed(fmt.Sprintf("Invalid request type: %s", kind)), nil
	}
}
