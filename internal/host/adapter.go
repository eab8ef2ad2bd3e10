// Package host binds the relay connection to the lifecycle of the component
// that hosts it: render, re-render and removal.
package host

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/lookup"
	"github.com/GriffinCanCode/framerelay/internal/relay"
)

// DefaultPagePath is the path of the bridge page on the target domain
const DefaultPagePath = "/apex/LC_APIPage"

// ErrDestroyed is returned by Ready and Reconnect after Destroy
var ErrDestroyed = errors.New("host adapter destroyed")

// Adapter drives a relay.Connection from host lifecycle events
type Adapter struct {
	conn      *relay.Connection
	resolver  lookup.Resolver
	container *dom.Element
	pagePath  string
	logger    *logging.Logger

	mu          sync.Mutex
	targetURL   string
	initialized bool
	destroyed   bool
}

// NewAdapter creates an adapter embedding frames into container
func NewAdapter(conn *relay.Connection, resolver lookup.Resolver, container *dom.Element, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		conn:      conn,
		resolver:  resolver,
		container: container,
		pagePath:  DefaultPagePath,
		logger:    logger.Named("host"),
	}
}

// WithPagePath overrides the bridge page path
func (a *Adapter) WithPagePath(path string) *Adapter {
	a.pagePath = path
	return a
}

// Ready resolves the target URL and initializes the connection. A lookup
// failure is logged and leaves the adapter unready; the returned error is the
// same *relay.SetupError.
func (a *Adapter) Ready(ctx context.Context) error {
	if a.isDestroyed() {
		return ErrDestroyed
	}

	base, err := a.resolver.ResolveTargetURL(ctx)
	if err != nil {
		serr := &relay.SetupError{Err: err}
		a.logger.Error("Error getting frame target URL", zap.Error(serr))
		a.mu.Lock()
		a.targetURL = ""
		a.mu.Unlock()
		return serr
	}
	target := FrameURL(base, a.pagePath)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return ErrDestroyed
	}
	a.targetURL = target
	if a.conn.Initialize(a.container, target) {
		a.initialized = true
	}
	return nil
}

// Reconnect tears the connection down and runs Ready again
func (a *Adapter) Reconnect(ctx context.Context) error {
	if a.isDestroyed() {
		return ErrDestroyed
	}
	a.logger.Info("Reconnecting frame", zap.String("frame_src", a.TargetURL()))
	a.conn.Teardown()
	return a.Ready(ctx)
}

// Destroy tears the connection down once. Later calls do nothing.
func (a *Adapter) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	a.destroyed = true
	if a.initialized {
		a.conn.Teardown()
	}
}

func (a *Adapter) isDestroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}

// TargetURL returns the last composed frame URL
func (a *Adapter) TargetURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.targetURL
}

// Connection returns the managed connection
func (a *Adapter) Connection() *relay.Connection {
	return a.conn
}

// FrameURL joins the target base URL and the page path
func FrameURL(base, pagePath string) string {
	if pagePath == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(pagePath, "/")
}
