package relay

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/framerelay/internal/shared/id"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

// Connection owns the frame and the channel of one host instance.
//
// Initialize is the only writer of the endpoint; readers only load it.
// initialized is true from the start of a handshake until the handshake fails
// or the connection is torn down.
type Connection struct {
	transport transport.Transport
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu          sync.RWMutex
	initialized bool
	frame       *dom.Element
	channel     transport.Channel
	endpoint    transport.Endpoint
	cancel      context.CancelFunc
	connID      id.ConnectionID
	generation  uint64

	handshakes sync.WaitGroup
}

// NewConnection creates an uninitialized connection
func NewConnection(t transport.Transport, logger *logging.Logger) *Connection {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Connection{
		transport: t,
		logger:    logger.Named("connection"),
	}
}

// WithMetrics attaches a metrics collector
func (c *Connection) WithMetrics(m *monitoring.Metrics) *Connection {
	c.metrics = m
	return c
}

// Initialize embeds a frame pointing at targetURL into container and starts
// the handshake in the background. It is a no-op while already initialized
// and while targetURL is empty. Reports whether a handshake was started.
func (c *Connection) Initialize(container *dom.Element, targetURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		c.logger.Debug("Connection already initialized", zap.String("conn_id", c.connID.String()))
		return false
	}
	if targetURL == "" {
		c.logger.Debug("Frame source is empty, waiting for target URL")
		return false
	}

	frame := dom.NewFrame(container, targetURL)
	container.AppendChild(frame)

	ctx, cancel := context.WithCancel(context.Background())
	c.generation++
	c.initialized = true
	c.frame = frame
	c.cancel = cancel
	c.connID = id.NewConnectionID()

	c.logger.Info("Connecting to frame",
		zap.String("conn_id", c.connID.String()),
		zap.String("frame_src", targetURL),
	)

	c.handshakes.Add(1)
	go c.handshake(ctx, c.generation, c.connID, frame)
	return true
}

func (c *Connection) handshake(ctx context.Context, gen uint64, connID id.ConnectionID, frame *dom.Element) {
	defer c.handshakes.Done()

	log := c.logger.With(zap.String("conn_id", connID.String()), zap.String("frame_src", frame.Src()))
	ch, err := c.transport.Connect(ctx, frame)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		// torn down while connecting
		if ch != nil {
			ch.Destroy()
		}
		log.Debug("Discarding handshake for torn down connection", zap.Error(err))
		c.metrics.RecordHandshake(monitoring.HandshakeDiscarded)
		return
	}

	if err != nil {
		cancel := c.cancel
		c.initialized = false
		c.frame = nil
		c.cancel = nil
		c.mu.Unlock()

		cancel()
		frame.Remove()
		log.Error("Error establishing connection to frame", zap.Error(&HandshakeError{FrameSrc: frame.Src(), Err: err}))
		c.metrics.RecordHandshake(monitoring.HandshakeFailed)
		return
	}

	c.channel = ch
	c.endpoint = ch
	c.mu.Unlock()

	log.Info("Connected to frame")
	c.metrics.RecordHandshake(monitoring.HandshakeSucceeded)
	c.metrics.SetConnectionReady(true)
}

// Endpoint returns the resolved remote endpoint, or nil before the handshake
// completes and after teardown.
func (c *Connection) Endpoint() transport.Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// Initialized reports whether a handshake is pending or established
func (c *Connection) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Frame returns the embedded frame, if any
func (c *Connection) Frame() *dom.Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Teardown cancels a pending handshake, destroys the channel, removes the frame
// and clears all state. Safe to call at any time. Calls already dispatched are
// left to the channel.
func (c *Connection) Teardown() {
	c.mu.Lock()
	ch, cancel, frame := c.channel, c.cancel, c.frame
	wasInitialized := c.initialized
	connID := c.connID

	c.channel = nil
	c.endpoint = nil
	c.frame = nil
	c.cancel = nil
	c.initialized = false
	c.connID = ""
	c.generation++
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ch != nil {
		ch.Destroy()
	}
	if frame != nil {
		frame.Remove()
	}

	if wasInitialized {
		c.logger.Info("Connection torn down", zap.String("conn_id", connID.String()))
		c.metrics.SetConnectionReady(false)
	}
}

// Wait blocks until no handshake goroutine is running
func (c *Connection) Wait() {
	c.handshakes.Wait()
}
