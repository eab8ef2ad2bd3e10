// Package nats implements the frame transport over NATS request/reply.
//
// A frame src of nats://host:4222/bridge.tenant1 connects to the server at
// host:4222 and addresses the frame on the subjects bridge.tenant1.handshake,
// bridge.tenant1.restRequest and bridge.tenant1.fetchRequest.
package nats

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	comms "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/shared/id"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

const handshakeSubject = "handshake"

// ErrNoSubjectPrefix is returned for a frame src without a path
var ErrNoSubjectPrefix = errors.New("frame src has no subject prefix")

// Config tunes the NATS connection opened per frame
type Config struct {
	ClientName     string
	ConnectTimeout time.Duration
}

// Transport opens one NATS connection per frame
type Transport struct {
	cfg    Config
	logger *logging.Logger
}

// New creates a NATS transport
func New(cfg Config, logger *logging.Logger) *Transport {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "framerelay"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Transport{cfg: cfg, logger: logger.Named("nats")}
}

// Schemes lists the frame src schemes this transport serves
func Schemes() []string {
	return []string{"nats", "tls"}
}

// Connect opens the connection and performs the handshake
func (t *Transport) Connect(ctx context.Context, frame *dom.Element) (transport.Channel, error) {
	src, err := transport.FrameSource(frame)
	if err != nil {
		return nil, err
	}
	server, prefix, err := parseSource(src)
	if err != nil {
		return nil, err
	}

	log := t.logger.With(zap.String("server", server), zap.String("prefix", prefix))
	nc, err := t.connect(server, log)
	if err != nil {
		return nil, err
	}

	ch := &channel{nc: nc, prefix: prefix, logger: log}
	reply, err := ch.request(ctx, handshakeSubject, transport.NewHandshake(id.NewConnectionID().String()))
	if err == nil {
		err = transport.CheckHandshakeReply(reply)
	}
	if err != nil {
		ch.Destroy()
		return nil, err
	}
	return ch, nil
}

func (t *Transport) connect(server string, log *logging.Logger) (*comms.Conn, error) {
	log.Debug("Connecting to NATS")

	nc, err := comms.Connect(server,
		comms.Name(t.cfg.ClientName),
		comms.Timeout(t.cfg.ConnectTimeout),
		comms.ReconnectWait(2*time.Second),
		comms.MaxReconnects(60),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(*comms.Conn) {
			log.Debug("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", server, err)
	}
	return nc, nil
}

// parseSource splits nats://host:port/a/b into the server URL and the
// subject prefix "a.b"
func parseSource(src string) (server, prefix string, err error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", "", fmt.Errorf("invalid frame src %q: %w", src, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "nats" && scheme != "tls" {
		return "", "", fmt.Errorf("%w %q", transport.ErrUnknownScheme, u.Scheme)
	}

	prefix = strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", ".")
	if prefix == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNoSubjectPrefix, src)
	}

	server = (&url.URL{Scheme: scheme, User: u.User, Host: u.Host}).String()
	return server, prefix, nil
}

type channel struct {
	nc     *comms.Conn
	prefix string
	logger *logging.Logger

	mu        sync.Mutex
	destroyed bool
}

func (c *channel) RestRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.call(ctx, transport.MethodREST, req)
}

func (c *channel) FetchRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.call(ctx, transport.MethodFetch, req)
}

func (c *channel) call(ctx context.Context, method string, req types.Request) (types.Envelope, error) {
	reply, err := c.request(ctx, method, transport.NewCall(id.NewCallID().String(), method, req))
	if err != nil {
		return types.Envelope{}, err
	}
	return transport.ReplyEnvelope(method, reply)
}

func (c *channel) request(ctx context.Context, subject string, msg *transport.Message) (*transport.Message, error) {
	if c.isDestroyed() {
		return nil, transport.ErrChannelClosed
	}
	data, err := transport.Encode(msg)
	if err != nil {
		return nil, err
	}

	// nats rejects contexts that can never be done
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := c.nc.RequestWithContext(ctx, c.prefix+"."+subject, data)
	if err != nil {
		if c.isDestroyed() || errors.Is(err, comms.ErrConnectionClosed) {
			return nil, transport.ErrChannelClosed
		}
		return nil, fmt.Errorf("%s request failed: %w", subject, err)
	}
	return transport.Decode(resp.Data)
}

func (c *channel) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Destroy closes the connection. In-flight requests fail with
// transport.ErrChannelClosed.
func (c *channel) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()

	c.nc.Close()
}
