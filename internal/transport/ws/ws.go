// Package ws implements the frame transport over a websocket.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/shared/id"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

const closeGracePeriod = time.Second

// Config tunes the websocket dialer
type Config struct {
	HandshakeTimeout  time.Duration
	EnableCompression bool
}

// Transport dials one websocket per frame
type Transport struct {
	dialer           *websocket.Dialer
	handshakeTimeout time.Duration
	logger           *logging.Logger
}

// New creates a websocket transport
func New(cfg Config, logger *logging.Logger) *Transport {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transport{
		dialer: &websocket.Dialer{
			Proxy:             websocket.DefaultDialer.Proxy,
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: cfg.EnableCompression,
		},
		handshakeTimeout: cfg.HandshakeTimeout,
		logger:           logger.Named("ws"),
	}
}

// Schemes lists the frame src schemes this transport serves
func Schemes() []string {
	return []string{"http", "https", "ws", "wss"}
}

// Connect dials the frame src and performs the handshake
func (t *Transport) Connect(ctx context.Context, frame *dom.Element) (transport.Channel, error) {
	src, err := transport.FrameSource(frame)
	if err != nil {
		return nil, err
	}
	target, err := socketURL(src)
	if err != nil {
		return nil, err
	}

	conn, _, err := t.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}

	ch := newChannel(conn, t.logger.With(zap.String("frame_src", src)))
	go ch.readLoop()

	reply, err := t.handshake(ctx, ch)
	if err == nil {
		err = transport.CheckHandshakeReply(reply)
	}
	if err != nil {
		ch.Destroy()
		return nil, err
	}
	return ch, nil
}

// handshake waits at most handshakeTimeout for the frame's reply; zero waits
// until ctx is done
func (t *Transport) handshake(ctx context.Context, ch *channel) (*transport.Message, error) {
	if t.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.handshakeTimeout)
		defer cancel()
	}
	reply, err := ch.roundTrip(ctx, transport.NewHandshake(id.NewConnectionID().String()))
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("no handshake reply within %s: %w", t.handshakeTimeout, err)
	}
	return reply, err
}

func socketURL(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid frame src %q: %w", src, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w %q", transport.ErrUnknownScheme, u.Scheme)
	}
	return u.String(), nil
}

// channel is a handshaken websocket session. Writes are serialized; replies
// are routed to pending calls by id from a single read loop.
type channel struct {
	conn   *websocket.Conn
	logger *logging.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *transport.Message
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

func newChannel(conn *websocket.Conn, logger *logging.Logger) *channel {
	return &channel{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan *transport.Message),
		done:    make(chan struct{}),
	}
}

func (c *channel) RestRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.call(ctx, transport.MethodREST, req)
}

func (c *channel) FetchRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.call(ctx, transport.MethodFetch, req)
}

func (c *channel) call(ctx context.Context, method string, req types.Request) (types.Envelope, error) {
	reply, err := c.roundTrip(ctx, transport.NewCall(id.NewCallID().String(), method, req))
	if err != nil {
		return types.Envelope{}, err
	}
	return transport.ReplyEnvelope(method, reply)
}

func (c *channel) roundTrip(ctx context.Context, msg *transport.Message) (*transport.Message, error) {
	data, err := transport.Encode(msg)
	if err != nil {
		return nil, err
	}

	replies := make(chan *transport.Message, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, transport.ErrChannelClosed
	}
	c.pending[msg.ID] = replies
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}

	select {
	case reply := <-replies:
		return reply, nil
	case <-c.done:
		return nil, transport.ErrChannelClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *channel) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("Frame socket closed", zap.Error(err))
			}
			c.close(false)
			return
		}

		msg, err := transport.Decode(data)
		if err != nil {
			c.logger.Warn("Dropping malformed message", zap.Error(err))
			continue
		}

		c.mu.Lock()
		replies, ok := c.pending[msg.ID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping unmatched reply", zap.String("id", msg.ID))
			continue
		}
		select {
		case replies <- msg:
		default:
		}
	}
}

// Destroy sends a close frame and closes the socket. In-flight calls fail
// with transport.ErrChannelClosed.
func (c *channel) Destroy() {
	c.close(true)
}

func (c *channel) close(graceful bool) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)

		if graceful {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGracePeriod))
		}
		_ = c.conn.Close()
	})
}
