package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/host"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/relay"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	relay   *relay.Relay
	adapter *host.Adapter
	logger  *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(r *relay.Relay, adapter *host.Adapter, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{relay: r, adapter: adapter, logger: logger.Named("http")}
}

// Rest relays a REST request through the frame
func (h *Handlers) Rest(c *gin.Context) {
	h.send(c, types.KindREST)
}

// Fetch relays a fetch request through the frame
func (h *Handlers) Fetch(c *gin.Context) {
	h.send(c, types.KindFetch)
}

// Request relays a request of the kind named in the path
func (h *Handlers) Request(c *gin.Context) {
	h.send(c, types.RequestKind(c.Param("kind")))
}

func (h *Handlers) send(c *gin.Context, kind types.RequestKind) {
	var req types.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body: " + err.Error(),
		})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "url is required",
		})
		return
	}

	data, err := h.relay.Send(c.Request.Context(), kind, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Warn("Relay request failed",
				zap.String("kind", kind.String()),
				zap.String("url", req.URL),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// statusFor maps relay errors onto HTTP statuses
func statusFor(err error) int {
	var remote *relay.RemoteError
	switch {
	case errors.Is(err, relay.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &remote):
		if remote.Local {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Health reports the bridge state
func (h *Handlers) Health(c *gin.Context) {
	conn := h.adapter.Connection()
	ready := conn.Endpoint() != nil
	src := ""
	if frame := conn.Frame(); frame != nil {
		src = frame.Src()
	}

	status := "waiting"
	if ready {
		status = "ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"initialized": conn.Initialized(),
		"ready":       ready,
		"frame_src":   src,
	})
}

// Reconnect tears the bridge down and connects again
func (h *Handlers) Reconnect(c *gin.Context) {
	err := h.adapter.Reconnect(c.Request.Context())
	switch {
	case errors.Is(err, host.ErrDestroyed):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	default:
		c.JSON(http.StatusAccepted, gin.H{
			"success":   true,
			"frame_src": h.adapter.TargetURL(),
		})
	}
}
