package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/shared/id"
)

func newTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New("framerelay", logging.Wrap(zap.New(core))), logs
}

func TestChildSpanSharesTrace(t *testing.T) {
	tracer, logs := newTracer(t)

	parent, ctx := tracer.StartSpan(context.Background(), "POST /rest")
	child, childCtx := tracer.StartSpan(ctx, "relay.rest")

	assert.True(t, id.Valid(parent.TraceID, id.TracePrefix))
	assert.True(t, id.Valid(parent.SpanID, id.SpanPrefix))
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, SpanID(childCtx))

	child.SetError(errors.New("boom"))
	tracer.Finish(child)
	tracer.Finish(parent)
	tracer.Close()

	assert.Equal(t, 1, logs.FilterMessage("Span completed with error").Len())
	assert.Equal(t, 1, logs.FilterMessage("Span completed").Len())
}

func TestNilTracerIsSafe(t *testing.T) {
	var tracer *Tracer
	span, ctx := tracer.StartSpan(context.Background(), "x")
	assert.Nil(t, span)
	span.SetTag("k", "v")
	tracer.Finish(span)
	tracer.Close()
	assert.Empty(t, TraceID(ctx))
}

func TestFinishAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newTracer(t)
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.Finish(span) })
	assert.Zero(t, logs.Len())
}

func TestHTTPMiddlewareContinuesTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newTracer(t)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	var seen string
	router.GET("/health", func(c *gin.Context) {
		seen = TraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderTraceID, "trace_upstream")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	tracer.Close()

	assert.Equal(t, "trace_upstream", seen)
	assert.Equal(t, "trace_upstream", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	entries := logs.FilterMessage("Span completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "GET /health", entries[0].ContextMap()["operation"])
	assert.Equal(t, "200", entries[0].ContextMap()["http.status"])
}
