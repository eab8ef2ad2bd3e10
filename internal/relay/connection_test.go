package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/testutil"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

const target = "https://frames.example.com/apex/LC_APIPage"

func waitStarted(t *testing.T, ft *testutil.FakeTransport) {
	t.Helper()
	select {
	case <-ft.Started():
	case <-time.After(time.Second):
		t.Fatal("handshake not started")
	}
}

func TestInitializeTwiceStartsOneHandshake(t *testing.T) {
	ft := testutil.NewFakeTransport()
	conn := NewConnection(ft, nil)
	container := dom.NewContainer()

	assert.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	assert.False(t, conn.Initialize(container, target))

	assert.Equal(t, 1, ft.Connects())
	require.Len(t, dom.Frames(container), 1)
	assert.Equal(t, target, dom.Frames(container)[0].Src())
	assert.Nil(t, conn.Endpoint())

	ch := testutil.NewFakeChannel(types.Succeeded(nil))
	ft.Resolve(ch)
	conn.Wait()

	assert.Same(t, ch, conn.Endpoint())
	assert.False(t, conn.Initialize(container, target))
	assert.Equal(t, 1, ft.Connects())
}

func TestInitializeEmptyTargetIsNoop(t *testing.T) {
	ft := testutil.NewFakeTransport()
	conn := NewConnection(ft, nil)
	container := dom.NewContainer()

	assert.False(t, conn.Initialize(container, ""))
	assert.False(t, conn.Initialized())
	assert.Empty(t, dom.Frames(container))
	assert.Zero(t, ft.Connects())
}

func TestHandshakeFailureResetsGuard(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ft := testutil.NewFakeTransport()
	metrics := monitoring.NewMetrics()
	conn := NewConnection(ft, logging.Wrap(zap.New(core))).WithMetrics(metrics)
	container := dom.NewContainer()

	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	ft.Reject(errors.New("refused"))
	conn.Wait()

	assert.False(t, conn.Initialized())
	assert.Nil(t, conn.Endpoint())
	assert.Nil(t, conn.Frame())
	assert.Empty(t, dom.Frames(container))

	failed := logs.FilterMessage("Error establishing connection to frame")
	require.Equal(t, 1, failed.Len())
	entry := failed.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Contains(t, entry.ContextMap()["error"], "refused")

	// a later Initialize retries
	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	assert.Equal(t, 2, ft.Connects())
	conn.Teardown()
	conn.Wait()
}

func TestLateHandshakeAfterTeardownIsDestroyed(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	ch := testutil.NewFakeChannel(types.Succeeded(nil))
	slow := transport.TransportFunc(func(ctx context.Context, frame *dom.Element) (transport.Channel, error) {
		close(started)
		<-release
		return ch, nil
	})

	conn := NewConnection(slow, nil)
	container := dom.NewContainer()
	require.True(t, conn.Initialize(container, target))
	<-started

	conn.Teardown()
	assert.Empty(t, dom.Frames(container))

	close(release)
	conn.Wait()

	assert.Equal(t, 1, ch.Destroyed())
	assert.Nil(t, conn.Endpoint())
	assert.False(t, conn.Initialized())
}

func TestTeardownCancelsPendingHandshake(t *testing.T) {
	ft := testutil.NewFakeTransport()
	conn := NewConnection(ft, nil)
	container := dom.NewContainer()

	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	conn.Teardown()
	conn.Wait()

	assert.False(t, conn.Initialized())
	assert.Nil(t, conn.Endpoint())
}

func TestTeardownDestroysChannelAndFrame(t *testing.T) {
	ft := testutil.NewFakeTransport()
	conn := NewConnection(ft, nil)
	container := dom.NewContainer()

	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	ch := testutil.NewFakeChannel(types.Succeeded(nil))
	ft.Resolve(ch)
	conn.Wait()
	frame := conn.Frame()
	require.NotNil(t, frame)

	conn.Teardown()
	conn.Teardown()

	assert.Equal(t, 1, ch.Destroyed())
	assert.False(t, frame.Attached())
	assert.Empty(t, dom.Frames(container))
	assert.Nil(t, conn.Endpoint())
	assert.Nil(t, conn.Frame())
}

func TestTeardownWithoutInitialize(t *testing.T) {
	conn := NewConnection(testutil.NewFakeTransport(), nil)
	assert.NotPanics(t, conn.Teardown)
	assert.Nil(t, conn.Endpoint())
}

func TestReinitializeAfterTeardown(t *testing.T) {
	ft := testutil.NewFakeTransport()
	conn := NewConnection(ft, nil)
	container := dom.NewContainer()

	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	ft.Resolve(testutil.NewFakeChannel(types.Succeeded(nil)))
	conn.Wait()
	conn.Teardown()

	require.True(t, conn.Initialize(container, target))
	waitStarted(t, ft)
	second := testutil.NewFakeChannel(types.Succeeded(nil))
	ft.Resolve(second)
	conn.Wait()

	assert.Same(t, second, conn.Endpoint())
	assert.Len(t, dom.Frames(container), 1)
}
