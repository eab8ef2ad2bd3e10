package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/config"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Lookup.TargetURL = "https://vf.example.com"
	cfg.Relay.PollInterval = 10 * time.Millisecond
	cfg.Relay.WaitTimeout = 100 * time.Millisecond
	cfg.RateLimit.Enabled = false
	return cfg
}

func ready(t *testing.T, b *Bridge, ft *testutil.FakeTransport, ch *testutil.FakeChannel) {
	t.Helper()
	require.NoError(t, b.Adapter.Ready(context.Background()))
	<-ft.Started()
	ft.Resolve(ch)
	b.Connection.Wait()
}

func TestNewBridgeRequiresTarget(t *testing.T) {
	cfg := config.Default()

	_, err := NewBridge(cfg, testutil.NewFakeTransport(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestNewBridgeUsesLookupService(t *testing.T) {
	lookupSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://vf.example.com"}`))
	}))
	defer lookupSrv.Close()

	cfg := config.Default()
	cfg.Lookup.URL = lookupSrv.URL

	ft := testutil.NewFakeTransport()
	b, err := NewBridge(cfg, ft, nil, nil, nil)
	require.NoError(t, err)
	defer b.Close()

	ready(t, b, ft, testutil.NewFakeChannel(types.Succeeded(nil)))
	assert.Equal(t, "https://vf.example.com/apex/LC_APIPage", b.Adapter.TargetURL())
	assert.True(t, b.Connection.Initialized())
}

func TestNewBridgeLoadsDefaultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rest:\n  headers:\n    X-Tenant: acme\n"), 0o600))

	cfg := testConfig()
	cfg.Relay.DefaultsFile = path

	ft := testutil.NewFakeTransport()
	b, err := NewBridge(cfg, ft, nil, nil, nil)
	require.NoError(t, err)
	defer b.Close()

	ch := testutil.NewFakeChannel(types.Succeeded("ok"))
	ready(t, b, ft, ch)

	_, err = b.Relay.RestRequest(context.Background(), types.Request{URL: "/services/data"})
	require.NoError(t, err)

	calls := ch.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "acme", calls[0].Request.Headers["X-Tenant"])
}

func TestNewBridgeBadDefaultsFile(t *testing.T) {
	cfg := testConfig()
	cfg.Relay.DefaultsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewBridge(cfg, testutil.NewFakeTransport(), nil, nil, nil)
	assert.Error(t, err)
}

func TestNewTransportSchemes(t *testing.T) {
	mux := NewTransport(config.Default().Transport, nil)

	assert.ElementsMatch(t, []string{"http", "https", "ws", "wss", "nats", "tls"}, mux.Schemes())
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Relay.PollInterval = 0

	_, err := NewServer(cfg, testutil.NewFakeTransport(), nil)
	assert.Error(t, err)
}

func TestServerRelaysThroughBridge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ft := testutil.NewFakeTransport()
	srv, err := NewServer(testConfig(), ft, nil)
	require.NoError(t, err)
	defer func() { _ = srv.Close(context.Background()) }()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	w := do("GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"waiting"`)

	ch := testutil.NewFakeChannel(types.Succeeded(map[string]interface{}{"id": "001"}))
	ready(t, srv.Bridge(), ft, ch)

	w = do("POST", "/fetch", `{"url":"/services/data"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"001"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = do("GET", "/health", "")
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	w = do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "relay_requests_total")
}

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	srv, err := NewServer(cfg, testutil.NewFakeTransport(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, srv.Bridge().Connection.Initialized())
}
