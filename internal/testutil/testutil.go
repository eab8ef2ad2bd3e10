// Package testutil provides test doubles for the transport capability.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

// MockEndpoint is a testify mock of transport.Endpoint.
type MockEndpoint struct {
	mock.Mock
}

// RestRequest mocks the RestRequest method.
func (m *MockEndpoint) RestRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Envelope), args.Error(1)
}

// FetchRequest mocks the FetchRequest method.
func (m *MockEndpoint) FetchRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Envelope), args.Error(1)
}

// NewMockEndpoint creates a mock endpoint whose expectations are asserted
// when the test finishes.
func NewMockEndpoint(t *testing.T) *MockEndpoint {
	t.Helper()
	m := new(MockEndpoint)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// StaticSource is an EndpointSource whose endpoint can be swapped.
type StaticSource struct {
	mu       sync.RWMutex
	endpoint transport.Endpoint
}

// Endpoint returns the current endpoint.
func (s *StaticSource) Endpoint() transport.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// Set replaces the endpoint; nil makes the source unready.
func (s *StaticSource) Set(ep transport.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = ep
}

// Call records one invocation of a FakeChannel.
type Call struct {
	Method  string
	Request types.Request
}

// FakeChannel is a channel answering every call with a fixed envelope.
type FakeChannel struct {
	mu        sync.Mutex
	envelope  types.Envelope
	err       error
	calls     []Call
	destroyed int
}

// NewFakeChannel creates a channel answering with env.
func NewFakeChannel(env types.Envelope) *FakeChannel {
	return &FakeChannel{envelope: env}
}

// FailWith makes every call reject with err.
func (c *FakeChannel) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// RestRequest implements transport.Endpoint.
func (c *FakeChannel) RestRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.record(transport.MethodREST, req)
}

// FetchRequest implements transport.Endpoint.
func (c *FakeChannel) FetchRequest(ctx context.Context, req types.Request) (types.Envelope, error) {
	return c.record(transport.MethodFetch, req)
}

func (c *FakeChannel) record(method string, req types.Request) (types.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: method, Request: req})
	if c.err != nil {
		return types.Envelope{}, c.err
	}
	return c.envelope, nil
}

// Destroy implements transport.Channel.
func (c *FakeChannel) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed++
}

// Calls returns a copy of the recorded calls.
func (c *FakeChannel) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call{}, c.calls...)
}

// Destroyed returns how many times Destroy ran.
func (c *FakeChannel) Destroyed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

type connectResult struct {
	ch  transport.Channel
	err error
}

// FakeTransport is a transport whose handshakes are settled by the test.
// Connect blocks until Resolve or Reject is called, or ctx is done.
type FakeTransport struct {
	mu      sync.Mutex
	frames  []*dom.Element
	results chan connectResult
	started chan struct{}
}

// NewFakeTransport creates a transport with no pending handshakes.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		results: make(chan connectResult),
		started: make(chan struct{}, 16),
	}
}

// Connect implements transport.Transport.
func (f *FakeTransport) Connect(ctx context.Context, frame *dom.Element) (transport.Channel, error) {
	f.mu.Lock()
	f.frames = append(f.frames, frame)
	f.mu.Unlock()
	f.started <- struct{}{}

	select {
	case r := <-f.results:
		return r.ch, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started returns a channel receiving one value per Connect call.
func (f *FakeTransport) Started() <-chan struct{} {
	return f.started
}

// Resolve completes the pending handshake with ch.
func (f *FakeTransport) Resolve(ch transport.Channel) {
	f.results <- connectResult{ch: ch}
}

// Reject fails the pending handshake with err.
func (f *FakeTransport) Reject(err error) {
	f.results <- connectResult{err: err}
}

// Connects returns how many handshakes were started.
func (f *FakeTransport) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// Frames returns the frames handshakes were started against.
func (f *FakeTransport) Frames() []*dom.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*dom.Element{}, f.frames...)
}
