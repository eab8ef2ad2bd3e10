package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/GriffinCanCode/framerelay/internal/dom"
)

// Mux routes frames to transports by the scheme of their src
type Mux struct {
	mu         sync.RWMutex
	transports map[string]Transport
}

// NewMux creates an empty mux
func NewMux() *Mux {
	return &Mux{transports: make(map[string]Transport)}
}

// Register binds t to each scheme
func (m *Mux) Register(t Transport, schemes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range schemes {
		m.transports[strings.ToLower(s)] = t
	}
}

// Schemes returns the registered schemes
func (m *Mux) Schemes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.transports))
	for s := range m.transports {
		out = append(out, s)
	}
	return out
}

// Connect implements Transport
func (m *Mux) Connect(ctx context.Context, frame *dom.Element) (Channel, error) {
	src, err := FrameSource(frame)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid frame src %q: %w", src, err)
	}

	m.mu.RLock()
	t, ok := m.transports[strings.ToLower(u.Scheme)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownScheme, u.Scheme)
	}
	return t.Connect(ctx, frame)
}
