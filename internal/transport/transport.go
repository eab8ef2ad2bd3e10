package transport

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/framerelay/internal/dom"
	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// Remote method names exposed by the frame
const (
	MethodREST  = "restRequest"
	MethodFetch = "fetchRequest"
)

var (
	ErrChannelClosed   = errors.New("channel closed")
	ErrNoFrameSource   = errors.New("frame has no src")
	ErrMissingMethods  = errors.New("frame does not expose required methods")
	ErrUnknownScheme   = errors.New("no transport registered for scheme")
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// Endpoint is the remote capability resolved by a successful handshake
type Endpoint interface {
	RestRequest(ctx context.Context, req types.Request) (types.Envelope, error)
	FetchRequest(ctx context.Context, req types.Request) (types.Envelope, error)
}

// Channel is an established session with a frame
type Channel interface {
	Endpoint
	// Destroy releases the session. In-flight calls fail with ErrChannelClosed.
	Destroy()
}

// Transport establishes channels to frames
type Transport interface {
	Connect(ctx context.Context, frame *dom.Element) (Channel, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, frame *dom.Element) (Channel, error)

// Connect calls f(ctx, frame)
func (f TransportFunc) Connect(ctx context.Context, frame *dom.Element) (Channel, error) {
	return f(ctx, frame)
}

// FrameSource returns the src of frame or ErrNoFrameSource
func FrameSource(frame *dom.Element) (string, error) {
	if frame == nil {
		return "", ErrNoFrameSource
	}
	src := frame.Src()
	if src == "" {
		return "", ErrNoFrameSource
	}
	return src, nil
}

// RequiredMethods lists the methods a handshake reply must advertise
func RequiredMethods() []string {
	return []string{MethodREST, MethodFetch}
}

// CheckMethods verifies a handshake reply advertises every required method
func CheckMethods(advertised []string) error {
	for _, m := range RequiredMethods() {
		if !slices.Contains(advertised, m) {
			return fmt.Errorf("%w: missing %s", ErrMissingMethods, m)
		}
	}
	return nil
}
