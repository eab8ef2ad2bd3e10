package relay

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ErrTimeout matches every *TimeoutError
var ErrTimeout = errors.New("timeout trying to establish connection to frame")

// TimeoutError reports a readiness wait that exceeded its bound
type TimeoutError struct {
	Timeout time.Duration
	Waited  time.Duration
	Polls   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: not ready after %s (%d polls)", ErrTimeout, e.Waited, e.Polls)
}

// Is makes errors.Is(err, ErrTimeout) hold
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// RemoteError is a failed envelope turned into an error. Its message is the
// envelope's data. Local is set when the relay produced the envelope itself
// (unknown request kind) without contacting the frame.
type RemoteError struct {
	Data  interface{}
	Local bool
	msg   string
}

func newRemoteError(data interface{}, local bool) *RemoteError {
	return &RemoteError{Data: data, Local: local, msg: describe(data)}
}

func (e *RemoteError) Error() string {
	return e.msg
}

// describe renders envelope data as an error message
func describe(data interface{}) string {
	switch v := data.(type) {
	case nil:
		return "remote request failed without description"
	case string:
		return v
	case error:
		return v.Error()
	}
	s, err := sonic.MarshalString(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	return s
}

// SetupError reports a failed target-URL lookup
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return "error getting frame target URL: " + e.Err.Error()
}

func (e *SetupError) Unwrap() error { return e.Err }

// HandshakeError reports a rejected transport connect
type HandshakeError struct {
	FrameSrc string
	Err      error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("error establishing connection to frame %s: %v", e.FrameSrc, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }
