package types

import "maps"

// RequestKind selects the remote operation a request is dispatched to
type RequestKind string

const (
	KindREST  RequestKind = "rest"
	KindFetch RequestKind = "fetch"
)

// Valid reports whether the kind names a known remote operation
func (k RequestKind) Valid() bool {
	return k == KindREST || k == KindFetch
}

func (k RequestKind) String() string { return string(k) }

// Request describes one request to be performed inside the frame.
// Body is sent as-is; Options carries kind-specific fields such as
// the init options of a fetch call.
type Request struct {
	URL     string                 `json:"url" yaml:"url,omitempty"`
	Method  string                 `json:"method,omitempty" yaml:"method,omitempty"`
	Body    string                 `json:"body,omitempty" yaml:"body,omitempty"`
	Headers map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// Clone returns a deep copy of the header and option maps
func (r Request) Clone() Request {
	out := r
	if r.Headers != nil {
		out.Headers = maps.Clone(r.Headers)
	}
	if r.Options != nil {
		out.Options = maps.Clone(r.Options)
	}
	return out
}
