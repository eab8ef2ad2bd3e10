package relay

import (
	"maps"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// Defaults holds the request fields merged under every request of a kind
type Defaults map[types.RequestKind]types.Request

// DefaultRequests returns the built-in defaults. Only REST has any.
func DefaultRequests() Defaults {
	return Defaults{
		types.KindREST: {
			Method:  "get",
			Headers: map[string]string{"Content-Type": "application/json"},
		},
	}
}

// Merge layers req over the defaults for kind and returns a new request.
// Caller fields win at the top level; headers and options merge key by key
// with caller keys winning. req is never modified.
func (d Defaults) Merge(kind types.RequestKind, req types.Request) types.Request {
	out := req.Clone()
	base, ok := d[kind]
	if !ok {
		return out
	}

	if out.URL == "" {
		out.URL = base.URL
	}
	if out.Method == "" {
		out.Method = base.Method
	}
	if out.Body == "" {
		out.Body = base.Body
	}
	out.Headers = mergeMaps(base.Headers, req.Headers)
	out.Options = mergeMaps(base.Options, req.Options)
	return out
}

// Override returns a copy of d with each kind of other layered on top
func (d Defaults) Override(other Defaults) Defaults {
	out := make(Defaults, len(d)+len(other))
	for kind, req := range d {
		out[kind] = req.Clone()
	}
	for kind, req := range other {
		if _, ok := out[kind]; ok {
			out[kind] = out.Merge(kind, req)
		} else {
			out[kind] = req.Clone()
		}
	}
	return out
}

func mergeMaps[K comparable, V any](base, override map[K]V) map[K]V {
	if len(base) == 0 && len(override) == 0 {
		return maps.Clone(override)
	}
	out := make(map[K]V, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}
