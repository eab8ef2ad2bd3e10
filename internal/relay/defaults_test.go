package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

func TestMergeRESTDefaults(t *testing.T) {
	d := DefaultRequests()

	got := d.Merge(types.KindREST, types.Request{URL: "/x"})
	assert.Equal(t, "/x", got.URL)
	assert.Equal(t, "get", got.Method)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, got.Headers)

	got = d.Merge(types.KindREST, types.Request{
		URL:     "/x",
		Method:  "post",
		Headers: map[string]string{"X-A": "1"},
	})
	assert.Equal(t, "post", got.Method)
	assert.Equal(t, map[string]string{
		"Content-Type": "application/json",
		"X-A":          "1",
	}, got.Headers)
}

func TestMergeCallerHeaderWins(t *testing.T) {
	got := DefaultRequests().Merge(types.KindREST, types.Request{
		URL:     "/x",
		Headers: map[string]string{"Content-Type": "text/plain"},
	})
	assert.Equal(t, map[string]string{"Content-Type": "text/plain"}, got.Headers)
}

func TestMergeFetchHasNoDefaults(t *testing.T) {
	req := types.Request{URL: "/y"}
	got := DefaultRequests().Merge(types.KindFetch, req)
	assert.Equal(t, req, got)
	assert.Empty(t, got.Method)
	assert.Nil(t, got.Headers)
}

func TestMergeUnknownKindPassesThrough(t *testing.T) {
	req := types.Request{URL: "/z", Headers: map[string]string{"A": "b"}}
	got := DefaultRequests().Merge("bogus", req)
	assert.Equal(t, req, got)
}

func TestMergeDoesNotMutateCaller(t *testing.T) {
	headers := map[string]string{"X-A": "1"}
	options := map[string]interface{}{"cache": "no-store"}
	req := types.Request{URL: "/x", Headers: headers, Options: options}

	got := DefaultRequests().Merge(types.KindREST, req)
	got.Headers["X-B"] = "2"
	got.Options["mode"] = "cors"

	assert.Equal(t, map[string]string{"X-A": "1"}, headers)
	assert.Equal(t, map[string]interface{}{"cache": "no-store"}, options)
	assert.Empty(t, req.Method)
}

func TestMergeDoesNotMutateDefaults(t *testing.T) {
	d := DefaultRequests()
	got := d.Merge(types.KindREST, types.Request{URL: "/x"})
	got.Headers["X-B"] = "2"

	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, d[types.KindREST].Headers)
}

func TestMergeOptions(t *testing.T) {
	d := Defaults{
		types.KindFetch: {Options: map[string]interface{}{"credentials": "include", "mode": "cors"}},
	}
	got := d.Merge(types.KindFetch, types.Request{
		URL:     "/f",
		Options: map[string]interface{}{"mode": "same-origin"},
	})
	assert.Equal(t, map[string]interface{}{
		"credentials": "include",
		"mode":        "same-origin",
	}, got.Options)
}

func TestOverride(t *testing.T) {
	base := DefaultRequests()
	merged := base.Override(Defaults{
		types.KindREST:  {Headers: map[string]string{"Accept": "application/json"}},
		types.KindFetch: {Method: "GET"},
	})

	assert.Equal(t, "get", merged[types.KindREST].Method)
	assert.Equal(t, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}, merged[types.KindREST].Headers)
	assert.Equal(t, "GET", merged[types.KindFetch].Method)

	// base is untouched
	assert.Len(t, base[types.KindREST].Headers, 1)
	_, ok := base[types.KindFetch]
	assert.False(t, ok)
}
