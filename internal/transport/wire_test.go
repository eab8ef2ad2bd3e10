package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

func TestDecodeRejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestCallOnTheWire(t *testing.T) {
	data, err := Encode(NewCall("call_1", MethodREST, types.Request{URL: "/x", Method: "get"}))
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MessageCall, msg.Type)
	assert.Equal(t, MethodREST, msg.Method)
	require.NotNil(t, msg.Args)
	assert.Equal(t, "/x", msg.Args.URL)
}

func TestReplyEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    types.Envelope
		wantErr bool
		remote  bool
	}{
		{
			name: "success result",
			raw:  `{"type":"reply","id":"c","result":{"success":true,"data":{"id":1}}}`,
			want: types.Envelope{Success: true, Data: map[string]interface{}{"id": float64(1)}},
		},
		{
			name: "failed result is still a result",
			raw:  `{"type":"reply","id":"c","result":{"success":false,"data":"boom"}}`,
			want: types.Envelope{Success: false, Data: "boom"},
		},
		{
			name:    "rejected call",
			raw:     `{"type":"reply","id":"c","error":"method threw"}`,
			wantErr: true,
			remote:  true,
		},
		{
			name:    "reply without result",
			raw:     `{"type":"reply","id":"c"}`,
			wantErr: true,
		},
		{
			name:    "wrong message type",
			raw:     `{"type":"handshake","id":"c"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			require.NoError(t, err)

			env, err := ReplyEnvelope(MethodREST, msg)
			if tt.wantErr {
				require.Error(t, err)
				var rce *RemoteCallError
				assert.Equal(t, tt.remote, errors.As(err, &rce))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestCheckMethods(t *testing.T) {
	assert.NoError(t, CheckMethods([]string{MethodFetch, MethodREST, "extra"}))
	assert.ErrorIs(t, CheckMethods([]string{MethodREST}), ErrMissingMethods)
}
