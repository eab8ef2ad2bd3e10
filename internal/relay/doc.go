/*
Package relay forwards HTTP-like requests into an embedded frame over an
established channel, so that the network call happens in the frame's own
execution context (and with its session).

# Overview

Three pieces cooperate:

  - Connection owns the frame and the channel for one host instance. Initialize
    appends the frame and starts the handshake in the background; Teardown
    destroys everything and allows a clean re-handshake later.
  - Await is the readiness gate: it polls a readiness check until it yields a
    value or a bounded timeout elapses.
  - Relay merges per-kind defaults into a request, waits for the endpoint,
    dispatches to restRequest or fetchRequest and unwraps the {success, data}
    envelope.

# Usage Example

	conn := relay.NewConnection(mux, logger)
	conn.Initialize(container, "https://vf.example.com/apex/LC_APIPage")

	r := relay.NewRelay(conn, logger)
	data, err := r.RestRequest(ctx, types.Request{URL: "/services/data/v45.0/limits"})
	switch {
	case errors.Is(err, relay.ErrTimeout):
	    // the handshake never completed
	case err != nil:
	    var remote *relay.RemoteError
	    errors.As(err, &remote)
	}

# Errors

  - TimeoutError (ErrTimeout): the channel was not ready within the wait policy
  - RemoteError: the frame answered success=false, or the request kind is unknown
  - HandshakeError, SetupError: logged where no caller is waiting yet

Rejections of the remote call itself are returned unchanged.
*/
package relay
