/*
Package transport defines the channel capability the relay depends on and the
wire protocol spoken by the concrete transports.

# Overview

A Transport connects to an embedded frame and performs the handshake. The
resulting Channel exposes the two remote operations the frame offers
(restRequest, fetchRequest) and a Destroy method releasing the session.

# Wire Protocol

Every message is a JSON object with a "type" field:

	{"type":"handshake","id":"conn_..."}
	{"type":"handshake-reply","id":"conn_...","methods":["restRequest","fetchRequest"]}
	{"type":"call","id":"call_...","method":"restRequest","args":{"url":"/x"}}
	{"type":"reply","id":"call_...","result":{"success":true,"data":{}}}
	{"type":"reply","id":"call_...","error":"remote method threw"}

A reply carrying "error" is a rejection of the remote call itself, as opposed to
a result envelope with success=false.

# Implementations

  - ws: gorilla/websocket, for http(s) and ws(s) frame sources
  - nats: NATS request/reply, for nats:// frame sources

Mux routes a frame to an implementation by the scheme of its src.
*/
package transport
