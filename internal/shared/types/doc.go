// Package types provides the data model shared by the relay, its transports
// and the caller-facing HTTP surface.
//
// Core Types:
//   - RequestKind: closed set of request kinds (rest, fetch)
//   - Request: a request description forwarded into the frame
//   - Envelope: the {success, data} wrapper returned by the frame
//
// Example Usage:
//
//	req := types.Request{
//	    URL:    "/services/data/v45.0/sobjects/Account",
//	    Method: "post",
//	    Body:   `{"Name":"Salesforce"}`,
//	}
package types
