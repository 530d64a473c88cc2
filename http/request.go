package http

import (
	"context"
	"net"

	"github.com/ember-web/ember/http/proto"
	"github.com/ember-web/ember/kv"
	"github.com/ember-web/ember/transport"
)

var zeroContext = context.Background()

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

// Request methods the server distinguishes. Methods are kept as plain strings:
// the engine only ever compares them against GET and HEAD.
const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
)

// Request represents a single parsed HTTP request. It is immutable after parse,
// except the Body, which is bound anew for every request on the connection.
type Request struct {
	// Method is the request method verbatim, e.g. "GET".
	Method string
	// URI holds the request-target exactly as it appeared on the request line. No
	// decoding or normalization is applied.
	URI []byte
	// Proto is the protocol version of the request.
	Proto proto.Protocol
	// Headers holds the parsed header fields in their original order. Lookup is
	// case-insensitive.
	Headers Headers
	// Body provides access to the message body.
	Body BodyReader
	// Remote holds the remote address. Please note that this is generally not a good
	// parameter to identify a user, because there might be proxies in the middle.
	Remote net.Addr
	// Ctx is a user-managed context. Reset sets it back to an empty context after
	// every exchange, so values stored in it live for a single request.
	Ctx context.Context

	response *Response
}

func NewRequest(client transport.Client, headers *kv.Storage) *Request {
	return &Request{
		Proto:    proto.HTTP11,
		Headers:  headers,
		Body:     NoBody,
		Remote:   client.Remote(),
		Ctx:      zeroContext,
		response: NewResponse(),
	}
}

// Respond returns the response builder.
//
// WARNING: this method clears the builder under the hood. As it is passed by
// reference, it'll be cleared EVERYWHERE along a handler.
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

// Reset prepares the request for the next exchange on the same connection.
func (r *Request) Reset() {
	r.Method = ""
	r.URI = nil
	r.Headers.Clear()
	r.Body = NoBody
	r.Ctx = zeroContext
}
