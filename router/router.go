package router

import (
	"github.com/ember-web/ember/http"
)

// Router dispatches parsed requests to handlers. OnError is invoked for errors
// the engine itself raises (malformed requests, body framing violations) and is
// expected to map status-carrying errors to matching responses.
type Router interface {
	OnRequest(request *http.Request) *http.Response
	OnError(request *http.Request, err error) *http.Response
}
