package simple

import (
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/router"
)

type (
	Handler      func(*http.Request) *http.Response
	ErrorHandler func(*http.Request, error) *http.Response
)

var _ router.Router = Router{}

// Router is the smallest possible routing surface: a handler for requests and a
// handler for engine-raised errors.
type Router struct {
	handler    Handler
	errHandler ErrorHandler
}

func New(handler Handler, errHandler ...ErrorHandler) Router {
	onError := defaultErrorHandler
	if len(errHandler) > 0 {
		onError = errHandler[0]
	}

	return Router{
		handler:    handler,
		errHandler: onError,
	}
}

func (r Router) OnRequest(request *http.Request) *http.Response {
	return r.handler(request)
}

func (r Router) OnError(request *http.Request, err error) *http.Response {
	return r.errHandler(request, err)
}

func defaultErrorHandler(request *http.Request, err error) *http.Response {
	return http.Error(request, err)
}
