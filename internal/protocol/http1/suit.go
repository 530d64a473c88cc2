package http1

import (
	"io"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/proto"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/internal/buffer"
	"github.com/ember-web/ember/router"
	"github.com/ember-web/ember/transport"
	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/strcomp"
	"github.com/rs/zerolog"
)

// Suit ties the parser, the body readers and the serializer into the
// per-connection request loop.
type Suit struct {
	*Parser
	*Serializer
	cfg           *config.Config
	router        router.Router
	client        transport.Client
	request       *http.Request
	buff          *buffer.Buffer
	chunkedParser *chunkedbody.Parser
	log           zerolog.Logger
}

func New(
	cfg *config.Config,
	r router.Router,
	client transport.Client,
	request *http.Request,
	log zerolog.Logger,
) *Suit {
	return &Suit{
		Parser:        NewParser(request, cfg),
		Serializer:    NewSerializer(client, make([]byte, 0, cfg.HTTP.ResponseBuffSize)),
		cfg:           cfg,
		router:        r,
		client:        client,
		request:       request,
		buff:          buffer.New(),
		chunkedParser: chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		log:           log,
	}
}

// Serve processes requests on the connection until it terminates. The underlying
// socket is closed on every exit path.
func (s *Suit) Serve() {
	for s.serveOnce() {
	}

	_ = s.client.Close()
}

// ServeOnce handles at most one exchange, reporting whether the connection is
// still usable afterwards.
func (s *Suit) ServeOnce() bool {
	return s.serveOnce()
}

func (s *Suit) serveOnce() (ok bool) {
	req := s.request

	for {
		done, err := s.Parse(s.buff)
		if err != nil {
			s.respondError(err)
			return false
		}

		if done {
			break
		}

		data, err := s.client.Read()
		switch err {
		case nil:
			s.buff.Push(data)
		case io.EOF:
			if s.buff.Len() == 0 {
				// the peer is done with us between requests
				return false
			}

			s.respondError(status.ErrUnexpectedEOF)
			return false
		default:
			// a transport error is latched on the socket; no response can
			// plausibly be delivered anymore
			return false
		}
	}

	// the bytes following the header block belong to the body reader now. They
	// are handed over through the client's pushback slot, so readers naturally
	// consume them before pulling fresh chunks off the socket.
	if s.buff.Len() > 0 {
		s.client.Pushback(s.buff.Bytes())
		s.buff.Pop(s.buff.Len())
	}

	body, err := NewBodyReader(s.client, s.chunkedParser, s.cfg.Body, req)
	if err != nil {
		s.respondError(err)
		return false
	}

	req.Body = body

	if err = s.Write(req, s.invokeHandler(req)); err != nil {
		// if an error happened while writing the response, it makes no sense
		// to try to write anything again
		return false
	}

	if req.Proto == proto.HTTP10 || strcomp.EqualFold(req.Headers.Value("Connection"), "close") {
		return false
	}

	// the handler isn't obliged to consume the body, yet the next request's
	// header block begins right after it on the wire
	if err = http.Drain(req.Body); err != nil {
		return false
	}

	req.Reset()

	return true
}

func (s *Suit) invokeHandler(req *http.Request) (resp *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Any("panic", r).Bytes("uri", req.URI).Msg("handler panicked")
			resp = req.Respond().Code(status.InternalServerError)
		}
	}()

	return notNil(req, s.router.OnRequest(req))
}

// respondError serializes an error response before the connection is destroyed.
// Socket errors don't matter at this point: the connection is done either way.
func (s *Suit) respondError(err error) {
	_ = s.Write(s.request, notNil(s.request, s.router.OnError(s.request, err)))
}

func notNil(req *http.Request, resp *http.Response) *http.Response {
	if resp != nil {
		return resp
	}

	return http.Respond(req)
}
