package http1

import (
	"io"
	"strconv"

	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/transport"
)

const (
	crlf          = "\r\n"
	contentLength = "Content-Length: "
	unknownStatus = "Unknown Status Code"
)

var chunkedFinalizer = []byte("0\r\n\r\n")

// Serializer renders responses back to the wire. The status line and headers are
// accumulated in a single buffer and flushed at once; the body follows framed by
// Content-Length or chunked transfer encoding, chosen from the body's declared
// length.
type Serializer struct {
	client transport.Client
	buff   []byte
}

func NewSerializer(client transport.Client, buff []byte) *Serializer {
	return &Serializer{
		client: client,
		buff:   buff[:0],
	}
}

// Write sends the whole response. The body's close hook is invoked on every exit
// path, successful or not. Responses to HEAD requests carry the same headers but
// no body bytes.
func (s *Serializer) Write(request *http.Request, response *http.Response) (err error) {
	defer s.clear()

	fields := response.Expose()
	body := fields.Body
	defer body.Close()

	s.appendStatusLine(fields.Code)

	for _, header := range fields.Headers {
		s.appendHeader(header.Key, header.Value)
	}

	length := body.Length()
	if length == http.UnknownLength {
		s.appendHeader("Transfer-Encoding", "chunked")
	} else {
		s.buff = append(s.buff, contentLength...)
		s.buff = strconv.AppendInt(s.buff, int64(length), 10)
		s.crlf()
	}

	s.crlf()

	if err = s.flush(); err != nil {
		return err
	}

	if request.Method == http.MethodHead {
		return nil
	}

	if length == http.UnknownLength {
		return s.writeChunkedBody(body)
	}

	return s.writePlainBody(body)
}

func (s *Serializer) writePlainBody(body http.BodyReader) error {
	for {
		piece, err := body.Retrieve()
		if len(piece) > 0 {
			// a zero-length raw write would be indistinguishable from nothing,
			// so it is simply never issued
			if werr := s.client.Write(piece); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}

func (s *Serializer) writeChunkedBody(body http.BodyReader) error {
	for {
		piece, err := body.Retrieve()
		if len(piece) > 0 {
			s.buff = strconv.AppendUint(s.buff[:0], uint64(len(piece)), 16)
			s.crlf()
			s.buff = append(s.buff, piece...)
			s.crlf()

			if werr := s.flush(); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return s.client.Write(chunkedFinalizer)
		default:
			return err
		}
	}
}

// appendStatusLine renders `HTTP/1.1 <code> <reason>`. Unrecognized codes get the
// fallback reason phrase.
func (s *Serializer) appendStatusLine(code status.Code) {
	s.buff = append(s.buff, "HTTP/1.1 "...)
	s.buff = strconv.AppendUint(s.buff, uint64(code), 10)
	s.buff = append(s.buff, ' ')

	reason := status.Text(code)
	if len(reason) == 0 {
		reason = unknownStatus
	}

	s.buff = append(s.buff, reason...)
	s.crlf()
}

func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ':', ' ')
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) flush() (err error) {
	if len(s.buff) > 0 {
		err = s.client.Write(s.buff)
		s.buff = s.buff[:0]
	}

	return err
}

func (s *Serializer) clear() {
	s.buff = s.buff[:0]
}
