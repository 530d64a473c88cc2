package http1

import (
	"io"
	"strconv"
	"strings"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/transport"
	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/strcomp"
)

// NewBodyReader binds a body reader for the parsed request. The receive buffer's
// leftover was already pushed back into the client at this point, so readers pull
// buffered bytes before the socket is touched.
func NewBodyReader(
	client transport.Client, chunkedParser *chunkedbody.Parser, cfg config.Body, request *http.Request,
) (http.BodyReader, error) {
	contentLength := 0
	value, hasContentLength := request.Headers.Get("Content-Length")
	if hasContentLength {
		var err error
		contentLength, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil || contentLength < 0 {
			return nil, status.ErrBadContentLength
		}
	}

	chunked := strcomp.EqualFold(transferEncoding(request), "chunked")

	switch request.Method {
	case http.MethodGet, http.MethodHead:
		// body-forbidden methods always carry a zero-length body
		if contentLength > 0 || chunked {
			return nil, status.ErrBodyNotAllowed
		}

		return http.NoBody, nil
	}

	switch {
	case hasContentLength:
		return &plainBodyReader{
			client:    client,
			length:    contentLength,
			bytesLeft: uint(contentLength),
			maxSize:   cfg.MaxSize,
		}, nil
	case chunked:
		return &chunkedBodyReader{
			client:  client,
			parser:  chunkedParser,
			maxSize: cfg.MaxSize,
		}, nil
	default:
		return &untilCloseReader{client: client}, nil
	}
}

// transferEncoding returns the first comma-separated token of the
// Transfer-Encoding header value.
func transferEncoding(request *http.Request) string {
	value := request.Headers.Value("Transfer-Encoding")
	if comma := strings.IndexByte(value, ','); comma != -1 {
		value = value[:comma]
	}

	return strings.TrimSpace(value)
}

type plainBodyReader struct {
	client             transport.Client
	length             int
	bytesLeft, maxSize uint
}

func (p *plainBodyReader) Length() int {
	return p.length
}

func (p *plainBodyReader) Retrieve() (body []byte, err error) {
	if p.bytesLeft == 0 {
		return nil, io.EOF
	}

	data, err := p.client.Read()
	switch err {
	case nil:
	case io.EOF:
		// the peer hung up in the middle of a sized body
		return nil, status.ErrUnexpectedEOF
	default:
		return nil, err
	}

	if p.bytesLeft > p.maxSize {
		return nil, status.ErrBodyTooLarge
	}

	if dataLen := uint(len(data)); dataLen >= p.bytesLeft {
		body, data = data[:p.bytesLeft], data[p.bytesLeft:]
		p.client.Pushback(data)
		p.bytesLeft = 0
		err = io.EOF
	} else {
		p.bytesLeft -= dataLen
		body = data
	}

	return body, err
}

func (p *plainBodyReader) Close() error {
	return nil
}

type chunkedBodyReader struct {
	client            transport.Client
	parser            *chunkedbody.Parser
	received, maxSize uint
	eof               bool
}

func (c *chunkedBodyReader) Length() int {
	return http.UnknownLength
}

func (c *chunkedBodyReader) Retrieve() (body []byte, err error) {
	if c.eof {
		// the terminator was already consumed; whatever follows on the wire
		// belongs to the next request
		return nil, io.EOF
	}

	data, err := c.client.Read()
	switch err {
	case nil:
	case io.EOF:
		return nil, status.ErrUnexpectedEOF
	default:
		return nil, err
	}

	chunk, extra, err := c.parser.Parse(data, false)
	switch err {
	case nil, io.EOF:
	default:
		return nil, status.ErrBadChunk
	}

	if c.received += uint(len(chunk)); c.received > c.maxSize {
		return nil, status.ErrBodyTooLarge
	}

	c.client.Pushback(extra)
	c.eof = err == io.EOF

	return chunk, err
}

func (c *chunkedBodyReader) Close() error {
	return nil
}

type untilCloseReader struct {
	client transport.Client
}

func (u *untilCloseReader) Length() int {
	return http.UnknownLength
}

func (u *untilCloseReader) Retrieve() ([]byte, error) {
	data, err := u.client.Read()
	if err == io.EOF {
		// a clean shutdown is the only way such a body ends
		return nil, io.EOF
	}

	return data, err
}

func (u *untilCloseReader) Close() error {
	return nil
}
