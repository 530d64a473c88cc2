package http1

import (
	"bytes"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/proto"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/internal/buffer"
)

var crlfcrlf = []byte("\r\n\r\n")

// tchar marks the bytes allowed in a header field name, as per the token grammar
// [A-Za-z0-9!#$%&'*+.^_`|~-]+.
var tchar [256]bool

func init() {
	for c := byte('0'); c <= '9'; c++ {
		tchar[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		tchar[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		tchar[c] = true
	}
	for _, c := range []byte("!#$%&'*+.^_`|~-") {
		tchar[c] = true
	}
}

// Parser cuts complete header blocks off the receive buffer. It modifies the
// request object by pointer in performance purposes. The body is processed
// separately.
type Parser struct {
	request           *http.Request
	headerSectionSize int
}

func NewParser(request *http.Request, cfg *config.Config) *Parser {
	return &Parser{
		request:           request,
		headerSectionSize: cfg.HTTP.HeaderSectionSize,
	}
}

// Parse looks for a complete header block in the buffer. If none is there yet,
// it reports done=false without touching the buffer, so the engine can pull more
// data and try again. Once the terminating CRLFCRLF is found, the block is parsed
// into the request and popped off the buffer; whatever follows it stays intact.
func (p *Parser) Parse(buff *buffer.Buffer) (done bool, err error) {
	data := buff.Bytes()

	boundary := bytes.Index(data, crlfcrlf)
	if boundary == -1 {
		if len(data) >= p.headerSectionSize {
			return false, status.ErrHeaderTooLarge
		}

		return false, nil
	}

	if err = p.parseHeaderSection(data[:boundary+2]); err != nil {
		return false, err
	}

	buff.Pop(boundary + len(crlfcrlf))

	return true, nil
}

// parseHeaderSection parses the region up to and including the CRLF of the last
// header line. The terminating empty line is already guaranteed by the locator.
func (p *Parser) parseHeaderSection(data []byte) error {
	request := p.request

	line, data := cutLine(data)
	if err := p.parseRequestLine(line); err != nil {
		return err
	}

	for len(data) > 0 {
		line, data = cutLine(data)

		colon := bytes.IndexByte(line, ':')
		if colon == -1 {
			return status.ErrBadField
		}

		name := line[:colon]
		if !isToken(name) {
			return status.ErrBadField
		}

		value := bytes.TrimLeft(line[colon+1:], " \t")
		request.Headers.Add(string(name), string(value))
	}

	return nil
}

func (p *Parser) parseRequestLine(line []byte) error {
	request := p.request

	sp := bytes.IndexByte(line, ' ')
	if sp < 1 {
		return status.ErrBadRequest
	}

	method, rest := line[:sp], line[sp+1:]

	sp = bytes.LastIndexByte(rest, ' ')
	if sp < 1 {
		return status.ErrBadRequest
	}

	uri, version := rest[:sp], rest[sp+1:]

	request.Method = string(method)
	// the request-target is preserved verbatim. The buffer region it lives in is
	// popped right after parsing, hence the copy.
	request.URI = append(request.URI[:0], uri...)
	request.Proto = proto.FromBytes(version)
	if request.Proto == proto.Unknown {
		// only the HTTP/1.0 token changes the engine's behaviour; anything
		// unrecognized is served as HTTP/1.1.
		request.Proto = proto.HTTP11
	}

	return nil
}

// cutLine splits off the first CRLF-terminated line. The caller guarantees that
// a CRLF is present.
func cutLine(data []byte) (line, rest []byte) {
	lf := bytes.Index(data, crlfcrlf[:2])

	return data[:lf], data[lf+2:]
}

func isToken(name []byte) bool {
	if len(name) == 0 {
		return false
	}

	for _, c := range name {
		if !tchar[c] {
			return false
		}
	}

	return true
}
