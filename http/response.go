package http

import (
	"os"

	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/kv"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
)

const (
	preallocRespHeaders = 7
	fileBuffSize        = 16 * 1024
)

// Fields is the response state the builder accumulates. The framing header
// (Content-Length or Transfer-Encoding) is chosen by the serializer from the
// body's declared length and must not appear here.
type Fields struct {
	Code    status.Code
	Headers []kv.Pair
	Body    BodyReader
}

func (f *Fields) Clear() {
	f.Code = status.OK
	f.Headers = f.Headers[:0]
	f.Body = NoBody
}

// Response is a builder for a single HTTP response.
type Response struct {
	fields Fields
}

// NewResponse returns a new instance of the Response object with status code set
// to 200 OK, pre-allocated space for headers and an empty body.
func NewResponse() *Response {
	return &Response{
		fields: Fields{
			Code:    status.OK,
			Headers: make([]kv.Pair, 0, preallocRespHeaders),
			Body:    NoBody,
		},
	}
}

// Code sets the response code.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Header appends a header entry. Repeated keys are rendered as repeated lines.
func (r *Response) Header(key string, values ...string) *Response {
	for i := range values {
		r.fields.Headers = append(r.fields.Headers, kv.Pair{
			Key:   key,
			Value: values[i],
		})
	}

	return r
}

// String sets the response's body to the passed string.
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to the passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself.
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = NewMemoryReader(body)
	return r
}

// Reader sets the response's body to an arbitrary body reader. A reader with an
// unknown length makes the serializer fall back to chunked transfer encoding.
func (r *Response) Reader(body BodyReader) *Response {
	r.fields.Body = body
	return r
}

// TryJSON renders the model into an in-memory body, setting Content-Type
// accordingly.
func (r *Response) TryJSON(model any) (*Response, error) {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	stream := json.ConfigDefault.BorrowStream(buff)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)
	if err != nil {
		return r, err
	}

	body := make([]byte, len(buff.B))
	copy(body, buff.B)

	return r.Header("Content-Type", "application/json").Bytes(body), nil
}

// JSON does the same as TryJSON does, except the returned error is implicitly
// wrapped by Error.
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// TryFile tries to open a file for reading and returns a response streaming it
// with a stat-derived Content-Length.
func (r *Response) TryFile(path string) (*Response, error) {
	fd, err := os.Open(path)
	if err != nil {
		// if we can't open it, it doesn't exist
		return r, status.ErrNotFound
	}

	stat, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return r, status.ErrInternalServerError
	}
	if !stat.Mode().IsRegular() {
		_ = fd.Close()
		return r, status.ErrNotFound
	}

	return r.Reader(NewFileReader(fd, int(stat.Size()), make([]byte, fileBuffSize))), nil
}

// File opens a file for reading and streams it as the response body. If an error
// occurred, it'll be silently converted into an error response.
func (r *Response) File(path string) *Response {
	resp, err := r.TryFile(path)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error returns a response builder with an error set. If passed err is nil, nothing
// happens. If an instance of status.HTTPError is passed, the code is taken from it;
// otherwise the response is a plain 500.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	if http, ok := err.(status.HTTPError); ok {
		return r.Code(http.Code).String(http.Message)
	}

	return r.
		Code(status.InternalServerError).
		String("internal server error")
}

// Expose returns the accumulated response state. Used mostly in internal purposes.
func (r *Response) Expose() *Fields {
	return &r.fields
}

// Clear discards everything was done with the Response object before.
func (r *Response) Clear() *Response {
	r.fields.Clear()
	return r
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler.
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

// String is a predicate to request.Respond().String(...)
func String(request *Request, str string) *Response {
	return request.Respond().String(str)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error) *Response {
	return request.Respond().Error(err)
}
