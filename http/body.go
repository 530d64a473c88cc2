package http

import (
	"io"

	"github.com/ember-web/ember/http/status"
)

// UnknownLength is reported by body readers which cannot declare their size in
// advance. Responses carrying such a body are framed with chunked transfer encoding.
const UnknownLength = -1

// BodyReader is a pull-based byte source representing a request or response body.
// Successive Retrieve calls return pieces of the body in wire order; io.EOF signals
// end-of-stream and may accompany the final piece. Once io.EOF was returned, every
// subsequent call reports io.EOF with no data. Readers are stateful and must be
// read strictly sequentially.
type BodyReader interface {
	// Length returns the declared byte count, or UnknownLength.
	Length() int
	// Retrieve reads and returns the next piece of the body.
	Retrieve() ([]byte, error)
	// Close releases resources held by the reader, e.g. a file handle.
	Close() error
}

// Drain reads the body to end-of-stream, discarding the data.
func Drain(b BodyReader) error {
	for {
		_, err := b.Retrieve()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}

// Collect reads the body to end-of-stream and returns the concatenation of all
// the retrieved pieces.
func Collect(b BodyReader) ([]byte, error) {
	var buff []byte

	for {
		data, err := b.Retrieve()
		buff = append(buff, data...)
		switch err {
		case nil:
		case io.EOF:
			return buff, nil
		default:
			return nil, err
		}
	}
}

// NoBody is an empty in-memory body.
var NoBody BodyReader = &memoryReader{eof: true}

type memoryReader struct {
	data []byte
	eof  bool
}

// NewMemoryReader returns a body reader serving the passed slice WITHOUT COPYING.
func NewMemoryReader(data []byte) BodyReader {
	return &memoryReader{data: data}
}

func (m *memoryReader) Length() int {
	return len(m.data)
}

func (m *memoryReader) Retrieve() ([]byte, error) {
	if m.eof {
		return nil, io.EOF
	}

	m.eof = true

	return m.data, io.EOF
}

func (m *memoryReader) Close() error {
	return nil
}

type fileReader struct {
	fd       io.ReadCloser
	buff     []byte
	size     int
	received int
}

// NewFileReader returns a body reader streaming a whole file of a known size. If the
// file turns out to be shorter or longer than the stat-derived size, the reader fails:
// the declared size is already on the wire by then.
func NewFileReader(fd io.ReadCloser, size int, buff []byte) BodyReader {
	return &fileReader{
		fd:   fd,
		buff: buff,
		size: size,
	}
}

func (f *fileReader) Length() int {
	return f.size
}

func (f *fileReader) Retrieve() ([]byte, error) {
	if f.received == f.size {
		return nil, io.EOF
	}

	n, err := f.fd.Read(f.buff)
	if f.received += n; f.received > f.size {
		return nil, status.ErrFileSizeChanged
	}

	switch err {
	case nil:
	case io.EOF:
		if f.received < f.size {
			return nil, status.ErrFileSizeChanged
		}

		return f.buff[:n], io.EOF
	default:
		return nil, err
	}

	if n == 0 {
		return nil, status.ErrFileSizeChanged
	}

	if f.received == f.size {
		err = io.EOF
	}

	return f.buff[:n], err
}

func (f *fileReader) Close() error {
	return f.fd.Close()
}

// RangeFile is the subset of a file handle the range reader needs.
type RangeFile interface {
	io.ReaderAt
	io.Closer
}

type fileRangeReader struct {
	fd          RangeFile
	buff        []byte
	length      int
	offset, end int64
}

// NewFileRangeReader returns a body reader streaming the [start, end) byte range of
// a file via positioned reads.
func NewFileRangeReader(fd RangeFile, start, end int64, buff []byte) BodyReader {
	return &fileRangeReader{
		fd:     fd,
		buff:   buff,
		length: int(end - start),
		offset: start,
		end:    end,
	}
}

func (f *fileRangeReader) Length() int {
	return f.length
}

func (f *fileRangeReader) Retrieve() ([]byte, error) {
	left := f.end - f.offset
	if left == 0 {
		return nil, io.EOF
	}

	buff := f.buff
	if int64(len(buff)) > left {
		buff = buff[:left]
	}

	n, err := f.fd.ReadAt(buff, f.offset)
	f.offset += int64(n)

	switch err {
	case nil:
	case io.EOF:
		if f.offset < f.end {
			return nil, status.ErrFileSizeChanged
		}
	default:
		return nil, err
	}

	if f.offset == f.end {
		err = io.EOF
	} else {
		err = nil
	}

	return buff[:n], err
}

func (f *fileRangeReader) Close() error {
	return f.fd.Close()
}
