package config

import (
	"time"
)

type (
	NET struct {
		// Addr is the address the listener binds by default.
		Addr string
		// ReadBufferSize is a size of the buffer in bytes which will be used to read
		// from the socket.
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, the connection is closed. Zero disables the
		// deadline.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often the Accept() call is interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
	}

	HTTP struct {
		// HeaderSectionSize limits how many bytes may be buffered while the header
		// block, the request line included, is still incomplete. Once that many bytes
		// are buffered without the terminating empty line, the request is rejected
		// with 413 Request Entity Too Large.
		HeaderSectionSize int
		// ResponseBuffSize is the initial capacity of the buffer the response headers
		// are rendered into.
		ResponseBuffSize int
		// FileBuffSize is the default size of the buffer for streaming file-backed
		// response bodies. Response.File and router/static do not read it: both
		// allocate fixed 16 KiB buffers.
		FileBuffSize int
	}

	Body struct {
		// MaxSize limits the size of a request body that will be processed. Bodies
		// with a larger Content-Length, and chunked bodies growing past it, fail with
		// 413. Bodies delimited by the connection close are not limited.
		MaxSize uint
	}
)

// Config holds settings used across the server, mainly restrictions, limitations
// and pre-allocations.
type Config struct {
	NET  NET
	HTTP HTTP
	Body Body
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		NET: NET{
			Addr:                      "127.0.0.1:1234",
			ReadBufferSize:            2 * 1024,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		HTTP: HTTP{
			HeaderSectionSize: 8 * 1024,
			ResponseBuffSize:  1024,
			FileBuffSize:      16 * 1024,
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024, // 512 megabytes
		},
	}
}
