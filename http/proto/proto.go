package proto

import "bytes"

type Protocol uint8

const (
	Unknown Protocol = iota
	HTTP10
	HTTP11
)

var (
	http10 = []byte("HTTP/1.0")
	http11 = []byte("HTTP/1.1")
)

// FromBytes returns the protocol enum corresponding to the version token of
// a request line. Anything besides HTTP/1.0 and HTTP/1.1 is Unknown.
func FromBytes(raw []byte) Protocol {
	switch {
	case bytes.Equal(raw, http11):
		return HTTP11
	case bytes.Equal(raw, http10):
		return HTTP10
	default:
		return Unknown
	}
}

func (p Protocol) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return "unknown protocol"
	}
}
