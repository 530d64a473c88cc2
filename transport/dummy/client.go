package dummy

import (
	"io"
	"net"

	"github.com/ember-web/ember/transport"
)

var _ transport.Client = new(Client)

// Client is a scripted in-memory client. Every read operation returns the next
// chunk it was initialised with; once they run out, reads report a clean
// end-of-stream. Written data is collected for inspection.
type Client struct {
	data    [][]byte
	tmp     []byte
	pointer int
	closed  bool
	Written []byte
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.closed || c.pointer >= len(c.data) {
		return nil, io.EOF
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	if len(takeback) > 0 {
		c.tmp = takeback
	}
}

func (c *Client) Write(p []byte) error {
	c.Written = append(c.Written, p...)
	return nil
}

func (c *Client) Conn() net.Conn {
	return nil
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}
