package transport

import (
	"net"
	"time"
)

// Client is a thin adapter over an accepted socket. At most one read is in flight
// at any time; bytes delivered but not consumed are given back via Pushback and
// served by the next Read before the socket is touched again. No bytes are pulled
// from the kernel unless Read is called, which keeps the per-connection memory
// bounded by one read buffer plus whatever the receive buffer accumulated.
type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) error
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	pending []byte
	timeout time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

// Read returns data preserved via Pushback, if any, otherwise reads into the
// internal buffer and returns a piece of it back. A zero timeout disables the
// read deadline.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 {
		// deliver the data first; the error resurfaces on the next read
		return c.buff[:n], nil
	}

	return nil, err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	if len(b) > 0 {
		c.pending = b
	}
}

// Write writes data into the underlying connection.
func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)

	return err
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
