package main

import "net"

// readEvent is what a connection's reader goroutine hands to the server
// loop: a chunk of raw bytes, or a terminal read error.
type readEvent struct {
	c    *client
	data []byte
	err  error
}

// client pairs one live reader connection with its framing buffer. It is
// created on accept and owned exclusively by the server loop until the
// connection is dropped.
type client struct {
	conn net.Conn
	buf  *framingBuffer
}

func newClient(c net.Conn) *client {
	return &client{conn: c, buf: newFramingBuffer()}
}

// reader pipes raw bytes from the socket into the server loop. It is
// the only goroutine besides the loop that touches the connection, and
// it only ever reads. Runs until the first read error, which includes
// the loop closing the connection.
func (c *client) reader(events chan<- readEvent, quit <-chan struct{}) {
	for {
		chunk := make([]byte, ringBufferSize)
		n, err := c.conn.Read(chunk)
		if err != nil {
			select {
			case events <- readEvent{c: c, err: err}:
			case <-quit:
			}
			return
		}
		select {
		case events <- readEvent{c: c, data: chunk[:n]}:
		case <-quit:
			return
		}
	}
}
