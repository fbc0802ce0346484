package main

import "errors"

// ringBufferSize is the capacity of each connection's framing buffer and
// of the wire buffer used for sends. A single protocol command can never
// exceed one buffer's worth of payload.
const ringBufferSize = 512

var errBufferFull = errors.New("framing buffer full")

// framingBuffer is a fixed-capacity ring buffer accumulating the raw
// byte stream of one connection until it holds at least one complete
// command. It never grows.
type framingBuffer struct {
	buf   []byte
	start int
	size  int
}

func newFramingBuffer() *framingBuffer {
	return &framingBuffer{buf: make([]byte, ringBufferSize)}
}

// Len reports the number of unread bytes.
func (b *framingBuffer) Len() int {
	return b.size
}

// Write appends p. A write beyond capacity returns errBufferFull and
// leaves the buffer untouched; the caller must treat that as fatal for
// the connection, not retry.
func (b *framingBuffer) Write(p []byte) error {
	if b.size+len(p) > len(b.buf) {
		return errBufferFull
	}
	for i, c := range p {
		b.buf[(b.start+b.size+i)%len(b.buf)] = c
	}
	b.size += len(p)
	return nil
}

// Peek copies out the first n unread bytes without consuming them. Fewer
// bytes are returned if less than n are buffered.
func (b *framingBuffer) Peek(n int) []byte {
	if n > b.size {
		n = b.size
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = b.buf[(b.start+i)%len(b.buf)]
	}
	return out
}

// Consume discards the first n unread bytes.
func (b *framingBuffer) Consume(n int) {
	if n > b.size {
		n = b.size
	}
	b.start = (b.start + n) % len(b.buf)
	b.size -= n
}
