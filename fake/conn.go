// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the transport
// interfaces.

package fake

import (
	"io"
	"sync"
	"time"

	"github.com/momentics/lightws/api"
)

// Conn is a fake implementation of api.Conn for testing. Reads are
// served from queued segments, one segment per call at most, so a
// frame split across segments exercises the same re-read path as a
// segmented TCP stream. When the script runs out, Read returns the
// configured error (io.EOF unless changed).
type Conn struct {
	mu       sync.Mutex
	cond     *sync.Cond
	script   [][]byte
	readErr  error
	writeErr error
	writes   [][]byte
	closed   bool
	block    bool
	remote   string

	readDeadlines     int
	writeDeadlines    int
	lastReadDeadline  time.Time
	lastWriteDeadline time.Time
}

// NewConn creates a new fake connection with an empty read script.
func NewConn() *Conn {
	c := &Conn{
		readErr: io.EOF,
		remote:  "fake:client",
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// SetBlocking configures Read to wait for queued data instead of
// reporting the end of the script. Close releases a blocked Read.
func (c *Conn) SetBlocking(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = v
	c.cond.Broadcast()
}

// QueueRead appends one read segment to the script.
func (c *Conn) QueueRead(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seg := make([]byte, len(data))
	copy(seg, data)
	c.script = append(c.script, seg)
	c.cond.Broadcast()
}

// SetReadError configures the error returned once the script is
// drained.
func (c *Conn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// SetWriteError configures the connection to fail every Write.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// Read implements api.Conn.Read.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.closed {
			return 0, api.ErrTransportClosed
		}
		if len(c.script) > 0 {
			break
		}
		if !c.block {
			return 0, c.readErr
		}
		c.cond.Wait()
	}

	seg := c.script[0]
	n := copy(p, seg)
	if n == len(seg) {
		c.script = c.script[1:]
	} else {
		c.script[0] = seg[n:]
	}
	return n, nil
}

// Write implements api.Conn.Write. Each call is captured as one entry,
// so tests can assert frame-per-write behavior.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, api.ErrTransportClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	c.writes = append(c.writes, buf)
	return len(p), nil
}

// SetReadDeadline implements api.Conn.SetReadDeadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readDeadlines++
	c.lastReadDeadline = t
	return nil
}

// SetWriteDeadline implements api.Conn.SetWriteDeadline.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeDeadlines++
	c.lastWriteDeadline = t
	return nil
}

// Close implements api.Conn.Close.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cond.Broadcast()
	return nil
}

// RemoteAddr implements api.Conn.RemoteAddr.
func (c *Conn) RemoteAddr() string {
	return c.remote
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Writes returns the captured writes, one entry per Write call.
func (c *Conn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	for i, w := range c.writes {
		buf := make([]byte, len(w))
		copy(buf, w)
		out[i] = buf
	}
	return out
}

// Bytes returns all written bytes concatenated in order.
func (c *Conn) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []byte
	for _, w := range c.writes {
		out = append(out, w...)
	}
	return out
}

// ReadDeadlines returns how many times a read deadline was armed.
func (c *Conn) ReadDeadlines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readDeadlines
}

// LastReadDeadline returns the most recently armed read deadline.
func (c *Conn) LastReadDeadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReadDeadline
}
