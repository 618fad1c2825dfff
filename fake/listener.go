// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake listener handing out scripted connections.

package fake

import (
	"sync"

	"github.com/momentics/lightws/api"
)

// Listener is a fake implementation of api.Listener for testing.
// Accept blocks until a connection is enqueued or the listener is
// closed.
type Listener struct {
	mu     sync.Mutex
	conns  chan api.Conn
	closed bool
}

// NewListener creates a new fake listener.
func NewListener() *Listener {
	return &Listener{
		conns: make(chan api.Conn, 4),
	}
}

// Enqueue hands one connection to the next Accept call.
func (l *Listener) Enqueue(c api.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.conns <- c
}

// Accept implements api.Listener.Accept.
func (l *Listener) Accept() (api.Conn, error) {
	c, ok := <-l.conns
	if !ok {
		return nil, api.ErrTransportClosed
	}
	return c, nil
}

// Close implements api.Listener.Close.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.conns)
	}
	return nil
}

// Addr implements api.Listener.Addr.
func (l *Listener) Addr() string {
	return "fake:0"
}
