// File: transport/listener.go
// TCP listener feeding the single-client accept loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/momentics/lightws/api"
)

// ErrListenerClosed is returned by Accept when the listener has been
// closed. This sentinel error is used to signal graceful shutdown.
var ErrListenerClosed = errors.New("listener closed")

// TCPListener implements api.Listener over a TCP socket with the
// platform socket options applied before bind.
type TCPListener struct {
	listener net.Listener
}

// Listen binds a TCP listener on addr. Socket options (address reuse)
// are applied through the platform control hook.
func Listen(addr string) (*TCPListener, error) {
	lc := net.ListenConfig{Control: listenControl}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &TCPListener{listener: ln}, nil
}

// Accept returns the next client connection wrapped for the engine.
func (l *TCPListener) Accept() (api.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, fmt.Errorf("accept connection: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return NewNetConn(conn), nil
}

// Close shuts down the listener to stop Accept.
// After Close, Accept returns ErrListenerClosed.
func (l *TCPListener) Close() error {
	return l.listener.Close()
}

// Addr returns the bound listener address.
func (l *TCPListener) Addr() string {
	return l.listener.Addr().String()
}
