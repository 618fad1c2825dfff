// File: api/conn.go
// Author: momentics <momentics@gmail.com>
//
// Defines the transport abstraction the protocol engine consumes.
// Socket primitives stay outside the core; any stream transport that
// supports deadlines can carry the protocol.

package api

import "time"

// Conn abstracts a full-duplex stream connection to one client.
type Conn interface {
	// Read reads into a preallocated buffer.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection.
	// The engine always supplies one complete encoded frame per call.
	Write(p []byte) (n int, err error)

	// SetReadDeadline bounds the next Read; inactivity detection
	// rides on it.
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline bounds the next Write.
	SetWriteDeadline(t time.Time) error

	// Close shuts down the connection and notifies upstream layers.
	Close() error

	// RemoteAddr reports the peer address for logging.
	RemoteAddr() string
}

// Listener accepts client connections for the server loop.
type Listener interface {
	// Accept blocks until the next client arrives.
	Accept() (Conn, error)

	// Close stops the listener; a blocked Accept returns an error.
	Close() error

	// Addr reports the bound address.
	Addr() string
}
