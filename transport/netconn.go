// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"net"
	"time"
)

// NetConn adapts a net.Conn to the api.Conn surface the frame engine
// consumes.
type NetConn struct {
	conn net.Conn
}

// NewNetConn initializes a new NetConn.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn}
}

// Read fills buf from the socket.
func (n *NetConn) Read(buf []byte) (int, error) {
	return n.conn.Read(buf)
}

// Write sends buf to the socket in one call.
func (n *NetConn) Write(buf []byte) (int, error) {
	return n.conn.Write(buf)
}

// SetReadDeadline bounds the next Read.
func (n *NetConn) SetReadDeadline(t time.Time) error {
	return n.conn.SetReadDeadline(t)
}

// SetWriteDeadline bounds the next Write.
func (n *NetConn) SetWriteDeadline(t time.Time) error {
	return n.conn.SetWriteDeadline(t)
}

// Close the connection.
func (n *NetConn) Close() error {
	return n.conn.Close()
}

// RemoteAddr reports the peer address.
func (n *NetConn) RemoteAddr() string {
	return n.conn.RemoteAddr().String()
}
