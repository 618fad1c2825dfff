// transport/sockopt_linux.go
//go:build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux listener socket options. Address reuse keeps quick restarts
// from tripping over sockets in TIME_WAIT.

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl applies socket options to the listening socket before
// bind.
func listenControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
