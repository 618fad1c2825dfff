// transport/sockopt_stub.go
//go:build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable fallback: no listener socket options.

package transport

import "syscall"

func listenControl(network, address string, c syscall.RawConn) error {
	return nil
}
