// File: server/callbacks.go
// Package server: application callback registration.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log"
	"sync/atomic"

	"github.com/momentics/lightws/api"
)

// Handlers must be installed before Start so the frame loop can read
// the table without locks; registration after Start is logged and
// ignored. Payload slices handed to data handlers are valid only for
// the duration of the call.

// OnText installs the handler for complete text messages.
func (s *Server) OnText(fn api.DataHandler) {
	if s.callbacksMutable("OnText") {
		s.callbacks.OnText = fn
	}
}

// OnBinary installs the handler for complete binary messages.
func (s *Server) OnBinary(fn api.DataHandler) {
	if s.callbacksMutable("OnBinary") {
		s.callbacks.OnBinary = fn
	}
}

// OnPing installs the handler invoked after a ping has been answered.
func (s *Server) OnPing(fn api.EventHandler) {
	if s.callbacksMutable("OnPing") {
		s.callbacks.OnPing = fn
	}
}

// OnPong installs the handler for pong frames from the client.
func (s *Server) OnPong(fn api.EventHandler) {
	if s.callbacksMutable("OnPong") {
		s.callbacks.OnPong = fn
	}
}

// OnClose installs the handler invoked when the client asks to close,
// before the close reply goes out.
func (s *Server) OnClose(fn api.EventHandler) {
	if s.callbacksMutable("OnClose") {
		s.callbacks.OnClose = fn
	}
}

// OnConnected installs the handler invoked once the handshake
// completes and the client is open.
func (s *Server) OnConnected(fn api.EventHandler) {
	if s.callbacksMutable("OnConnected") {
		s.callbacks.OnConnected = fn
	}
}

// OnDisconnected installs the handler invoked after the client is torn
// down, when no client is connected anymore.
func (s *Server) OnDisconnected(fn api.EventHandler) {
	if s.callbacksMutable("OnDisconnected") {
		s.callbacks.OnDisconnected = fn
	}
}

func (s *Server) callbacksMutable(name string) bool {
	if atomic.LoadInt32(&s.started) == 1 {
		log.Printf("lightws: %s ignored, server already started", name)
		return false
	}
	return true
}
