// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the lightws library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrNotConnected      = fmt.Errorf("no client connected")
	ErrTransportClosed   = fmt.Errorf("transport is closed")
	ErrHandshakeFailed   = fmt.Errorf("websocket handshake failed")
	ErrProtocolViolation = fmt.Errorf("websocket protocol violation")
	ErrAllocationFailed  = fmt.Errorf("payload allocation refused")
	ErrSendFailed        = fmt.Errorf("frame send failed")
	ErrAlreadyStarted    = fmt.Errorf("server already started")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	CodeOK ErrorCode = iota
	CodeConfig
	CodeTransport
	CodeHandshake
	CodeProtocol
	CodeAllocation
	CodeSend
	CodeNotConnected
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
