// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

// WebSocketGUID is the fixed magic value appended to the client key
// when computing Sec-WebSocket-Accept (RFC 6455 section 1.3).
const WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	// Opcodes
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA

	// Frame limit settings
	MaxControlPayloadLen = 125
	MaxFrameHeaderLen    = 14 // extended payload plus mask key

	// Bit masks
	FinBit  = 0x80
	MaskBit = 0x80

	// Handshake limits
	HandshakeBufferSize = 512
	AcceptKeyMaxLen     = 24 // a 16-byte nonce base64-encodes to 24 chars

	// DefaultMaxFrameSize is the in-buffer frame ceiling F. Frames whose
	// header plus payload exceed the receive buffer take the heap path.
	DefaultMaxFrameSize = 16384

	// DefaultMaxMessageSize caps heap-path payloads and reassembled
	// fragmented messages.
	DefaultMaxMessageSize = 1 << 20

	// PingPayloadLen is the size of the random liveness ping payload.
	PingPayloadLen = 4
)

// IsControlOpcode reports whether op is close, ping, or pong.
func IsControlOpcode(op byte) bool {
	return op >= OpcodeClose
}
