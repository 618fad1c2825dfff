// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket frame encoding/decoding and masking logic.
//
// This module avoids allocations and implements zero-copy wherever
// possible: decoding works in place over the receive buffer and
// encoding serializes into a caller-supplied transmit buffer.

package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/momentics/lightws/api"
)

// WSFrame represents a decoded WebSocket frame.
type WSFrame struct {
	IsFinal    bool   // FIN bit
	Opcode     byte   // Operation code
	Masked     bool   // Whether the frame was masked
	PayloadLen int    // Actual payload length
	Payload    []byte // Zero-copy reference into the decode buffer
}

// DecodeFrameInPlace parses one complete frame from buf, unmasking the
// payload in place when the mask bit is set. The returned payload
// aliases buf; it stays valid until the buffer is reused.
//
// The codec is direction-agnostic: it accepts masked and unmasked
// frames alike. Enforcing the client-must-mask rule is the
// connection's job.
func DecodeFrameInPlace(buf []byte) (*WSFrame, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("short frame header: %w", api.ErrProtocolViolation)
	}

	isFin := buf[0]&FinBit != 0
	opcode := buf[0] & 0x0F
	isMasked := buf[1]&MaskBit != 0

	payloadLen := int64(buf[1] & 0x7F)
	headerLen := 2
	switch payloadLen {
	case 126:
		if len(buf) < headerLen+2 {
			return nil, fmt.Errorf("truncated extended length: %w", api.ErrProtocolViolation)
		}
		payloadLen = int64(binary.BigEndian.Uint16(buf[headerLen:]))
		headerLen += 2
	case 127:
		if len(buf) < headerLen+8 {
			return nil, fmt.Errorf("truncated extended length: %w", api.ErrProtocolViolation)
		}
		v := binary.BigEndian.Uint64(buf[headerLen:])
		if v > ^uint64(0)>>1 {
			return nil, fmt.Errorf("payload length overflow: %w", api.ErrProtocolViolation)
		}
		payloadLen = int64(v)
		headerLen += 8
	}

	// Mask bytes are present only when the mask bit is set.
	var maskKey [4]byte
	if isMasked {
		if len(buf) < headerLen+4 {
			return nil, fmt.Errorf("truncated mask key: %w", api.ErrProtocolViolation)
		}
		copy(maskKey[:], buf[headerLen:headerLen+4])
		headerLen += 4
	}

	if IsControlOpcode(opcode) {
		if payloadLen > MaxControlPayloadLen {
			return nil, fmt.Errorf("control frame payload %d exceeds %d: %w",
				payloadLen, MaxControlPayloadLen, api.ErrProtocolViolation)
		}
		if !isFin {
			return nil, fmt.Errorf("fragmented control frame: %w", api.ErrProtocolViolation)
		}
	}

	if int64(len(buf)) < int64(headerLen)+payloadLen {
		return nil, fmt.Errorf("incomplete frame: %w", api.ErrProtocolViolation)
	}

	payload := buf[headerLen : headerLen+int(payloadLen)]
	if isMasked {
		unmaskInPlace(payload, maskKey)
	}

	return &WSFrame{
		IsFinal:    isFin,
		Opcode:     opcode,
		Masked:     isMasked,
		PayloadLen: int(payloadLen),
		Payload:    payload,
	}, nil
}

// EncodeFrame serializes one server frame into dst and returns the
// encoded length. Server-to-client frames are never masked.
func EncodeFrame(dst []byte, opcode byte, payload []byte, fin bool) (int, error) {
	if IsControlOpcode(opcode) {
		if len(payload) > MaxControlPayloadLen {
			return 0, fmt.Errorf("control frame payload %d exceeds %d: %w",
				len(payload), MaxControlPayloadLen, api.ErrProtocolViolation)
		}
		if !fin {
			return 0, fmt.Errorf("fragmented control frame: %w", api.ErrProtocolViolation)
		}
	}

	need := EncodedHeaderLen(len(payload)) + len(payload)
	if len(dst) < need {
		return 0, fmt.Errorf("encode buffer too small: need %d, have %d: %w",
			need, len(dst), api.ErrSendFailed)
	}

	offset := 0
	dst[offset] = opcode & 0x0F
	if fin {
		dst[offset] |= FinBit
	}
	offset++

	payloadLen := len(payload)
	switch {
	case payloadLen <= 125:
		dst[offset] = byte(payloadLen)
		offset++
	case payloadLen <= 0xFFFF:
		dst[offset] = 126
		offset++
		binary.BigEndian.PutUint16(dst[offset:], uint16(payloadLen))
		offset += 2
	default:
		dst[offset] = 127
		offset++
		binary.BigEndian.PutUint64(dst[offset:], uint64(payloadLen))
		offset += 8
	}

	copy(dst[offset:], payload)
	return offset + payloadLen, nil
}

// EncodedHeaderLen returns the unmasked header size for a payload of
// n bytes: 2, 4, or 10.
func EncodedHeaderLen(n int) int {
	switch {
	case n <= 125:
		return 2
	case n <= 0xFFFF:
		return 4
	default:
		return 10
	}
}

// unmaskInPlace applies XOR on payload using maskKey.
func unmaskInPlace(buf []byte, key [4]byte) {
	for i := 0; i < len(buf); i++ {
		buf[i] ^= key[i%4]
	}
}
