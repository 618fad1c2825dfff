// File: protocol/reader.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame reader: pulls exactly one frame from the transport into a
// fixed receive buffer, header first, then payload. Payloads that do
// not fit the buffer are streamed through a transient heap buffer and
// delivered to the application directly, so the steady-state memory
// stays at the configured frame ceiling.

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/momentics/lightws/api"
)

// ErrLargeFrameStreamed reports that a frame exceeded the receive
// buffer and was already delivered through the oversize path. It marks
// a handled condition, not a failure.
var ErrLargeFrameStreamed = errors.New("large frame handled out of band")

// ErrPeerClosed reports an orderly transport EOF from the client.
var ErrPeerClosed = errors.New("peer closed connection")

// LargeFrameSink consumes one oversize payload. The slice is owned by
// the sink for the duration of the call only.
type LargeFrameSink func(opcode byte, fin bool, payload []byte)

// Reader reads frames for one connection.
type Reader struct {
	conn       api.Conn
	maxMessage int
	sink       LargeFrameSink
}

// NewReader wires a reader to its transport. maxMessage bounds
// oversize allocations; sink receives payloads that bypass the
// receive buffer.
func NewReader(conn api.Conn, maxMessage int, sink LargeFrameSink) *Reader {
	return &Reader{conn: conn, maxMessage: maxMessage, sink: sink}
}

// ReadFrame reads one complete frame into buf and returns its encoded
// length (header plus payload). When the frame does not fit, the
// payload is streamed through a heap buffer, handed to the sink, and
// ErrLargeFrameStreamed is returned with the receive buffer holding
// only the header bytes.
func (r *Reader) ReadFrame(buf []byte) (int, error) {
	if err := r.readFull(buf[:2]); err != nil {
		return 0, err
	}

	opcode := buf[0] & 0x0F
	fin := buf[0]&FinBit != 0
	masked := buf[1]&MaskBit != 0

	payloadLen := int64(buf[1] & 0x7F)
	extLen := 0
	switch payloadLen {
	case 126:
		extLen = 2
	case 127:
		extLen = 8
	}

	// Mask bytes are consumed only when the peer actually masked.
	headerLen := 2 + extLen
	if masked {
		headerLen += 4
	}
	if headerLen > len(buf) {
		return 0, fmt.Errorf("receive buffer below header size: %w", api.ErrProtocolViolation)
	}
	if err := r.readFull(buf[2:headerLen]); err != nil {
		return 0, err
	}

	switch extLen {
	case 2:
		payloadLen = int64(binary.BigEndian.Uint16(buf[2:]))
	case 8:
		v := binary.BigEndian.Uint64(buf[2:])
		if v > ^uint64(0)>>1 {
			return 0, fmt.Errorf("payload length overflow: %w", api.ErrProtocolViolation)
		}
		payloadLen = int64(v)
	}

	if int64(headerLen)+payloadLen <= int64(len(buf)) {
		if err := r.readFull(buf[headerLen : headerLen+int(payloadLen)]); err != nil {
			return 0, err
		}
		return headerLen + int(payloadLen), nil
	}

	return 0, r.streamLarge(buf, opcode, fin, masked, headerLen, payloadLen)
}

// streamLarge ingests an oversize payload through a transient heap
// buffer, unmasks it, and delivers it to the sink. The buffer is
// dropped as soon as the sink returns.
func (r *Reader) streamLarge(buf []byte, opcode byte, fin, masked bool, headerLen int, payloadLen int64) error {
	if IsControlOpcode(opcode) {
		return fmt.Errorf("oversize control frame (%d bytes): %w", payloadLen, api.ErrProtocolViolation)
	}
	// RFC 6455 section 5.1: client frames must be masked. The in-buffer
	// path leaves this to the decoder; here the payload bypasses the
	// decoder entirely, so reject before allocating.
	if !masked {
		return fmt.Errorf("unmasked oversize client frame: %w", api.ErrProtocolViolation)
	}
	if payloadLen > int64(r.maxMessage) {
		return fmt.Errorf("oversize payload %d exceeds message cap %d: %w",
			payloadLen, r.maxMessage, api.ErrAllocationFailed)
	}

	payload := make([]byte, payloadLen)
	chunk := len(buf)
	for off := 0; off < len(payload); off += chunk {
		end := off + chunk
		if end > len(payload) {
			end = len(payload)
		}
		if err := r.readFull(payload[off:end]); err != nil {
			return err
		}
	}

	var maskKey [4]byte
	copy(maskKey[:], buf[headerLen-4:headerLen])
	unmaskInPlace(payload, maskKey)

	if r.sink != nil {
		r.sink(opcode, fin, payload)
	}
	return ErrLargeFrameStreamed
}

// readFull fills p from the transport, mapping EOF conditions to
// ErrPeerClosed. Deadline expiry passes through untouched so the
// caller can tell inactivity from a gone peer.
func (r *Reader) readFull(p []byte) error {
	if _, err := io.ReadFull(r.conn, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrPeerClosed
		}
		return err
	}
	return nil
}
