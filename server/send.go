// File: server/send.go
// Package server: outbound frame path.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"time"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/protocol"
)

// SendText sends one text frame to the connected client. The payload
// must fit the frame buffer; larger messages go through SendFragmented.
func (s *Server) SendText(data []byte) error {
	return s.sendSingle(protocol.OpcodeText, data)
}

// SendBinary sends one binary frame to the connected client. The
// payload must fit the frame buffer; larger messages go through
// SendFragmented.
func (s *Server) SendBinary(data []byte) error {
	return s.sendSingle(protocol.OpcodeBinary, data)
}

func (s *Server) sendSingle(opcode byte, data []byte) error {
	c := s.currentConn()
	if c == nil {
		return api.ErrNotConnected
	}
	if len(data) > s.cfg.MaxFrameSize {
		return fmt.Errorf("%w: payload %d exceeds frame buffer %d, use SendFragmented",
			api.ErrSendFailed, len(data), s.cfg.MaxFrameSize)
	}
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	return c.writeFrame(opcode, data, true)
}

// SendFragmented streams data as a fragmented binary message in
// frame-buffer-sized chunks: an initial binary frame, continuations,
// and a final frame. Pings may interleave between fragments, other
// messages may not.
func (s *Server) SendFragmented(data []byte) error {
	c := s.currentConn()
	if c == nil {
		return api.ErrNotConnected
	}

	c.msgMu.Lock()
	defer c.msgMu.Unlock()

	chunk := s.cfg.MaxFrameSize
	for offset := 0; offset < len(data); offset += chunk {
		end := offset + chunk
		if end > len(data) {
			end = len(data)
		}
		var opcode byte = protocol.OpcodeContinuation
		if offset == 0 {
			opcode = protocol.OpcodeBinary
		}
		if err := c.writeFrame(opcode, data[offset:end], end == len(data)); err != nil {
			return err
		}
	}
	return nil
}

// writeFrame encodes one frame into the TX buffer and writes it to the
// transport in a single call. A failed or short write closes the
// connection; the frame loop then runs the teardown.
func (c *clientConn) writeFrame(opcode byte, payload []byte, fin bool) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.state() != stateOpen || c.tx == nil {
		return api.ErrNotConnected
	}

	n, err := protocol.EncodeFrame(c.tx, opcode, payload, fin)
	if err != nil {
		return err
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.srv.cfg.WriteTimeout))
	wn, werr := c.conn.Write(c.tx[:n])
	if werr != nil {
		c.conn.Close()
		return fmt.Errorf("%w: %v", api.ErrSendFailed, werr)
	}
	if wn != n {
		c.conn.Close()
		return fmt.Errorf("%w: short write %d of %d", api.ErrSendFailed, wn, n)
	}

	c.srv.metrics.AddFrameOut(n)
	return nil
}
