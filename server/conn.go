// File: server/conn.go
// Package server: per-client connection state machine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One clientConn exists per admitted client. The acceptor/reader task
// owns it: handshake, frame loop, opcode dispatch, and fragmented
// message reassembly all run on that task, so connection state needs
// no locking beyond the shared send path and the server's handle.

package server

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/protocol"
)

// connState tracks the connection through its lifecycle.
type connState int32

const (
	stateIdle connState = iota
	stateHandshaking
	stateOpen
	stateClosing
)

// clientConn is the at-most-one active client.
type clientConn struct {
	id   api.ClientID
	conn api.Conn
	srv  *Server

	st     int32
	closed int32

	rx []byte // frame buffer, owned by the reader task

	// msgMu serializes whole messages so fragments of one message are
	// never interleaved with another data frame. sendMu guards the
	// single-frame write; pings take only sendMu and may land between
	// fragments, which RFC 6455 permits.
	msgMu  sync.Mutex
	sendMu sync.Mutex
	tx     []byte // encode buffer, guarded by sendMu

	reader *protocol.Reader

	// Fragmented message reassembly. Fragment copies queue up until
	// the final continuation arrives.
	fragQ      *queue.Queue
	fragOpcode byte
	fragTotal  int
	assembling bool

	lastActivity int64 // unix nanos, for debug probes
}

// newClientConn allocates the connection and its fixed buffers.
func newClientConn(s *Server, conn api.Conn) *clientConn {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	c := &clientConn{
		id:   id,
		conn: conn,
		srv:  s,
		st:   int32(stateHandshaking),
		rx:   s.rxPool.GetBuffer(),
		tx:   s.txPool.GetBuffer(),
	}
	c.reader = protocol.NewReader(conn, s.cfg.MaxMessageSize, c.deliverLarge)
	return c
}

func (c *clientConn) state() connState {
	return connState(atomic.LoadInt32(&c.st))
}

func (c *clientConn) setState(st connState) {
	atomic.StoreInt32(&c.st, int32(st))
}

// serveClient runs one client to completion on the acceptor task.
func (s *Server) serveClient(conn api.Conn) {
	c := newClientConn(s, conn)
	if err := c.handshake(); err != nil {
		log.Printf("lightws: handshake with %s failed: %v", conn.RemoteAddr(), err)
		conn.Close()
		c.release()
		return
	}

	s.metrics.AddHandshake()
	c.setState(stateOpen)
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()

	log.Printf("lightws: client %d connected from %s", c.id, conn.RemoteAddr())
	if cb := s.callbacks.OnConnected; cb != nil {
		cb(c.id)
	}

	c.loop()
}

// handshake reads the upgrade request and answers with the 101
// response. The TX buffer doubles as the response scratch.
func (c *clientConn) handshake() error {
	cfg := c.srv.cfg
	c.conn.SetReadDeadline(time.Now().Add(cfg.HandshakeTimeout))

	var scratch [protocol.HandshakeBufferSize]byte
	req, err := protocol.ReadUpgradeRequest(c.conn, scratch[:])
	if err != nil {
		return err
	}

	key, err := protocol.ParseUpgrade(req)
	if err != nil {
		return err
	}

	resp := protocol.AppendUpgradeResponse(c.tx[:0], protocol.ComputeAcceptKey(key))
	c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
	if _, err := c.conn.Write(resp); err != nil {
		return fmt.Errorf("write upgrade response: %w", err)
	}
	return nil
}

// loop reads frames until the peer leaves, errs, or goes silent.
// Every pass re-arms the inactivity deadline.
func (c *clientConn) loop() {
	defer c.teardown()
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.srv.cfg.MaxInactivity)); err != nil {
			c.srv.debugf("client %d: arm read deadline: %v", c.id, err)
			return
		}

		n, err := c.reader.ReadFrame(c.rx)
		switch {
		case err == nil:
			atomic.StoreInt64(&c.lastActivity, time.Now().UnixNano())
			if done := c.handleFrame(n); done {
				return
			}
		case errors.Is(err, protocol.ErrLargeFrameStreamed):
			atomic.StoreInt64(&c.lastActivity, time.Now().UnixNano())
			c.srv.metrics.AddOversize()
		case errors.Is(err, protocol.ErrPeerClosed):
			c.srv.debugf("client %d: peer closed", c.id)
			return
		case errors.Is(err, os.ErrDeadlineExceeded):
			log.Printf("lightws: client %d inactive beyond %v, dropping", c.id, c.srv.cfg.MaxInactivity)
			return
		default:
			log.Printf("lightws: client %d read failed: %v", c.id, err)
			return
		}
	}
}

// handleFrame decodes and dispatches one in-buffer frame. It returns
// true when the connection must move to CLOSING.
func (c *clientConn) handleFrame(n int) bool {
	frame, err := protocol.DecodeFrameInPlace(c.rx[:n])
	if err != nil {
		log.Printf("lightws: client %d sent malformed frame: %v", c.id, err)
		return true
	}
	// RFC 6455 section 5.1: client frames must be masked.
	if !frame.Masked {
		log.Printf("lightws: client %d sent unmasked frame: %v", c.id, api.ErrProtocolViolation)
		return true
	}
	c.srv.metrics.AddFrameIn(frame.PayloadLen)
	c.srv.debugf("client %d: frame opcode=%#x fin=%v len=%d", c.id, frame.Opcode, frame.IsFinal, frame.PayloadLen)

	switch frame.Opcode {
	case protocol.OpcodeText, protocol.OpcodeBinary:
		if c.assembling {
			// A fresh message before the final continuation supersedes
			// the unfinished one.
			c.srv.debugf("client %d: reassembly superseded by new message", c.id)
			c.dropFragments()
		}
		if frame.IsFinal {
			c.deliver(frame.Opcode, frame.Payload)
		} else {
			c.startFragment(frame.Opcode, frame.Payload)
		}

	case protocol.OpcodeContinuation:
		return !c.appendFragment(frame.Payload, frame.IsFinal)

	case protocol.OpcodePing:
		if err := c.writeFrame(protocol.OpcodePong, frame.Payload, true); err != nil {
			log.Printf("lightws: client %d pong reply failed: %v", c.id, err)
			return true
		}
		if cb := c.srv.callbacks.OnPing; cb != nil {
			cb(c.id)
		}

	case protocol.OpcodePong:
		c.srv.metrics.AddPongSeen()
		if cb := c.srv.callbacks.OnPong; cb != nil {
			cb(c.id)
		}

	case protocol.OpcodeClose:
		c.dropFragments()
		if cb := c.srv.callbacks.OnClose; cb != nil {
			cb(c.id)
		}
		if err := c.writeFrame(protocol.OpcodeClose, nil, true); err != nil {
			c.srv.debugf("client %d: close ack failed: %v", c.id, err)
		}
		return true

	default:
		log.Printf("lightws: client %d sent unknown opcode %#x, discarding", c.id, frame.Opcode)
	}
	return false
}

// deliver hands a complete message to the application.
func (c *clientConn) deliver(opcode byte, payload []byte) {
	switch opcode {
	case protocol.OpcodeText:
		if cb := c.srv.callbacks.OnText; cb != nil {
			cb(c.id, payload)
		}
	case protocol.OpcodeBinary:
		if cb := c.srv.callbacks.OnBinary; cb != nil {
			cb(c.id, payload)
		}
	}
}

// deliverLarge is the oversize-path sink. Heap-path delivery is whole
// message; any partial reassembly is superseded, never mixed in.
func (c *clientConn) deliverLarge(opcode byte, fin bool, payload []byte) {
	c.dropFragments()
	if !fin {
		c.srv.debugf("client %d: oversize fragment delivered whole", c.id)
	}
	switch opcode {
	case protocol.OpcodeText, protocol.OpcodeBinary:
		c.srv.metrics.AddFrameIn(len(payload))
		c.deliver(opcode, payload)
	default:
		log.Printf("lightws: client %d oversize continuation dropped", c.id)
	}
}

// startFragment opens a reassembly sequence keyed by the initial
// opcode. The fragment is copied; the frame buffer is reused next read.
func (c *clientConn) startFragment(opcode byte, payload []byte) {
	if c.fragQ == nil {
		c.fragQ = queue.New()
	}
	part := make([]byte, len(payload))
	copy(part, payload)
	c.fragQ.Add(part)
	c.fragOpcode = opcode
	c.fragTotal = len(payload)
	c.assembling = true
}

// appendFragment queues a continuation and delivers the concatenation
// on the final one. It returns false when the message must abort the
// connection.
func (c *clientConn) appendFragment(payload []byte, fin bool) bool {
	if !c.assembling {
		log.Printf("lightws: client %d sent continuation with no message in progress, discarding", c.id)
		return true
	}
	if c.fragTotal+len(payload) > c.srv.cfg.MaxMessageSize {
		log.Printf("lightws: client %d fragmented message exceeds cap %d: %v",
			c.id, c.srv.cfg.MaxMessageSize, api.ErrProtocolViolation)
		c.dropFragments()
		return false
	}

	part := make([]byte, len(payload))
	copy(part, payload)
	c.fragQ.Add(part)
	c.fragTotal += len(payload)

	if fin {
		c.finishFragments()
	}
	return true
}

// finishFragments concatenates the queued fragments and delivers the
// whole message through the initial opcode's callback.
func (c *clientConn) finishFragments() {
	out := make([]byte, 0, c.fragTotal)
	for c.fragQ.Length() > 0 {
		out = append(out, c.fragQ.Remove().([]byte)...)
	}
	opcode := c.fragOpcode
	c.assembling = false
	c.fragTotal = 0

	c.srv.metrics.AddReassembly()
	c.deliver(opcode, out)
}

// dropFragments discards any partial reassembly.
func (c *clientConn) dropFragments() {
	if c.fragQ != nil {
		for c.fragQ.Length() > 0 {
			c.fragQ.Remove()
		}
	}
	c.assembling = false
	c.fragTotal = 0
}

// teardown closes the transport, resets the server's handle before
// the disconnect callback fires, and recycles the buffers. It runs at
// most once.
func (c *clientConn) teardown() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	c.setState(stateClosing)
	c.conn.Close()

	s := c.srv
	s.mu.Lock()
	if s.conn == c {
		s.conn = nil
	}
	s.mu.Unlock()

	c.dropFragments()
	c.setState(stateIdle)
	s.metrics.AddDisconnect()

	if cb := s.callbacks.OnDisconnected; cb != nil {
		cb(c.id)
	}
	log.Printf("lightws: client %d disconnected", c.id)
	c.release()
}

// release returns the fixed buffers to their pools once no send can
// be in flight.
func (c *clientConn) release() {
	c.sendMu.Lock()
	rx, tx := c.rx, c.tx
	c.rx, c.tx = nil, nil
	c.sendMu.Unlock()
	if rx != nil {
		c.srv.rxPool.PutBuffer(rx)
	}
	if tx != nil {
		c.srv.txPool.PutBuffer(tx)
	}
}
