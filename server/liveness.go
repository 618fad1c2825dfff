// File: server/liveness.go
// Package server: periodic ping emission.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"encoding/binary"
	"log"
	"math/rand/v2"
	"time"

	"github.com/momentics/lightws/protocol"
)

// pingLoop emits a PING with a fresh 4-byte payload every interval
// while a client is open. Pongs are consumed by the frame loop; the
// inactivity deadline is what actually drops a silent peer.
func (s *Server) pingLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		c := s.currentConn()
		if c == nil {
			continue
		}

		var payload [protocol.PingPayloadLen]byte
		binary.LittleEndian.PutUint32(payload[:], rand.Uint32())
		if err := c.writeFrame(protocol.OpcodePing, payload[:], true); err != nil {
			log.Printf("lightws: ping to client %d failed: %v", c.id, err)
			continue
		}
		s.metrics.AddPingSent()
		s.debugf("client %d: ping %x", c.id, payload)
	}
}
