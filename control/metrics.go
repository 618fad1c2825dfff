// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for the frame engine. Counters are plain
// atomics so the data plane never takes a lock to account a frame.

package control

import "sync/atomic"

// MetricsRegistry accumulates engine counters.
type MetricsRegistry struct {
	framesIn     int64
	framesOut    int64
	bytesIn      int64
	bytesOut     int64
	pingsSent    int64
	pongsSeen    int64
	handshakes   int64
	disconnects  int64
	oversize     int64
	reassemblies int64
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{}
}

// AddFrameIn accounts one received frame of n payload bytes.
func (mr *MetricsRegistry) AddFrameIn(n int) {
	atomic.AddInt64(&mr.framesIn, 1)
	atomic.AddInt64(&mr.bytesIn, int64(n))
}

// AddFrameOut accounts one sent frame of n encoded bytes.
func (mr *MetricsRegistry) AddFrameOut(n int) {
	atomic.AddInt64(&mr.framesOut, 1)
	atomic.AddInt64(&mr.bytesOut, int64(n))
}

// AddPingSent accounts one liveness ping.
func (mr *MetricsRegistry) AddPingSent() {
	atomic.AddInt64(&mr.pingsSent, 1)
}

// AddPongSeen accounts one pong from the client.
func (mr *MetricsRegistry) AddPongSeen() {
	atomic.AddInt64(&mr.pongsSeen, 1)
}

// AddHandshake accounts one completed upgrade.
func (mr *MetricsRegistry) AddHandshake() {
	atomic.AddInt64(&mr.handshakes, 1)
}

// AddDisconnect accounts one client teardown.
func (mr *MetricsRegistry) AddDisconnect() {
	atomic.AddInt64(&mr.disconnects, 1)
}

// AddOversize accounts one frame that took the heap path.
func (mr *MetricsRegistry) AddOversize() {
	atomic.AddInt64(&mr.oversize, 1)
}

// AddReassembly accounts one fragmented message delivered whole.
func (mr *MetricsRegistry) AddReassembly() {
	atomic.AddInt64(&mr.reassemblies, 1)
}

// GetSnapshot returns the latest counter values.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	return map[string]any{
		"frames_in":    atomic.LoadInt64(&mr.framesIn),
		"frames_out":   atomic.LoadInt64(&mr.framesOut),
		"bytes_in":     atomic.LoadInt64(&mr.bytesIn),
		"bytes_out":    atomic.LoadInt64(&mr.bytesOut),
		"pings_sent":   atomic.LoadInt64(&mr.pingsSent),
		"pongs_seen":   atomic.LoadInt64(&mr.pongsSeen),
		"handshakes":   atomic.LoadInt64(&mr.handshakes),
		"disconnects":  atomic.LoadInt64(&mr.disconnects),
		"oversize":     atomic.LoadInt64(&mr.oversize),
		"reassemblies": atomic.LoadInt64(&mr.reassemblies),
	}
}
