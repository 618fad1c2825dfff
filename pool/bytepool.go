// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-size byte buffer pool backing the frame engine's receive and
// transmit buffers. Buffers are recycled across client sessions so a
// reconnect does not grow the footprint.

package pool

// BytePool hands out byte buffers of one fixed size.
type BytePool struct {
	size int
	free chan []byte
}

// NewBytePool creates a pool of buffers of the given size, retaining
// at most capacity idle buffers.
func NewBytePool(size, capacity int) *BytePool {
	return &BytePool{
		size: size,
		free: make(chan []byte, capacity),
	}
}

// Size returns the fixed buffer size.
func (p *BytePool) Size() int {
	return p.size
}

// GetBuffer returns a buffer of the pool's fixed size.
func (p *BytePool) GetBuffer() []byte {
	select {
	case buf := <-p.free:
		return buf
	default:
		return make([]byte, p.size)
	}
}

// PutBuffer recycles a buffer. Buffers of a foreign size and overflow
// beyond the retention capacity are left to the GC.
func (p *BytePool) PutBuffer(buf []byte) {
	if cap(buf) < p.size {
		return
	}
	select {
	case p.free <- buf[:p.size]:
	default:
	}
}
