// Package pool provides reusable byte buffers for datagram reads.
package pool

import "sync"

// BufferPool hands out fixed-size byte slices backed by a sync.Pool.
// The transport draws its UDP receive buffers from here so a batch of
// concurrent queries does not allocate a fresh buffer per read.
type BufferPool struct {
	size     int
	internal sync.Pool
}

// NewBufferPool creates a pool of buffers of the given size in bytes.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		internal: sync.Pool{
			New: func() any {
				return make([]byte, size)
			},
		},
	}
}

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() []byte {
	return p.internal.Get().([]byte)
}

// Put returns a buffer to the pool. Buffers of the wrong size are dropped.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	p.internal.Put(buf[:p.size]) //nolint:staticcheck // fixed-size slices, no pointer-like boxing concern
}
