// Package pool provides object pooling to reduce GC pressure.
// Frame grabs and filter passes churn through full-resolution RGBA slabs
// (a 1280x720 frame is ~3.7 MB); recycling them keeps capture sessions smooth.
package pool

import (
	"sync"
)

// PixPool pools RGBA pixel slabs for frame grabs and filter output
var PixPool = sync.Pool{
	New: func() interface{} {
		return make([]uint8, 0, 1280*720*4)
	},
}

// BytePool pools scratch buffers for image encoding
var BytePool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 0, 64*1024)
	},
}

// GetPix gets a pixel slab of length n from the pool.
// Contents are unspecified; callers overwrite every byte.
func GetPix(n int) []uint8 {
	p := PixPool.Get().([]uint8)
	if cap(p) < n {
		return make([]uint8, n)
	}
	return p[:n]
}

// PutPix returns a pixel slab to the pool
func PutPix(p []uint8) {
	PixPool.Put(p[:0])
}

// GetBytes gets an empty scratch buffer from the pool
func GetBytes() []byte {
	b := BytePool.Get().([]byte)
	return b[:0]
}

// PutBytes returns a scratch buffer to the pool
func PutBytes(b []byte) {
	BytePool.Put(b[:0])
}
