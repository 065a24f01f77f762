package handler

import (
	"bytes"
	"sync"
)

const (
	// A status or slot list response fits in the initial buffer
	initialBufferSize = 1 << 10
	// Buffers grown past this by a large response are left to the GC
	maxPooledBufferSize = 64 << 10
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
