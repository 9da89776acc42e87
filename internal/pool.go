package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds scratch buffers used when hashing and encoding tick state.
var BufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}
