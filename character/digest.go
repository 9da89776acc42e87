package character

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/oomph-ac/locomotion/internal"
	"github.com/zeebo/xxh3"
)

// Digest hashes the physical part of a state. Two runs fed the same inputs produce the same sequence of
// digests, which is what recordings are verified against.
func Digest(s State) uint64 {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)

	var scratch [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(f))
		buf.Write(scratch[:])
	}
	for _, f := range s.Position {
		writeFloat(f)
	}
	for _, f := range s.Velocity {
		writeFloat(f)
	}
	writeFloat(s.Rotation.W)
	for _, f := range s.Rotation.V {
		writeFloat(f)
	}
	if s.Grounded {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return xxh3.Hash(buf.Bytes())
}
