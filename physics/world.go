package physics

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sasha-s/go-deadlock"
)

// World is a static world made of axis aligned boxes. It answers the geometric queries of the characters
// moving through it. A World is safe for concurrent use.
type World struct {
	mu    deadlock.RWMutex
	boxes []cube.BBox
}

// NewWorld returns a world holding the boxes passed.
func NewWorld(boxes ...cube.BBox) *World {
	return &World{boxes: append([]cube.BBox(nil), boxes...)}
}

// AddBox adds a box spanning from lo to hi to the world.
func (w *World) AddBox(lo, hi mgl64.Vec3) {
	w.Add(cube.Box(float32(lo[0]), float32(lo[1]), float32(lo[2]), float32(hi[0]), float32(hi[1]), float32(hi[2])))
}

// Add adds the boxes passed to the world.
func (w *World) Add(boxes ...cube.BBox) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boxes = append(w.boxes, boxes...)
}

// Boxes returns a copy of the boxes of the world.
func (w *World) Boxes() []cube.BBox {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]cube.BBox(nil), w.boxes...)
}

// Len returns the amount of boxes in the world.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.boxes)
}

// Nearby returns the boxes of the world intersecting bb.
func (w *World) Nearby(bb cube.BBox) []cube.BBox {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var list []cube.BBox
	for _, box := range w.boxes {
		if box.IntersectsWith(bb) {
			list = append(list, box)
		}
	}
	return list
}

// Floor returns a world holding a single flat floor of the given half size, with its top at y=0.
func Floor(halfSize float64) *World {
	w := NewWorld()
	w.AddBox(mgl64.Vec3{-halfSize, -1, -halfSize}, mgl64.Vec3{halfSize, 0, halfSize})
	return w
}
