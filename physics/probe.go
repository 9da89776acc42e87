package physics

import (
	"cmp"
	"math"
	"slices"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/omath"
)

var _ character.Probe = (*World)(nil)

// touchEpsilon is how far apart two shapes may be and still count as touching.
const touchEpsilon = 1e-4

// Raycast returns the closest box surface hit along dir within maxDist of origin.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64) (character.Hit, bool) {
	dir = omath.SafeNormalize(dir)
	if dir == (mgl64.Vec3{}) || maxDist <= 0 {
		return character.Hit{}, false
	}
	end := origin.Add(dir.Mul(maxDist))
	start32, end32 := omath.Vec64To32(origin), omath.Vec64To32(end)

	var (
		closest character.Hit
		found   bool
	)
	for _, box := range w.Nearby(boundsOf(origin, end, 0)) {
		res, ok := trace.BBoxIntercept(box, start32, end32)
		if !ok {
			continue
		}
		point := omath.Vec32To64(res.Position())
		dist := point.Sub(origin).Len()
		if dist > maxDist || (found && dist >= closest.Distance) {
			continue
		}
		closest, found = character.Hit{Point: point, Normal: faceNormal(box, point), Distance: dist}, true
	}
	return closest, found
}

// SphereCastAll sweeps a sphere of the radius passed from origin along dir and returns a hit for every
// box it touches within maxDist, closest first. Boxes already touching the sphere at origin are hit at a
// distance of zero.
func (w *World) SphereCastAll(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64) []character.Hit {
	dir = omath.SafeNormalize(dir)
	end := origin.Add(dir.Mul(math.Max(maxDist, 0)))

	var hits []character.Hit
	for _, box := range w.Nearby(boundsOf(origin, end, radius+touchEpsilon)) {
		if point := closestPoint(box, origin); point.Sub(origin).Len() <= radius+touchEpsilon {
			hits = append(hits, character.Hit{Point: point, Normal: omath.SafeNormalize(origin.Sub(point)), Distance: 0})
			continue
		}
		if dir == (mgl64.Vec3{}) {
			continue
		}
		res, ok := trace.BBoxIntercept(box.Grow(float32(radius)), omath.Vec64To32(origin), omath.Vec64To32(end))
		if !ok {
			continue
		}
		center := omath.Vec32To64(res.Position())
		point := closestPoint(box, center)
		hits = append(hits, character.Hit{Point: point, Normal: omath.SafeNormalize(center.Sub(point)), Distance: center.Sub(origin).Len()})
	}
	slices.SortStableFunc(hits, func(a, b character.Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits
}

// CheckBox reports whether the box centred at center, with the half extents passed and rotated by
// rotation, overlaps any box of the world. Touching boxes do not overlap.
func (w *World) CheckBox(center, halfExtents mgl64.Vec3, rotation mgl64.Quat) bool {
	axes := [3]mgl64.Vec3{
		rotation.Rotate(mgl64.Vec3{1, 0, 0}),
		rotation.Rotate(mgl64.Vec3{0, 1, 0}),
		rotation.Rotate(mgl64.Vec3{0, 0, 1}),
	}
	var reach mgl64.Vec3
	for i := range 3 {
		for j, axis := range axes {
			reach[i] += math.Abs(axis[i]) * halfExtents[j]
		}
	}
	for _, box := range w.Nearby(boundsOf(center.Sub(reach), center.Add(reach), 0)) {
		if orientedOverlap(box, center, halfExtents, axes) {
			return true
		}
	}
	return false
}

// orientedOverlap runs a separating axis test between an axis aligned box and an oriented one.
func orientedOverlap(box cube.BBox, center, half mgl64.Vec3, axes [3]mgl64.Vec3) bool {
	boxMin, boxMax := omath.Vec32To64(box.Min()), omath.Vec32To64(box.Max())
	boxCenter, boxHalf := boxMin.Add(boxMax).Mul(0.5), boxMax.Sub(boxMin).Mul(0.5)
	offset := center.Sub(boxCenter)

	world := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	candidates := make([]mgl64.Vec3, 0, 15)
	candidates = append(candidates, world[:]...)
	candidates = append(candidates, axes[:]...)
	for _, a := range world {
		for _, b := range axes {
			candidates = append(candidates, a.Cross(b))
		}
	}

	for _, l := range candidates {
		if l.LenSqr() < 1e-12 {
			continue
		}
		boxRadius := boxHalf[0]*math.Abs(l[0]) + boxHalf[1]*math.Abs(l[1]) + boxHalf[2]*math.Abs(l[2])
		orientedRadius := half[0]*math.Abs(l.Dot(axes[0])) + half[1]*math.Abs(l.Dot(axes[1])) + half[2]*math.Abs(l.Dot(axes[2]))
		if math.Abs(l.Dot(offset)) >= boxRadius+orientedRadius {
			return false
		}
	}
	return true
}

// closestPoint returns the point of the box closest to p.
func closestPoint(box cube.BBox, p mgl64.Vec3) mgl64.Vec3 {
	lo, hi := omath.Vec32To64(box.Min()), omath.Vec32To64(box.Max())
	return mgl64.Vec3{
		mgl64.Clamp(p[0], lo[0], hi[0]),
		mgl64.Clamp(p[1], lo[1], hi[1]),
		mgl64.Clamp(p[2], lo[2], hi[2]),
	}
}

// faceNormal returns the normal of the face of the box the point lies closest to.
func faceNormal(box cube.BBox, p mgl64.Vec3) mgl64.Vec3 {
	lo, hi := omath.Vec32To64(box.Min()), omath.Vec32To64(box.Max())
	normal, best := mgl64.Vec3{}, math.Inf(1)
	for i := range 3 {
		if d := math.Abs(p[i] - lo[i]); d < best {
			best = d
			normal = mgl64.Vec3{}
			normal[i] = -1
		}
		if d := math.Abs(p[i] - hi[i]); d < best {
			best = d
			normal = mgl64.Vec3{}
			normal[i] = 1
		}
	}
	return normal
}

// boundsOf returns the box enclosing a and b, grown by margin.
func boundsOf(a, b mgl64.Vec3, margin float64) cube.BBox {
	bb := cube.Box(
		float32(math.Min(a[0], b[0])), float32(math.Min(a[1], b[1])), float32(math.Min(a[2], b[2])),
		float32(math.Max(a[0], b[0])), float32(math.Max(a[1], b[1])), float32(math.Max(a[2], b[2])),
	)
	return bb.Grow(float32(margin + touchEpsilon))
}
