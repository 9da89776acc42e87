package physics

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

type clipResult struct {
	axis                  int
	penetration           float32
	clippedVelocity       mgl32.Vec3
	depenetratingVelocity mgl32.Vec3
}

// clipCollide clips the velocity of the moving box so that it does not enter the stationary one. A box
// already overlapping the stationary one is pushed out along the axis of least penetration unless oneWay
// is set. The deepest penetration seen is written to penetration if it is not nil.
func clipCollide(stationary, moving cube.BBox, vel mgl32.Vec3, oneWay bool, penetration *mgl32.Vec3) mgl32.Vec3 {
	result := doClipCollide(stationary, moving, vel)
	if penetration != nil && penetration[result.axis] < result.penetration {
		penetration[result.axis] = result.penetration
	}
	if oneWay {
		return result.clippedVelocity
	}
	return result.depenetratingVelocity
}

func doClipCollide(stationary, moving cube.BBox, velocity mgl32.Vec3) (result clipResult) {
	result.clippedVelocity = velocity
	result.depenetratingVelocity = velocity
	if stationary.Min() == stationary.Max() {
		return
	}

	var penetrations, signed, normals [3]float32
	separating, separatingAxis := 0, 0
	for i := range 3 {
		minPen := moving.Max()[i] - stationary.Min()[i]
		maxPen := stationary.Max()[i] - moving.Min()[i]
		if math32.Abs(minPen) <= 1e-7 {
			minPen = 0
		}
		if math32.Abs(maxPen) <= 1e-7 {
			maxPen = 0
		}

		switch minPos, maxPos := math32.Max(0, minPen), math32.Max(0, maxPen); {
		case minPos == 0:
			signed[i], normals[i] = minPen, -1
			separating++
			separatingAxis = i
		case maxPos == 0:
			signed[i], normals[i] = maxPen, 1
			separating++
			separatingAxis = i
		case minPos < maxPos:
			penetrations[i], signed[i], normals[i] = minPos, minPos, -1
		default:
			penetrations[i], signed[i], normals[i] = maxPos, maxPos, 1
		}
		if separating > 1 {
			return
		}
	}

	if separating == 0 {
		best := 0
		for i := 1; i < 3; i++ {
			if penetrations[i] < penetrations[best] {
				best = i
			}
		}
		result.axis, result.penetration = best, penetrations[best]

		desired := penetrations[best] * normals[best]
		if desired > 0 {
			result.depenetratingVelocity[best] = math32.Max(desired, velocity[best])
		} else {
			result.depenetratingVelocity[best] = math32.Min(desired, velocity[best])
		}
		return
	}

	swept := signed[separatingAxis] - normals[separatingAxis]*velocity[separatingAxis]
	if swept <= 0 {
		return
	}
	resolved := signed[separatingAxis] * normals[separatingAxis]
	result.clippedVelocity[separatingAxis] = resolved
	result.depenetratingVelocity[separatingAxis] = resolved
	return
}
