package omath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Repeat loops t so that it is never larger than length and never smaller than 0.
func Repeat(t, length float64) float64 {
	return mgl64.Clamp(t-math.Floor(t/length)*length, 0, length)
}

// DeltaAngle returns the shortest signed difference in degrees between two angles.
func DeltaAngle(current, target float64) float64 {
	delta := Repeat(target-current, 360)
	if delta > 180 {
		delta -= 360
	}
	return delta
}

// LerpAngle interpolates between two angles in degrees along the shortest path.
func LerpAngle(a, b, t float64) float64 {
	return a + DeltaAngle(a, b)*mgl64.Clamp(t, 0, 1)
}

// ClampAngle wraps an angle that went past a full turn once and clamps it to [min, max].
func ClampAngle(angle, min, max float64) float64 {
	if angle < -360 {
		angle += 360
	}
	if angle > 360 {
		angle -= 360
	}
	return mgl64.Clamp(angle, min, max)
}

// SmoothDamp moves current towards target with a critically damped spring. velocity holds the spring's
// state between calls. The result never overshoots target.
func SmoothDamp(current, target float64, velocity *float64, smoothTime, maxSpeed, dt float64) float64 {
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime

	x := omega * dt
	exp := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)
	change := current - target
	originalTo := target

	maxChange := maxSpeed * smoothTime
	change = mgl64.Clamp(change, -maxChange, maxChange)
	target = current - change

	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * exp
	output := target + (change+temp)*exp

	if (originalTo-current > 0) == (output > originalTo) {
		output = originalTo
		if dt > 0 {
			*velocity = (output - originalTo) / dt
		}
	}
	return output
}

// SmoothDampAngle is SmoothDamp for angles in degrees, taking the shortest way around.
func SmoothDampAngle(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	target = current + DeltaAngle(current, target)
	return SmoothDamp(current, target, velocity, smoothTime, math.Inf(1), dt)
}

// YawRotation returns a rotation of yaw degrees around the up axis. Yaw 0 faces Forward and positive yaw
// turns Forward towards +X.
func YawRotation(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(yaw), Up)
}

// Yaw returns the heading of q around the up axis in degrees, in the range [0, 360).
func Yaw(q mgl64.Quat) float64 {
	f := q.Rotate(Forward)
	if f.X() == 0 && f.Z() == 0 {
		return 0
	}
	return Repeat(mgl64.RadToDeg(math.Atan2(f.X(), f.Z())), 360)
}

// LookRotation returns the yaw-only rotation facing dir. The identity is returned for vertical or zero
// directions.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.X() == 0 && dir.Z() == 0 {
		return mgl64.QuatIdent()
	}
	return YawRotation(mgl64.RadToDeg(math.Atan2(dir.X(), dir.Z())))
}
