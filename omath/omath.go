package omath

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// Up is the world up axis.
	Up = mgl64.Vec3{0, 1, 0}
	// Down is the world down axis.
	Down = mgl64.Vec3{0, -1, 0}
	// Forward is the axis a character faces at yaw 0.
	Forward = mgl64.Vec3{0, 0, 1}
)

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Lerp interpolates between a and b by t, where t is clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*mgl64.Clamp(t, 0, 1)
}

// Vec32To64 converts a 32-bit vector to a 64-bit one.
func Vec32To64(vec3 mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(vec3[0]), float64(vec3[1]), float64(vec3[2])}
}

// Vec64To32 converts a 64-bit vector to a 32-bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// Horizontal returns the vector with its vertical component removed.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// HorizontalLen returns the length of the horizontal part of the vector.
func HorizontalLen(v mgl64.Vec3) float64 {
	return math.Sqrt(v.X()*v.X() + v.Z()*v.Z())
}

// SafeNormalize normalizes v, returning the zero vector instead of NaNs when v has no length.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// AngleBetween returns the unsigned angle in degrees between a and b. Zero is returned if either vector
// has no length.
func AngleBetween(a, b mgl64.Vec3) float64 {
	denominator := math.Sqrt(a.LenSqr() * b.LenSqr())
	if denominator < 1e-15 {
		return 0
	}
	dot := mgl64.Clamp(a.Dot(b)/denominator, -1, 1)
	return mgl64.RadToDeg(math.Acos(dot))
}
