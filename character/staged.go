package character

import "github.com/go-gl/mathgl/mgl64"

// Staged is the velocity and rotation a tick is building. It starts every tick equal to the actual state
// and is committed once, after every active behavior applied.
type Staged struct {
	Velocity mgl64.Vec3
	Rotation mgl64.Quat
}

// Vertical returns the staged vertical velocity.
func (s *Staged) Vertical() float64 {
	return s.Velocity.Y()
}

// SetVertical replaces the staged vertical velocity, keeping the horizontal part.
func (s *Staged) SetVertical(y float64) {
	s.Velocity[1] = y
}

// Horizontal returns the staged velocity without its vertical part.
func (s *Staged) Horizontal() mgl64.Vec3 {
	return mgl64.Vec3{s.Velocity.X(), 0, s.Velocity.Z()}
}

// SetHorizontal replaces the staged horizontal velocity, keeping the vertical part. The Y component of h
// is ignored.
func (s *Staged) SetHorizontal(h mgl64.Vec3) {
	s.Velocity[0] = h.X()
	s.Velocity[2] = h.Z()
}
