package character

import "github.com/go-gl/mathgl/mgl64"

// State is the physical state of a character at the start of a tick. It is a copy: behaviors reading it
// can never observe a partially committed tick.
type State struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Rotation mgl64.Quat
	Grounded bool

	Radius float64
	Height float64
}

// Body is the physics collaborator owning the actual state of a character.
type Body interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	Rotation() mgl64.Quat
	Grounded() bool
	Radius() float64
	Height() float64

	// SetRotation replaces the facing of the body.
	SetRotation(q mgl64.Quat)
	// Move displaces the body, resolving collisions, and updates its velocity and grounded flag.
	Move(delta mgl64.Vec3)
}

// Hit is a single result of a geometric query.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Probe answers the synchronous geometric queries behaviors make. Queries never see the character's own
// body.
type Probe interface {
	// Raycast returns the closest hit along dir within maxDist.
	Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool)
	// SphereCastAll sweeps a sphere along dir and returns every hit within maxDist.
	SphereCastAll(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64) []Hit
	// CheckBox reports whether the oriented box overlaps any geometry.
	CheckBox(center, halfExtents mgl64.Vec3, rotation mgl64.Quat) bool
}

// Camera provides the heading movement input is relative to.
type Camera interface {
	// Yaw returns the camera heading in degrees.
	Yaw() float64
}

// NopProbe is a Probe for an empty world.
type NopProbe struct{}

func (NopProbe) Raycast(mgl64.Vec3, mgl64.Vec3, float64) (Hit, bool) { return Hit{}, false }
func (NopProbe) SphereCastAll(mgl64.Vec3, float64, mgl64.Vec3, float64) []Hit {
	return nil
}
func (NopProbe) CheckBox(mgl64.Vec3, mgl64.Vec3, mgl64.Quat) bool { return false }

func stateOf(b Body) State {
	return State{
		Position: b.Position(),
		Velocity: b.Velocity(),
		Rotation: b.Rotation(),
		Grounded: b.Grounded(),
		Radius:   b.Radius(),
		Height:   b.Height(),
	}
}
