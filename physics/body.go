package physics

import (
	"math"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
)

var _ character.Body = (*Body)(nil)

// Body is a kinematic character body moving through a World. Its collision shape is the box enclosing
// its capsule, and its position is the centre of the bottom of that box.
//
// A Body does not know how long a move takes, so it derives its velocity from the delta passed to
// NewBody. The velocity reported after a move is the displacement that was possible divided by it.
type Body struct {
	world *World

	radius, height, stepHeight float64
	delta                      float64

	pos, vel mgl64.Vec3
	rot      mgl64.Quat
	grounded bool

	collidedX, collidedY, collidedZ bool

	penetratedLastMove bool
	stuck              bool
}

// NewBody creates a body standing at pos in the world passed. delta is the duration of a move in seconds.
func NewBody(w *World, cfg config.Body, pos mgl64.Vec3, delta float64) *Body {
	return &Body{
		world:      w,
		radius:     cfg.Radius,
		height:     cfg.Height,
		stepHeight: cfg.StepHeight,
		delta:      delta,
		pos:        pos,
		rot:        mgl64.QuatIdent(),
	}
}

func (b *Body) Position() mgl64.Vec3 { return b.pos }
func (b *Body) Velocity() mgl64.Vec3 { return b.vel }
func (b *Body) Rotation() mgl64.Quat { return b.rot }
func (b *Body) Grounded() bool       { return b.grounded }
func (b *Body) Radius() float64      { return b.radius }
func (b *Body) Height() float64      { return b.height }

// Collided returns whether the latest move was blocked along each axis.
func (b *Body) Collided() (x, y, z bool) {
	return b.collidedX, b.collidedY, b.collidedZ
}

func (b *Body) SetRotation(q mgl64.Quat) {
	b.rot = q.Normalize()
}

// Teleport moves the body to pos without resolving collisions, and stops it.
func (b *Body) Teleport(pos mgl64.Vec3) {
	b.pos, b.vel, b.grounded = pos, mgl64.Vec3{}, false
	b.penetratedLastMove, b.stuck = false, false
}

// BBox returns the collision box of the body at its current position.
func (b *Body) BBox() cube.BBox {
	return b.boxAt(b.pos)
}

func (b *Body) boxAt(pos mgl64.Vec3) cube.BBox {
	return cube.Box(
		float32(pos[0]-b.radius), float32(pos[1]), float32(pos[2]-b.radius),
		float32(pos[0]+b.radius), float32(pos[1]+b.height), float32(pos[2]+b.radius),
	)
}

// Move displaces the body by delta, stopping it at the boxes of the world in its way. A grounded body
// blocked horizontally steps up obstacles no higher than its step height.
func (b *Body) Move(delta mgl64.Vec3) {
	vel := omath.Vec64To32(delta)
	var boxes []cube.BBox
	if b.world != nil {
		boxes = b.world.Nearby(b.BBox().Extend(vel).Extend(mgl32.Vec3{0, float32(b.stepHeight)}))
	}

	var penetration mgl32.Vec3
	moved, _ := collide(boxes, b.BBox(), vel, b.stuck, &penetration)

	hasPenetration := penetration.LenSqr() >= 1e-11
	b.stuck = b.penetratedLastMove && hasPenetration
	b.penetratedLastMove = hasPenetration

	blockedY := vel.Y() != moved.Y()
	onGround := b.grounded || (blockedY && vel.Y() < 0)
	if onGround && b.stepHeight > 0 && (vel.X() != moved.X() || vel.Z() != moved.Z()) {
		if stepped, ok := b.step(boxes, vel); ok && horizontalLenSqr(moved) < horizontalLenSqr(stepped) {
			moved = stepped
		}
	}

	b.pos = b.pos.Add(omath.Vec32To64(moved))
	b.vel = omath.Vec32To64(moved).Mul(1 / b.delta)

	b.collidedX = math.Abs(float64(vel.X()-moved.X())) >= 1e-5
	b.collidedY = math.Abs(float64(vel.Y()-moved.Y())) >= 1e-5
	b.collidedZ = math.Abs(float64(vel.Z()-moved.Z())) >= 1e-5
	b.grounded = (b.collidedY && vel.Y() < 0) || (b.grounded && !b.collidedY && math.Abs(float64(vel.Y())) <= 1e-5)
}

// step attempts the move raised by the step height, settling back down once moved horizontally.
func (b *Body) step(boxes []cube.BBox, vel mgl32.Vec3) (mgl32.Vec3, bool) {
	bb := b.BBox()
	up := mgl32.Vec3{0, float32(b.stepHeight)}
	for _, box := range boxes {
		up = clipCollide(box, bb, up, b.stuck, nil)
	}
	bb = bb.Translate(up)

	horizontal, bb := collide(boxes, bb, mgl32.Vec3{vel.X(), 0, vel.Z()}, b.stuck, nil)

	down := up.Mul(-1)
	for _, box := range boxes {
		down = clipCollide(box, bb, down, b.stuck, nil)
	}
	bb = bb.Translate(down)

	if b.world != nil && len(b.world.Nearby(bb)) != 0 {
		return mgl32.Vec3{}, false
	}
	return up.Add(horizontal).Add(down), true
}

// collide clips vel against boxes one axis at a time, vertical first, and returns the clipped velocity
// with the box translated by it.
func collide(boxes []cube.BBox, bb cube.BBox, vel mgl32.Vec3, oneWay bool, penetration *mgl32.Vec3) (mgl32.Vec3, cube.BBox) {
	var moved mgl32.Vec3
	for _, axis := range [3]int{1, 0, 2} {
		var v mgl32.Vec3
		v[axis] = vel[axis]
		for i := len(boxes) - 1; i >= 0; i-- {
			v = clipCollide(boxes[i], bb, v, oneWay, penetration)
		}
		bb = bb.Translate(v)
		moved = moved.Add(v)
	}
	return moved, bb
}

func horizontalLenSqr(v mgl32.Vec3) float32 {
	return v.X()*v.X() + v.Z()*v.Z()
}
