package behavior

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
)

// AutomaticJump requests a jump when a character runs towards an obstacle it can clear. The obstacle is
// predicted with box probes placed where the character would be at the apex of a jump.
type AutomaticJump struct {
	Base

	jump    *Jump
	gravity float64

	minVelocity float64
}

// NewAutomaticJump returns an AutomaticJump requesting jumps from the Jump behavior passed. The jump must
// be attached to the same character.
func NewAutomaticJump(cfg config.AutomaticJump, jump *Jump, gravity config.Gravity) *AutomaticJump {
	return &AutomaticJump{
		Base:        newBase(character.IDAutomaticJump),
		jump:        jump,
		gravity:     gravity.Acceleration,
		minVelocity: cfg.MinVelocity,
	}
}

func (*AutomaticJump) ID() character.ID {
	return character.IDAutomaticJump
}

func (*AutomaticJump) Requires() []character.ID {
	return []character.ID{character.IDJump, character.IDGravity}
}

func (a *AutomaticJump) Gate(s *character.Snapshot) bool {
	hv := omath.Horizontal(s.State.Velocity)
	speed := hv.Len()
	if !s.State.Grounded || speed < a.minVelocity || speed == 0 {
		return false
	}

	var (
		pos    = s.State.Position
		height = s.State.Height
		radius = s.State.Radius
		jumpH  = a.jump.Height()
		t      = AirTime(jumpH, a.gravity)
		rot    = omath.LookRotation(hv)
		probe  = s.Probe
	)
	landing := pos.Add(hv.Mul(t))

	// An obstacle stands where the jump peaks,
	if !probe.CheckBox(landing.Add(mgl64.Vec3{0, (height + .1) / 2}), mgl64.Vec3{2 * radius, height - .1, .1}.Mul(.5), rot) {
		return false
	}
	if !probe.CheckBox(landing.Add(mgl64.Vec3{0, (jumpH + .1) / 2}), mgl64.Vec3{2 * radius, jumpH - .1, .1}.Mul(.5), rot) {
		return false
	}
	// low enough for the character to pass above it,
	if probe.CheckBox(landing.Add(mgl64.Vec3{0, jumpH + height/2}), mgl64.Vec3{radius, height / 2, speed * t}, rot) {
		return false
	}
	// with nothing else in the way before or after it.
	if probe.CheckBox(pos.Add(hv.Mul(t/3)).Add(mgl64.Vec3{0, (height + .1) / 2}), mgl64.Vec3{radius, height / 2, speed * t / 3}, rot) {
		return false
	}
	return !probe.CheckBox(pos.Add(hv.Mul(t+t*2/3)).Add(mgl64.Vec3{0, (height + .1) / 2}), mgl64.Vec3{radius, height / 2, speed * t / 3}, rot)
}

func (a *AutomaticJump) Apply(s *character.Snapshot, _ *character.Staged) error {
	a.jump.Request(s.Time)
	return nil
}
