package behavior

import (
	"math"

	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
)

// lookThreshold is the squared magnitude look input must reach to move the camera.
const lookThreshold = 0.01

// Camera turns look input into the orientation a camera rig should follow. It is also the heading
// walk/run input is relative to when attached.
type Camera struct {
	Base

	topClamp      float64
	bottomClamp   float64
	angleOverride float64

	yaw, pitch float64
}

func NewCamera(cfg config.Camera) *Camera {
	return &Camera{
		Base:          newBase(character.IDCamera),
		topClamp:      cfg.TopClamp,
		bottomClamp:   cfg.BottomClamp,
		angleOverride: cfg.AngleOverride,
	}
}

func (*Camera) ID() character.ID {
	return character.IDCamera
}

func (c *Camera) Save() any {
	return *c
}

func (c *Camera) Restore(state any) {
	*c = state.(Camera)
}

// Yaw returns the heading of the camera in degrees.
func (c *Camera) Yaw() float64 {
	return c.yaw
}

// Pitch returns the pitch of the camera in degrees, without the angle override.
func (c *Camera) Pitch() float64 {
	return c.pitch
}

func (*Camera) Gate(*character.Snapshot) bool {
	return true
}

func (c *Camera) Apply(s *character.Snapshot, _ *character.Staged) error {
	look := s.Input.Look
	if look.LenSqr() >= lookThreshold {
		// Mouse deltas are already per frame, stick input is a rate.
		multiplier := s.Delta
		if s.Input.MouseLook {
			multiplier = 1
		}
		c.yaw += look.X() * multiplier
		c.pitch += look.Y() * multiplier
	}
	c.yaw = omath.ClampAngle(c.yaw, -math.MaxFloat64, math.MaxFloat64)
	c.pitch = omath.ClampAngle(c.pitch, c.bottomClamp, c.topClamp)

	s.EmitCameraTarget(c.pitch+c.angleOverride, c.yaw)
	return nil
}
