package behavior

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
)

// speedOffset is the distance to the target speed under which the horizontal speed snaps to it.
const speedOffset = 0.1

// WalkRun turns a character towards its movement input and moves it at walking or sprinting speed,
// relative to the camera heading.
type WalkRun struct {
	Base
	cfg config.WalkRun

	speed            float64
	animationSpeed   float64
	motionSpeed      float64
	targetRotation   float64
	rotationVelocity float64
	cameraRotation   float64
	targetDirection  mgl64.Vec3
}

func NewWalkRun(cfg config.WalkRun) *WalkRun {
	return &WalkRun{Base: newBase(character.IDWalkRun), cfg: cfg, motionSpeed: 1}
}

func (*WalkRun) ID() character.ID {
	return character.IDWalkRun
}

func (w *WalkRun) Save() any {
	return *w
}

func (w *WalkRun) Restore(state any) {
	*w = state.(WalkRun)
}

func (*WalkRun) Gate(*character.Snapshot) bool {
	return true
}

func (w *WalkRun) Apply(s *character.Snapshot, out *character.Staged) error {
	w.rotate(s, out)
	w.move(s, out)

	directional := omath.Vec64To32(omath.YawRotation(w.rotationVelocity).Rotate(omath.Forward).Mul(w.animationSpeed))
	s.EmitDirectionalSpeed(omath.Round32(directional.Z(), 2), omath.Round32(directional.X(), 2))
	s.EmitMotionSpeed(omath.Round32(float32(w.motionSpeed), 2))
	return nil
}

// Speed returns the horizontal speed written by the latest apply.
func (w *WalkRun) Speed() float64 {
	return w.speed
}

// TargetSpeed returns the speed a character moves at for an input of the given magnitude, and the
// stepping animation speed multiplier that goes with it. Magnitudes above 1 count as 1.
func (w *WalkRun) TargetSpeed(magnitude float64, sprint bool) (speed, motion float64) {
	if magnitude <= 0 {
		return 0, 1
	}
	magnitude = math.Min(magnitude, 1)

	speed = w.cfg.WalkSpeed
	if sprint {
		speed = w.cfg.SprintSpeed
	}
	speed *= magnitude
	if speed < w.cfg.SlowWalkSpeed {
		return w.cfg.SlowWalkSpeed, magnitude * w.cfg.SlowWalkSpeed / w.cfg.WalkSpeed
	}
	return speed, 1
}

func (w *WalkRun) rotate(s *character.Snapshot, out *character.Staged) {
	move := s.Input.Move
	if move.X() != 0 || move.Y() != 0 {
		w.cameraRotation = omath.LerpAngle(w.cameraRotation, s.CameraYaw, w.cfg.RotationSmoothTime)
		w.targetRotation = mgl64.RadToDeg(math.Atan2(move.X(), move.Y())) + w.cameraRotation
		w.targetDirection = omath.YawRotation(w.targetRotation).Rotate(omath.Forward)
	}
	rotation := omath.SmoothDampAngle(omath.Yaw(s.State.Rotation), w.targetRotation, &w.rotationVelocity, w.cfg.RotationSmoothTime, s.Delta)
	out.Rotation = omath.YawRotation(rotation)
}

func (w *WalkRun) move(s *character.Snapshot, out *character.Staged) {
	target, motion := w.TargetSpeed(s.Input.Move.Len(), s.Input.Sprint)
	w.motionSpeed = motion

	current := omath.HorizontalLen(s.State.Velocity)
	if current < target-speedOffset || current > target+speedOffset {
		w.speed = omath.Round64(omath.Lerp(current, target, s.Delta*w.cfg.SpeedChangeRate), 3)
	} else {
		w.speed = target
	}
	w.animationSpeed = omath.Lerp(w.animationSpeed, target, s.Delta*w.cfg.SpeedChangeRate)

	out.SetHorizontal(omath.SafeNormalize(w.targetDirection).Mul(w.speed))
}
