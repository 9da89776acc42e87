package behavior

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
)

// EdgeFall slides a character off an edge it is balancing on. A character balances on an edge when it is
// grounded but nothing is right below its centre.
type EdgeFall struct {
	Base

	slideAngle float64
	slideSpeed float64
}

func NewEdgeFall(cfg config.EdgeFall) *EdgeFall {
	return &EdgeFall{Base: newBase(character.IDEdgeFall), slideAngle: cfg.SlideAngle, slideSpeed: cfg.SlideSpeed}
}

func (*EdgeFall) ID() character.ID {
	return character.IDEdgeFall
}

func (*EdgeFall) Requires() []character.ID {
	return []character.ID{character.IDGravity}
}

func (e *EdgeFall) Gate(s *character.Snapshot) bool {
	_, supported := s.Probe.Raycast(floorDetector(s.State), omath.Down, s.State.Radius*2)
	ok := s.State.Grounded && !supported
	if !ok {
		s.EmitEdgeFall(false)
	}
	return ok
}

func (e *EdgeFall) Apply(s *character.Snapshot, out *character.Staged) error {
	center := floorDetector(s.State)

	smallest, support := 180.0, mgl64.Vec3{}
	for _, hit := range s.Probe.SphereCastAll(center, s.State.Radius, omath.Down, s.State.Radius) {
		if angle := omath.AngleBetween(omath.Down, hit.Point.Sub(center)); angle < smallest {
			smallest, support = angle, hit.Point
		}
	}
	if smallest <= e.slideAngle || smallest >= 180 {
		s.EmitEdgeFall(false)
		return nil
	}

	away := omath.SafeNormalize(omath.Horizontal(s.State.Position.Sub(support)))
	out.SetHorizontal(away.Mul(e.slideSpeed))
	s.EmitEdgeFall(true)
	return nil
}

// floorDetector returns the centre of the sphere at the bottom of the character's capsule.
func floorDetector(st character.State) mgl64.Vec3 {
	return st.Position.Add(mgl64.Vec3{0, st.Radius})
}
