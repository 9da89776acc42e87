package behavior

import (
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
)

// Gravity accelerates an airborne character downwards.
type Gravity struct {
	Base
	acceleration float64
}

func NewGravity(cfg config.Gravity) *Gravity {
	return &Gravity{Base: newBase(character.IDGravity), acceleration: cfg.Acceleration}
}

func (*Gravity) ID() character.ID {
	return character.IDGravity
}

// Acceleration returns the signed vertical acceleration of the behavior.
func (g *Gravity) Acceleration() float64 {
	return g.acceleration
}

func (*Gravity) Gate(s *character.Snapshot) bool {
	return !s.State.Grounded
}

func (g *Gravity) Apply(s *character.Snapshot, out *character.Staged) error {
	s.EmitGrounded(false)
	out.SetVertical(out.Vertical() + g.acceleration*s.Delta)
	return nil
}
