package behavior

import (
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
)

// Ground keeps a grounded character pressed against the floor.
type Ground struct {
	Base
	stick float64
}

func NewGround(cfg config.Ground) *Ground {
	return &Ground{Base: newBase(character.IDGround), stick: cfg.Stick}
}

func (*Ground) ID() character.ID {
	return character.IDGround
}

func (*Ground) Requires() []character.ID {
	return []character.ID{character.IDGravity}
}

func (*Ground) Gate(s *character.Snapshot) bool {
	return s.State.Grounded
}

func (g *Ground) Apply(s *character.Snapshot, out *character.Staged) error {
	s.EmitGrounded(true)
	out.SetVertical(g.stick)
	return nil
}
