package behavior

import (
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
)

// FreeFall tells consumers when a character has been airborne for longer than a timeout, which is when
// falling animations should start playing.
type FreeFall struct {
	Base
	timeout float64
	// remaining is the airborne time left before the character counts as free-falling.
	remaining float64
}

func NewFreeFall(cfg config.FreeFall) *FreeFall {
	return &FreeFall{Base: newBase(character.IDFreeFall), timeout: cfg.Timeout, remaining: cfg.Timeout}
}

func (*FreeFall) ID() character.ID {
	return character.IDFreeFall
}

func (f *FreeFall) Save() any {
	return *f
}

func (f *FreeFall) Restore(state any) {
	*f = state.(FreeFall)
}

func (*FreeFall) Requires() []character.ID {
	return []character.ID{character.IDGravity}
}

func (*FreeFall) Gate(*character.Snapshot) bool {
	return true
}

func (f *FreeFall) Apply(s *character.Snapshot, _ *character.Staged) error {
	if s.State.Grounded {
		f.remaining = f.timeout
	} else {
		f.remaining -= s.Delta
	}
	s.EmitFreeFall(!s.State.Grounded && f.remaining < 0)
	return nil
}
