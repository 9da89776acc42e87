package feedback

import (
	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/character"
	"go.uber.org/atomic"
)

// SmokeSpeed is the planar speed above which starting to run kicks up dust.
const SmokeSpeed = 4

// Smoke counts the dust bursts a character would play: on landing, on jumping, when it speeds up past
// SmokeSpeed and when it reverses its sideways direction.
type Smoke struct {
	character.NopHandler

	plays    atomic.Uint64
	airborne bool

	prevSpeed, prevSide float32
}

// Plays returns the number of bursts played so far.
func (s *Smoke) Plays() uint64 {
	return s.plays.Load()
}

func (s *Smoke) play() {
	s.plays.Inc()
}

func (s *Smoke) HandleGrounded(grounded bool) {
	if s.airborne && grounded {
		s.play()
	}
	s.airborne = !grounded
}

func (s *Smoke) HandleJump() {
	s.play()
}

func (s *Smoke) HandleDirectionalSpeed(front, side float32) {
	speed := math32.Hypot(front, side)
	if (speed > SmokeSpeed && s.prevSpeed < SmokeSpeed) || s.prevSide*side < 0 {
		s.play()
	}
	s.prevSpeed, s.prevSide = speed, side
}
