package behavior

import (
	"math"

	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
)

// Jump launches a grounded character upwards when a jump was requested. A request stays buffered for the
// jump timeout, which is also the cooldown between two jumps.
type Jump struct {
	Base

	height  float64
	timeout float64
	gravity float64

	// requestExpiry is the character time until which a jump request is buffered. It is negative when no
	// request is buffered.
	requestExpiry float64
	// cooldownEnd is the character time from which the next jump may start.
	cooldownEnd float64
}

func NewJump(cfg config.Jump, gravity config.Gravity) *Jump {
	return &Jump{
		Base:          newBase(character.IDJump),
		height:        cfg.Height,
		timeout:       cfg.Timeout,
		gravity:       gravity.Acceleration,
		requestExpiry: -1,
	}
}

func (*Jump) ID() character.ID {
	return character.IDJump
}

func (j *Jump) Save() any {
	return *j
}

func (j *Jump) Restore(state any) {
	*j = state.(Jump)
}

func (*Jump) Requires() []character.ID {
	return []character.ID{character.IDGravity}
}

// Height returns the height a jump reaches.
func (j *Jump) Height() float64 {
	return j.height
}

// Impulse returns the vertical velocity a jump starts with.
func (j *Jump) Impulse() float64 {
	return Impulse(j.height, j.gravity)
}

// Request buffers a jump request made at the character time passed. A request made while another one is
// still buffered does not extend it.
func (j *Jump) Request(now float64) {
	if j.Requested(now) {
		return
	}
	j.requestExpiry = now + j.timeout
}

// Requested returns true if a jump request is buffered at the character time passed.
func (j *Jump) Requested(now float64) bool {
	return j.requestExpiry >= now
}

func (j *Jump) Sample(in character.Input, now float64) {
	if in.Jump {
		j.Request(now)
	}
}

func (j *Jump) Gate(s *character.Snapshot) bool {
	return s.State.Grounded && j.Requested(s.Time) && s.Time >= j.cooldownEnd
}

func (j *Jump) Apply(s *character.Snapshot, out *character.Staged) error {
	out.SetVertical(j.Impulse())
	j.requestExpiry = -1
	j.cooldownEnd = s.Time + j.timeout
	s.EmitJump()
	return nil
}

// Impulse returns the vertical velocity needed to reach height under the gravity acceleration passed.
func Impulse(height, gravity float64) float64 {
	return math.Sqrt(2 * height * math.Abs(gravity))
}

// AirTime returns the time a jump of the given height takes to reach its apex.
func AirTime(height, gravity float64) float64 {
	return math.Sqrt(2 * height / math.Abs(gravity))
}
