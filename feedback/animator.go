package feedback

import (
	"github.com/oomph-ac/locomotion/character"
	"github.com/sasha-s/go-deadlock"
	"github.com/zeebo/xxh3"
)

// Names of the parameters an Animator drives.
const (
	ParamGrounded    = "Grounded"
	ParamEdgeFall    = "EdgeFall"
	ParamFreeFall    = "FreeFall"
	ParamJump        = "Jump"
	ParamSpeedFront  = "SpeedFront"
	ParamSpeedSide   = "SpeedSide"
	ParamMotionSpeed = "MotionSpeed"
)

// Kind is the value type of an animator parameter.
type Kind uint8

const (
	KindBool Kind = iota
	KindFloat
	KindTrigger
)

// Parameter is a single named animator parameter.
type Parameter struct {
	Name  string
	Kind  Kind
	Bool  bool
	Float float32
}

// Hash returns the key a parameter name is stored under.
func Hash(name string) uint64 {
	return xxh3.HashString(name)
}

var _ character.Handler = (*Animator)(nil)

// Animator turns character signals into a table of animation parameters, keyed by the hash of their
// names. Triggers stay set until they are consumed.
type Animator struct {
	mu     deadlock.RWMutex
	params map[uint64]*Parameter

	grounded, edgeFall, freeFall, jump uint64
	speedFront, speedSide, motionSpeed uint64
}

// NewAnimator returns an Animator with every parameter registered at its zero value.
func NewAnimator() *Animator {
	a := &Animator{params: make(map[uint64]*Parameter)}
	a.grounded = a.register(ParamGrounded, KindBool)
	a.edgeFall = a.register(ParamEdgeFall, KindBool)
	a.freeFall = a.register(ParamFreeFall, KindBool)
	a.jump = a.register(ParamJump, KindTrigger)
	a.speedFront = a.register(ParamSpeedFront, KindFloat)
	a.speedSide = a.register(ParamSpeedSide, KindFloat)
	a.motionSpeed = a.register(ParamMotionSpeed, KindFloat)
	return a
}

func (a *Animator) register(name string, kind Kind) uint64 {
	id := Hash(name)
	a.params[id] = &Parameter{Name: name, Kind: kind}
	return id
}

// Parameter returns a copy of the parameter stored under id.
func (a *Animator) Parameter(id uint64) (Parameter, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.params[id]
	if !ok {
		return Parameter{}, false
	}
	return *p, true
}

// Bool returns the value of a bool parameter, or of a trigger without consuming it.
func (a *Animator) Bool(name string) bool {
	p, _ := a.Parameter(Hash(name))
	return p.Bool
}

// Float returns the value of a float parameter.
func (a *Animator) Float(name string) float32 {
	p, _ := a.Parameter(Hash(name))
	return p.Float
}

// Consume resets a trigger and reports whether it was set.
func (a *Animator) Consume(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.params[Hash(name)]
	if !ok || p.Kind != KindTrigger {
		return false
	}
	set := p.Bool
	p.Bool = false
	return set
}

func (a *Animator) setBool(id uint64, v bool) {
	a.mu.Lock()
	a.params[id].Bool = v
	a.mu.Unlock()
}

func (a *Animator) setFloat(id uint64, v float32) {
	a.mu.Lock()
	a.params[id].Float = v
	a.mu.Unlock()
}

func (a *Animator) HandleGrounded(grounded bool) { a.setBool(a.grounded, grounded) }
func (a *Animator) HandleEdgeFall(falling bool)  { a.setBool(a.edgeFall, falling) }
func (a *Animator) HandleFreeFall(falling bool)  { a.setBool(a.freeFall, falling) }
func (a *Animator) HandleJump()                  { a.setBool(a.jump, true) }
func (a *Animator) HandleMotionSpeed(v float32)  { a.setFloat(a.motionSpeed, v) }

func (a *Animator) HandleDirectionalSpeed(front, side float32) {
	a.mu.Lock()
	a.params[a.speedFront].Float = front
	a.params[a.speedSide].Float = side
	a.mu.Unlock()
}

func (*Animator) HandleCameraTarget(_, _ float64)      {}
func (*Animator) HandleTickCommitted(character.Report) {}
func (*Animator) HandleTickFault(*character.TickFault) {}
