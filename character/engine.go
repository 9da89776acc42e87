package character

import (
	"math"
	"slices"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/utils"
)

// Report describes a committed tick.
type Report struct {
	Tick  uint64
	Delta float64

	// Candidates holds the behaviors whose gate passed, Suppressed the identities named by the conflicts of
	// those candidates and Active the candidates that were applied. All three are in registry order,
	// except Suppressed which is in the order the conflicts were declared in.
	Candidates []ID
	Suppressed []ID
	Active     []ID

	// Velocity and Rotation are the staged values that were committed.
	Velocity mgl64.Vec3
	Rotation mgl64.Quat

	// State is the state of the body after the commit, and Digest its hash.
	State  State
	Digest uint64

	Signals int
}

// Tick runs a single tick of dt seconds using the input passed. Every attached behavior gates against
// the same snapshot of the state; the candidates not suppressed by another candidate are applied in
// registry order and the result is committed to the body once, rotation first.
//
// If a behavior panics or returns an error, a *TickFault is returned and nothing of the tick is
// committed: the body is left untouched, the signals queued during the tick are dropped and Stateful
// behaviors are restored to the state they had after the sample phase.
func (c *Character) Tick(dt float64, in Input) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return oerror.New("invalid tick delta %v", dt)
	}
	c.flushRegistry()

	tick := c.tick + 1
	behaviors := c.registry.ordered()

	state := stateOf(c.body)
	c.staged = Staged{Velocity: state.Velocity, Rotation: state.Rotation}
	c.signals.discard()

	snap := &Snapshot{
		State:   state,
		Staged:  c.staged,
		Input:   in,
		Delta:   dt,
		Time:    c.clock,
		Tick:    tick,
		Probe:   c.probe,
		signals: &c.signals,
	}
	if c.camera != nil {
		snap.CameraYaw = c.camera.Yaw()
	}

	for _, b := range behaviors {
		sampler, ok := b.(Sampler)
		if !ok {
			continue
		}
		if fault := guard(tick, b.ID(), PhaseSample, func() error {
			sampler.Sample(in, c.clock)
			return nil
		}); fault != nil {
			return c.abort(fault, nil)
		}
	}
	saved := save(behaviors)

	candidates := make([]Behavior, 0, len(behaviors))
	for _, b := range behaviors {
		var passed bool
		if fault := guard(tick, b.ID(), PhaseGate, func() error {
			passed = b.Gate(snap)
			return nil
		}); fault != nil {
			return c.abort(fault, saved)
		}
		c.Dbg.Notify(DebugModeGates, true, "tick %d: %s gate=%v", tick, b.ID(), passed)
		if passed {
			candidates = append(candidates, b)
		}
	}

	var suppressed []ID
	for _, b := range candidates {
		var conflicts []ID
		if fault := guard(tick, b.ID(), PhaseConflicts, func() error {
			conflicts = b.Conflicts()
			return nil
		}); fault != nil {
			return c.abort(fault, saved)
		}
		for _, id := range conflicts {
			if !slices.Contains(suppressed, id) {
				suppressed = append(suppressed, id)
			}
		}
	}

	active := make([]Behavior, 0, len(candidates))
	for _, b := range candidates {
		if !slices.Contains(suppressed, b.ID()) {
			active = append(active, b)
		}
	}
	if c.Dbg.Enabled(DebugModeConflicts) {
		c.Dbg.Notify(DebugModeConflicts, true, "tick %d: %s", tick, utils.OrderedMapToString(arbitration(candidates, suppressed)))
	}

	for _, b := range active {
		if fault := guard(tick, b.ID(), PhaseApply, func() error {
			return b.Apply(snap, &c.staged)
		}); fault != nil {
			return c.abort(fault, saved)
		}
		c.Dbg.Notify(DebugModeApply, true, "tick %d: %s staged velocity=%v", tick, b.ID(), c.staged.Velocity)
	}

	if fault := c.commit(tick, dt, state.Rotation); fault != nil {
		return c.abort(fault, saved)
	}
	assert.IsTrue(c.tick+1 == tick, "tick %d committed after tick %d", tick, c.tick)
	c.tick = tick
	c.clock += dt

	after := stateOf(c.body)
	report := Report{
		Tick:       tick,
		Delta:      dt,
		Candidates: ids(candidates),
		Suppressed: suppressed,
		Active:     ids(active),
		Velocity:   c.staged.Velocity,
		Rotation:   c.staged.Rotation,
		State:      after,
		Digest:     Digest(after),
		Signals:    c.signals.len(),
	}
	c.Dbg.Notify(DebugModeCommit, true, "tick %d: position=%v velocity=%v grounded=%v", tick, after.Position, after.Velocity, after.Grounded)

	c.historyMu.Lock()
	_ = c.history.Append(report)
	c.historyMu.Unlock()

	h := c.handler()
	c.Dbg.Notify(DebugModeSignals, report.Signals > 0, "tick %d: delivering %d signals", tick, report.Signals)
	c.signals.flush(h)
	h.HandleTickCommitted(report)
	return nil
}

// commit writes the staged buffer to the body. If the body panics, the rotation it had before the
// commit is restored.
func (c *Character) commit(tick uint64, dt float64, prev mgl64.Quat) (fault *TickFault) {
	rotated := false
	defer func() {
		if v := recover(); v != nil {
			if rotated {
				c.body.SetRotation(prev)
			}
			fault = newTickFault(tick, 0, PhaseCommit, v)
		}
	}()
	c.body.SetRotation(c.staged.Rotation)
	rotated = true
	c.body.Move(c.staged.Velocity.Mul(dt))
	return nil
}

// abort drops everything the tick produced, restores the state the behaviors saved and notifies the
// handler of the fault.
func (c *Character) abort(fault *TickFault, saved []savedState) error {
	for _, st := range saved {
		st.b.Restore(st.state)
	}
	dropped := c.signals.len()
	c.signals.discard()
	c.staged = Staged{}

	c.log.Errorf("character tick aborted: %v (%d signals dropped)", fault, dropped)
	c.handler().HandleTickFault(fault)
	return fault
}

// flushRegistry applies the attach and detach requests queued since the previous tick.
func (c *Character) flushRegistry() {
	for _, op := range c.registry.flush() {
		if op.attach != nil {
			c.Dbg.Notify(DebugModeRegistry, true, "attached %s", op.attach.ID())
			if cam, ok := op.attach.(Camera); ok && c.camera == nil {
				c.camera = cam
			}
			continue
		}
		c.Dbg.Notify(DebugModeRegistry, true, "detached %s", op.detach)
		if b, ok := c.camera.(Behavior); ok && b.ID() == op.detach {
			c.camera = nil
		}
	}
}

// guard runs fn, turning a panic or an error into a fault of the phase passed.
func guard(tick uint64, id ID, phase Phase, fn func() error) (fault *TickFault) {
	defer func() {
		if v := recover(); v != nil {
			fault = newTickFault(tick, id, phase, v)
		}
	}()
	if err := fn(); err != nil {
		return newTickFault(tick, id, phase, err)
	}
	return nil
}

func arbitration(candidates []Behavior, suppressed []ID) *orderedmap.OrderedMap[ID, string] {
	m := orderedmap.NewOrderedMap[ID, string]()
	for _, b := range candidates {
		if slices.Contains(suppressed, b.ID()) {
			m.Set(b.ID(), "suppressed")
			continue
		}
		m.Set(b.ID(), "active")
	}
	return m
}

type savedState struct {
	b     Stateful
	state any
}

func save(behaviors []Behavior) []savedState {
	var saved []savedState
	for _, b := range behaviors {
		if st, ok := b.(Stateful); ok {
			saved = append(saved, savedState{b: st, state: st.Save()})
		}
	}
	return saved
}

func ids(behaviors []Behavior) []ID {
	list := make([]ID, len(behaviors))
	for i, b := range behaviors {
		list[i] = b.ID()
	}
	return list
}
