package character

// Behavior is a locomotion capability attached to a character. Every tick the engine evaluates the gate
// of each attached behavior, removes candidates vetoed by another candidate's conflict set, and then
// applies the survivors in attachment order.
type Behavior interface {
	// ID returns the stable identity of the behavior.
	ID() ID
	// Gate reports whether the behavior wants to act this tick. It may read the snapshot and the
	// behavior's own timers. A gate returning false may queue a signal telling consumers that the state
	// owned by the behavior is no longer true.
	Gate(s *Snapshot) bool
	// Conflicts returns the identities suppressed while this behavior is a candidate. It is only
	// consulted when the behavior's own gate passed.
	Conflicts() []ID
	// Apply writes the behavior's contribution into the staged buffer. It sees the writes of every
	// behavior applied before it during the same tick.
	Apply(s *Snapshot, out *Staged) error
}

// Sampler is implemented by behaviors that latch per-tick input before the gate phase runs.
type Sampler interface {
	Sample(in Input, now float64)
}

// Dependent is implemented by behaviors that cannot run without companion behaviors attached to the same
// character.
type Dependent interface {
	Requires() []ID
}

// Stateful is implemented by behaviors that keep timers or smoothing state between ticks. The engine
// saves that state once input was sampled and restores it if the tick faults, so that a faulted tick
// leaves nothing behind apart from the input samplers latched.
type Stateful interface {
	Save() any
	Restore(state any)
}
