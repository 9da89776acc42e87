package character

import (
	"fmt"
	"strings"

	"github.com/oomph-ac/locomotion/oerror"
)

// ErrClosed is returned when ticking or mutating a closed character.
var ErrClosed = oerror.New("character is closed")

// Phase is the step of a tick in which a fault happened.
type Phase uint8

const (
	PhaseSample Phase = iota
	PhaseGate
	PhaseConflicts
	PhaseApply
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseSample:
		return "sample"
	case PhaseGate:
		return "gate"
	case PhaseConflicts:
		return "conflicts"
	case PhaseApply:
		return "apply"
	case PhaseCommit:
		return "commit"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// TickFault is returned when a behavior panicked or returned an error during a tick. The tick that
// faulted committed nothing.
type TickFault struct {
	Tick     uint64
	Behavior ID
	Phase    Phase
	Cause    error
}

func newTickFault(tick uint64, id ID, phase Phase, v any) *TickFault {
	cause, ok := v.(error)
	if !ok {
		cause = oerror.New("panic: %v", v)
	}
	return &TickFault{Tick: tick, Behavior: id, Phase: phase, Cause: cause}
}

func (f *TickFault) Error() string {
	if f.Phase == PhaseCommit {
		return fmt.Sprintf("tick %d: commit failed: %v", f.Tick, f.Cause)
	}
	return fmt.Sprintf("tick %d: %s %s failed: %v", f.Tick, f.Behavior, f.Phase, f.Cause)
}

func (f *TickFault) Unwrap() error {
	return f.Cause
}

// ConfigError is returned when a set of behaviors cannot form a valid pipeline: a duplicate identity, a
// missing companion, or a detach that would leave a dependent behind.
type ConfigError struct {
	Behavior ID
	Missing  []ID
	Reason   string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s: %s", e.Behavior, e.Reason)
	}
	names := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		names[i] = id.String()
	}
	return fmt.Sprintf("%s: %s (%s)", e.Behavior, e.Reason, strings.Join(names, ", "))
}
