package character

import (
	"strings"

	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

// DebugMode selects a category of engine trace output.
type DebugMode uint8

const (
	DebugModeGates DebugMode = iota
	DebugModeConflicts
	DebugModeApply
	DebugModeCommit
	DebugModeSignals
	DebugModeRegistry
	debugModeCount
)

// DebugModeList holds the names of the debug modes, indexed by mode.
var DebugModeList = []string{
	"gates",
	"conflicts",
	"apply",
	"commit",
	"signals",
	"registry",
}

// ParseDebugMode resolves the name of a debug mode.
func ParseDebugMode(name string) (DebugMode, error) {
	for i, n := range DebugModeList {
		if strings.EqualFold(n, name) {
			return DebugMode(i), nil
		}
	}
	return 0, oerror.New("unknown debug mode %q", name)
}

func (m DebugMode) String() string {
	if int(m) < len(DebugModeList) {
		return DebugModeList[m]
	}
	return "unknown"
}

// Debugger writes engine traces for the debug modes that are enabled.
type Debugger struct {
	log   *logrus.Logger
	modes [debugModeCount]bool
}

// Toggle flips the given debug mode.
func (d *Debugger) Toggle(mode DebugMode) {
	if mode < debugModeCount {
		d.modes[mode] = !d.modes[mode]
	}
}

// Enable sets the given debug mode.
func (d *Debugger) Enable(mode DebugMode, enabled bool) {
	if mode < debugModeCount {
		d.modes[mode] = enabled
	}
}

// Enabled returns true if the given debug mode is on.
func (d *Debugger) Enabled(mode DebugMode) bool {
	return mode < debugModeCount && d.modes[mode]
}

// Notify logs the formatted message if mode is enabled and cond holds.
func (d *Debugger) Notify(mode DebugMode, cond bool, format string, args ...any) {
	if !cond || !d.Enabled(mode) || d.log == nil {
		return
	}
	d.log.Debugf("("+mode.String()+") "+format, args...)
}
