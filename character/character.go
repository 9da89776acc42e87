package character

import (
	"github.com/oomph-ac/locomotion/utils"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// HistorySize is the amount of tick reports a character keeps.
const HistorySize = 64

// Character is a locomotion subject: a physics body driven by an ordered pipeline of behaviors. A
// character must be ticked by one goroutine at a time. Attach, Detach, Handle and the getters may be
// called from anywhere.
type Character struct {
	log *logrus.Logger
	Dbg *Debugger

	body     Body
	registry *Registry
	probe    Probe
	camera   Camera

	hMu deadlock.RWMutex
	h   Handler

	staged  Staged
	signals signalQueue

	tick  uint64
	clock float64

	historyMu deadlock.Mutex
	history   *utils.CircularQueue[Report]

	closed atomic.Bool
}

// New creates a character moving body with the behaviors passed, attached in the order given. An error is
// returned if the behaviors do not form a valid pipeline, in which case no character is created.
func New(log *logrus.Logger, body Body, behaviors ...Behavior) (*Character, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Character{
		log: log,
		Dbg: &Debugger{log: log},

		body:     body,
		registry: newRegistry(),
		probe:    NopProbe{},

		h: NopHandler{},

		history: utils.NewCircularQueue[Report](HistorySize),
	}
	if err := c.registry.attachNow(behaviors); err != nil {
		return nil, err
	}
	for _, b := range behaviors {
		if cam, ok := b.(Camera); ok && c.camera == nil {
			c.camera = cam
		}
	}
	return c, nil
}

// Log returns the logger of the character.
func (c *Character) Log() *logrus.Logger {
	return c.log
}

// Body returns the physics body the character moves.
func (c *Character) Body() Body {
	return c.body
}

// Registry returns the behaviors attached to the character.
func (c *Character) Registry() *Registry {
	return c.registry
}

// State returns a copy of the current physical state of the character.
func (c *Character) State() State {
	return stateOf(c.body)
}

// Handle sets the handler signals are delivered to. Passing nil resets it to a NopHandler.
func (c *Character) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	c.hMu.Lock()
	defer c.hMu.Unlock()
	c.h = h
}

func (c *Character) handler() Handler {
	c.hMu.RLock()
	defer c.hMu.RUnlock()
	return c.h
}

// SetProbe sets the collaborator answering geometric queries. Passing nil queries an empty world.
func (c *Character) SetProbe(p Probe) {
	if p == nil {
		p = NopProbe{}
	}
	c.probe = p
}

// SetCamera sets the collaborator movement input is made relative to. When New is given a behavior that
// is also a Camera, that behavior is used until SetCamera is called.
func (c *Character) SetCamera(cam Camera) {
	c.camera = cam
}

// Attach queues b to be attached at the start of the next tick. A ConfigError is returned, and nothing
// queued, if b would not form a valid pipeline with the behaviors that will be attached by then.
func (c *Character) Attach(b Behavior) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.registry.queueAttach(b); err != nil {
		return err
	}
	c.Dbg.Notify(DebugModeRegistry, true, "queued attach of %s", b.ID())
	return nil
}

// Detach queues the behavior with the given identity to be removed at the start of the next tick. A
// ConfigError is returned if it is not attached or another behavior requires it.
func (c *Character) Detach(id ID) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.registry.queueDetach(id); err != nil {
		return err
	}
	c.Dbg.Notify(DebugModeRegistry, true, "queued detach of %s", id)
	return nil
}

// Ticks returns the amount of ticks the character committed.
func (c *Character) Ticks() uint64 {
	return c.tick
}

// Clock returns the character clock in seconds: the sum of the deltas of every committed tick.
func (c *Character) Clock() float64 {
	return c.clock
}

// LastReport returns the report of the latest committed tick.
func (c *Character) LastReport() (Report, bool) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	return c.history.Latest()
}

// History returns the reports of the latest committed ticks, oldest first.
func (c *Character) History() []Report {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	reports := make([]Report, 0, c.history.Len())
	for r := range c.history.Iter() {
		reports = append(reports, r)
	}
	return reports
}

// Closed returns true if the character was closed.
func (c *Character) Closed() bool {
	return c.closed.Load()
}

// Close stops the character from ticking. Pending attach and detach requests are dropped.
func (c *Character) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.registry.mu.Lock()
	c.registry.pending = nil
	c.registry.mu.Unlock()
	return nil
}
