package simulation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/character/behavior"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ErrRunning is returned by Run if the driver is already running.
var ErrRunning = oerror.New("driver is already running")

// Driver ticks a set of characters at the fixed rate of its configuration. Characters are ticked on a
// worker pool when the configuration asks for workers, each by one goroutine at a time.
type Driver struct {
	log  *logrus.Logger
	cfg  config.Config
	dt   float64
	pool *worker.Pool

	mu      deadlock.RWMutex
	entries *orderedmap.OrderedMap[uuid.UUID, *entry]

	running atomic.Bool
	ticks   atomic.Uint64
	faults  atomic.Uint64
}

type entry struct {
	id uuid.UUID
	c  *character.Character

	mu    deadlock.Mutex
	input character.Input
}

// next returns the input for the coming tick. Jump presses and mouse look deltas are consumed by it.
func (e *entry) next() character.Input {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.input
	e.input.Jump = false
	if e.input.MouseLook {
		e.input.Look = mgl64.Vec2{}
	}
	return in
}

func (e *entry) set(in character.Input) {
	e.mu.Lock()
	defer e.mu.Unlock()

	jump := e.input.Jump || in.Jump
	if in.MouseLook && e.input.MouseLook {
		in.Look = e.input.Look.Add(in.Look)
	}
	e.input = in
	e.input.Jump = jump
}

// NewDriver returns a driver for the configuration passed. A nil logger uses the standard logger.
func NewDriver(log *logrus.Logger, cfg config.Config) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Driver{
		log:     log,
		cfg:     cfg,
		dt:      1 / float64(cfg.Simulation.TickRate),
		entries: orderedmap.NewOrderedMap[uuid.UUID, *entry](),
	}
	if cfg.Simulation.Workers > 0 {
		d.pool = worker.New(cfg.Simulation.Workers)
	}
	return d
}

// Delta returns the duration of a tick in seconds.
func (d *Driver) Delta() float64 {
	return d.dt
}

// Interval returns the wall clock duration between two ticks of Run.
func (d *Driver) Interval() time.Duration {
	return time.Second / time.Duration(d.cfg.Simulation.TickRate)
}

// Spawn creates a character moving body with the configured pipeline and debug modes, and adds it to
// the driver.
func (d *Driver) Spawn(body character.Body, probe character.Probe, h character.Handler) (uuid.UUID, *character.Character, error) {
	behaviors, err := behavior.Pipeline(d.cfg)
	if err != nil {
		return uuid.Nil, nil, err
	}
	modes, err := d.cfg.Simulation.Modes()
	if err != nil {
		return uuid.Nil, nil, err
	}
	c, err := character.New(d.log, body, behaviors...)
	if err != nil {
		return uuid.Nil, nil, err
	}
	for _, mode := range modes {
		c.Dbg.Enable(mode, true)
	}
	c.SetProbe(probe)
	c.Handle(h)
	return d.Add(c), c, nil
}

// Add adds a character to the driver and returns the ID it is known by.
func (d *Driver) Add(c *character.Character) uuid.UUID {
	e := &entry{id: uuid.New(), c: c}

	d.mu.Lock()
	d.entries.Set(e.id, e)
	d.mu.Unlock()

	d.log.WithField("character", e.id.String()).Debug("character added to driver")
	return e.id
}

// Remove closes the character with the ID passed and removes it from the driver.
func (d *Driver) Remove(id uuid.UUID) bool {
	d.mu.Lock()
	e, ok := d.entries.Get(id)
	if ok {
		d.entries.Delete(id)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}
	_ = e.c.Close()
	d.log.WithField("character", id.String()).Debug("character removed from driver")
	return true
}

// Character returns the character with the ID passed.
func (d *Driver) Character(id uuid.UUID) (*character.Character, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries.Get(id)
	if !ok {
		return nil, false
	}
	return e.c, true
}

// IDs returns the IDs of the characters in the order they were added.
func (d *Driver) IDs() []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.entries.Keys()
}

// Len returns the amount of characters in the driver.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.entries.Len()
}

// SetInput sets the input the character is ticked with from the next tick on. Jump presses and mouse look
// deltas accumulate until a tick consumes them.
func (d *Driver) SetInput(id uuid.UUID, in character.Input) error {
	d.mu.RLock()
	e, ok := d.entries.Get(id)
	d.mu.RUnlock()

	if !ok {
		return oerror.New("unknown character %s", id)
	}
	e.set(in)
	return nil
}

// Ticks returns the amount of steps the driver made.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}

// Faults returns the amount of tick faults the driver reported.
func (d *Driver) Faults() uint64 {
	return d.faults.Load()
}

// Running returns true while Run is ticking the driver.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Step ticks every character once. Faults are logged and reported, then joined into the returned error;
// they never stop the other characters from being ticked. Characters that were closed are removed.
func (d *Driver) Step() error {
	d.mu.RLock()
	entries := make([]*entry, 0, d.entries.Len())
	for el := d.entries.Front(); el != nil; el = el.Next() {
		entries = append(entries, el.Value)
	}
	d.mu.RUnlock()

	errs := make([]error, len(entries))
	if d.pool != nil && len(entries) > 1 {
		fns := make([]func(), len(entries))
		for i, e := range entries {
			fns[i] = func() { errs[i] = d.tick(e) }
		}
		if err := d.pool.Run(fns...); err != nil {
			return err
		}
	} else {
		for i, e := range entries {
			errs[i] = d.tick(e)
		}
	}
	d.ticks.Inc()
	return errors.Join(errs...)
}

func (d *Driver) tick(e *entry) error {
	err := e.c.Tick(d.dt, e.next())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, character.ErrClosed):
		d.Remove(e.id)
		return nil
	}
	d.faults.Inc()
	d.report(e.id, err)
	return err
}

// report sends a tick fault to Sentry, tagged with the character and, unless the commit failed, the
// behavior that failed.
func (d *Driver) report(id uuid.UUID, err error) {
	tags := faultTags(id, err)
	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	hub.CaptureException(err)
	d.log.WithFields(fields).Warnf("tick fault reported: %v", err)
}

func faultTags(id uuid.UUID, err error) map[string]string {
	tags := map[string]string{"character": id.String()}

	var fault *character.TickFault
	if !errors.As(err, &fault) {
		return tags
	}
	tags["phase"] = fault.Phase.String()
	tags["tick"] = strconv.FormatUint(fault.Tick, 10)
	if fault.Phase != character.PhaseCommit {
		tags["behavior"] = fault.Behavior.String()
	}
	return tags
}

// Run steps the driver at its tick rate until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer d.running.Store(false)

	t := time.NewTicker(d.Interval())
	defer t.Stop()

	d.log.Infof("driver running at %d ticks per second", d.cfg.Simulation.TickRate)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = d.Step()
		}
	}
}

// Close closes every character, stops the worker pool and flushes pending Sentry events.
func (d *Driver) Close() {
	for _, id := range d.IDs() {
		d.Remove(id)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	sentry.Flush(time.Second * 2)
}
