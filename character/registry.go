package character

import (
	"slices"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/sasha-s/go-deadlock"
)

// Registry is the ordered set of behaviors attached to a character. Its order is the order behaviors
// were attached in, and is the order gates and applies run in.
//
// Attach and detach requests are validated immediately but only take effect at the start of the next
// tick, so the registry never changes while a tick iterates it.
type Registry struct {
	mu        deadlock.Mutex
	behaviors *orderedmap.OrderedMap[ID, Behavior]
	pending   []registryOp

	// order is rebuilt from behaviors whenever the registry changes and is iterated by ticks.
	order []Behavior
}

type registryOp struct {
	attach Behavior
	detach ID
}

func newRegistry() *Registry {
	return &Registry{behaviors: orderedmap.NewOrderedMap[ID, Behavior]()}
}

// Len returns the amount of behaviors currently attached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.behaviors.Len()
}

// IDs returns the identities of the attached behaviors in registry order.
func (r *Registry) IDs() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.behaviors.Keys()
}

// Get returns the attached behavior with the given identity.
func (r *Registry) Get(id ID) (Behavior, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.behaviors.Get(id)
}

// Pending returns the amount of attach and detach requests waiting for the next tick.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Registry) queueAttach(b Behavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validate(append(r.projected(), b)); err != nil {
		return err
	}
	r.pending = append(r.pending, registryOp{attach: b})
	return nil
}

func (r *Registry) queueDetach(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projected := r.projected()
	index := slices.IndexFunc(projected, func(b Behavior) bool { return b.ID() == id })
	if index == -1 {
		return &ConfigError{Behavior: id, Reason: "behavior is not attached"}
	}
	if err := validate(slices.Delete(projected, index, index+1)); err != nil {
		return err
	}
	r.pending = append(r.pending, registryOp{detach: id})
	return nil
}

// attachNow attaches a whole pipeline at once. It is only used before a character ticks for the first
// time.
func (r *Registry) attachNow(behaviors []Behavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validate(append(r.projected(), behaviors...)); err != nil {
		return err
	}
	for _, b := range behaviors {
		r.behaviors.Set(b.ID(), b)
	}
	r.rebuild()
	return nil
}

// flush applies the pending requests and returns them.
func (r *Registry) flush() []registryOp {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	ops := r.pending
	r.pending = nil
	for _, op := range ops {
		if op.attach != nil {
			r.behaviors.Set(op.attach.ID(), op.attach)
			continue
		}
		r.behaviors.Delete(op.detach)
	}
	r.rebuild()
	return ops
}

// ordered returns the behaviors in registry order. The returned slice must not be modified and is only
// valid until the next flush.
func (r *Registry) ordered() []Behavior {
	return r.order
}

func (r *Registry) rebuild() {
	r.order = r.order[:0]
	for el := r.behaviors.Front(); el != nil; el = el.Next() {
		r.order = append(r.order, el.Value)
	}
}

// projected returns the pipeline the registry will hold once every pending request was applied.
func (r *Registry) projected() []Behavior {
	list := make([]Behavior, 0, r.behaviors.Len()+len(r.pending))
	for el := r.behaviors.Front(); el != nil; el = el.Next() {
		list = append(list, el.Value)
	}
	for _, op := range r.pending {
		if op.attach != nil {
			list = append(list, op.attach)
			continue
		}
		list = slices.DeleteFunc(list, func(b Behavior) bool { return b.ID() == op.detach })
	}
	return list
}

// validate checks that a pipeline has no duplicate identities and that every companion a behavior
// requires is part of it.
func validate(list []Behavior) error {
	present := make(map[ID]struct{}, len(list))
	for _, b := range list {
		if _, ok := present[b.ID()]; ok {
			return &ConfigError{Behavior: b.ID(), Reason: "behavior attached twice"}
		}
		present[b.ID()] = struct{}{}
	}
	for _, b := range list {
		dep, ok := b.(Dependent)
		if !ok {
			continue
		}
		var missing []ID
		for _, req := range dep.Requires() {
			if _, ok := present[req]; !ok {
				missing = append(missing, req)
			}
		}
		if len(missing) > 0 {
			return &ConfigError{Behavior: b.ID(), Missing: missing, Reason: "missing required behaviors"}
		}
	}
	return nil
}
