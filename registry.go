package statemodel

import "fmt"

// eventRegistry is the universe of valid event names. Every name the machine
// will ever dispatch must be registered here first. NoEvent is always present.
type eventRegistry struct {
	names []Event
	index map[Event]struct{}
}

func newEventRegistry() *eventRegistry {
	r := &eventRegistry{
		index: make(map[Event]struct{}),
	}
	// The reserved epsilon event is part of every registry.
	_ = r.register(NoEvent)
	return r
}

// register appends a new event name. Duplicates fail without mutating the
// registry.
func (r *eventRegistry) register(name Event) error {
	if name == "" {
		return ErrEmptyEventName
	}
	if r.contains(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateEvent, name)
	}
	r.names = append(r.names, name)
	r.index[name] = struct{}{}
	return nil
}

func (r *eventRegistry) contains(name Event) bool {
	_, ok := r.index[name]
	return ok
}

// list returns the registered names in insertion order.
func (r *eventRegistry) list() []Event {
	out := make([]Event, len(r.names))
	copy(out, r.names)
	return out
}
