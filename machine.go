// Package statemodel implements a small event-driven finite-state-machine
// engine for embedded control applications. A machine owns a registry of
// named events and a per-state transition table, and drives a controller
// through its operating modes by calling the controller's lifecycle methods
// in a strict leave-then-enter order. Button edges and hardware-timer
// expirations are funneled through a single-consumer event queue drained by
// the run loop, so handler callbacks are never invoked from asynchronous
// driver context.
package statemodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Machine is the state-machine engine. It owns the event registry and the
// transition table, tracks the current state, and dispatches events to the
// controller's Handler methods.
//
// Events, transitions, buttons and timers are added during a single-threaded
// setup phase; mutating them after Start is unsupported.
type Machine struct {
	numStates int
	handler   Handler

	mu      sync.RWMutex
	current State
	running bool

	registry *eventRegistry
	table    *transitionTable

	buttons []Button
	timers  []Timer

	queue chan occurrence

	logger *slog.Logger
	debug  bool
}

// Option is a functional option for configuring a Machine.
type Option func(*Machine)

// WithLogger sets the logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithDebug enables per-transition diagnostic logging.
func WithDebug(debug bool) Option {
	return func(m *Machine) {
		m.debug = debug
	}
}

// WithQueueSize sets the event queue buffer size.
func WithQueueSize(size int) Option {
	return func(m *Machine) {
		m.queue = make(chan occurrence, size)
	}
}

// New creates a stopped machine with numStates states (numbered from 0) that
// reports to handler. The reserved NoEvent is pre-registered.
func New(numStates int, handler Handler, opts ...Option) (*Machine, error) {
	if numStates < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStateCount, numStates)
	}
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	m := &Machine{
		numStates: numStates,
		handler:   handler,
		current:   StateNone,
		registry:  newEventRegistry(),
		table:     newTransitionTable(numStates),
		queue:     make(chan occurrence, 16),
		logger:    Logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// NumStates returns the machine's state count.
func (m *Machine) NumStates() int {
	return m.numStates
}

// CurrentState returns the current state, or StateNone when stopped.
func (m *Machine) CurrentState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Running reports whether the machine has been started and not yet stopped.
func (m *Machine) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Events returns all registered event names in registration order.
func (m *Machine) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry.list()
}

// AddCustomEvent registers an event whose occurrence is detected entirely by
// the application; the machine only accepts it for transitions. The caller is
// responsible for delivering it via ProcessEvent or Send.
func (m *Machine) AddCustomEvent(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.register(event)
}

// AddTransition adds one transition from fromState to toState for every
// event in events. Each event must already be registered; on failure nothing
// is added.
func (m *Machine) AddTransition(fromState State, events []Event, toState State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.add(fromState, events, toState, m.registry)
}

// SetTransitionTable replaces the whole transition table. rows must contain
// exactly one row per state, and every entry is validated before commit.
func (m *Machine) SetTransitionTable(rows [][]Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.replace(rows, m.registry)
}

// Lookup returns the destination state for (fromState, event), or
// (StateNone, false) when the state has no matching transition.
func (m *Machine) Lookup(fromState State, event Event) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.lookup(fromState, event)
}

// AddButton registers a button driver. Its <name>_press and <name>_release
// events become available for transitions and the machine takes over the
// button's event delivery. Two buttons cannot share a name.
func (m *Machine) AddButton(b Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	press, release := PressEvent(b.Name()), ReleaseEvent(b.Name())
	if m.registry.contains(press) || m.registry.contains(release) {
		return fmt.Errorf("%w: button %q", ErrDuplicateEvent, b.Name())
	}
	// Neither name can collide now, so both registrations succeed.
	_ = m.registry.register(press)
	_ = m.registry.register(release)

	b.SetDeliveryTarget(m)
	m.buttons = append(m.buttons, b)
	return nil
}

// AddTimer registers a timer. Its <name>_timeout event becomes available for
// transitions and the machine takes over expiry delivery. Software timers are
// polled once per run-loop tick; hardware timers deliver out of band.
func (m *Machine) AddTimer(t Timer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registry.register(TimeoutEvent(t.Name())); err != nil {
		return fmt.Errorf("timer %q: %w", t.Name(), err)
	}

	t.SetDeliveryTarget(m)
	m.timers = append(m.timers, t)
	return nil
}

// Start begins execution: the machine enters state 0 and the handler's
// StateEntered runs exactly once with NoEvent. Starting a running machine is
// an error.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	m.current = 0
	m.running = true
	if m.debug {
		m.logger.Debug("state model started", "state", m.current)
	}
	return m.handler.StateEntered(m.current, NoEvent)
}

// Stop halts execution. A running machine reports StateLeft for the current
// state exactly once; every attached button and timer is then detached and
// pending timer expirations are cancelled. Stopping a stopped machine repeats
// the detachment but issues no handler calls. Adapter teardown proceeds even
// when the handler's exit action fails.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.running {
		err = m.handler.StateLeft(m.current, NoEvent)
		m.running = false
		if m.debug {
			m.logger.Debug("state model stopped", "state", m.current)
		}
	}

	for _, b := range m.buttons {
		b.SetDeliveryTarget(nil)
	}
	for _, t := range m.timers {
		t.SetDeliveryTarget(nil)
		t.Cancel()
	}
	m.current = StateNone
	return err
}

// ProcessEvent dispatches a single event synchronously. A registered event
// either triggers the matching transition for the current state, or — when
// the row has no match and the event is not NoEvent — is reported to the
// handler as an in-state event. Unregistered events fail without mutating
// anything.
//
// ProcessEvent serializes against the run loop and all other dispatch; do not
// call it from inside StateEntered, StateLeft or StateEvent (use Send there).
func (m *Machine) ProcessEvent(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processLocked(event)
}

func (m *Machine) processLocked(event Event) error {
	if !m.registry.contains(event) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if !m.running {
		return fmt.Errorf("%w: dropping %q", ErrNotRunning, event)
	}

	if to, ok := m.table.lookup(m.current, event); ok {
		return m.transitionLocked(to, event)
	}

	if event != NoEvent {
		handled := m.handler.StateEvent(m.current, event)
		if m.debug && !handled {
			m.logger.Debug("ignoring event", "event", event, "state", m.current)
		}
	}
	return nil
}

// GotoState forces a transition to target, bypassing table lookup. The usual
// leave-then-enter protocol still applies. Out-of-range targets and
// unregistered events are rejected.
func (m *Machine) GotoState(target State, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.contains(event) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if !m.running {
		return fmt.Errorf("%w: cannot go to state %d", ErrNotRunning, target)
	}
	if target < 0 || int(target) >= m.numStates {
		return fmt.Errorf("%w: %d", ErrStateOutOfRange, target)
	}
	return m.transitionLocked(target, event)
}

// transitionLocked performs the leave-then-mutate-then-enter sequence. The
// dispatch lock is held throughout, so a concurrent transition can never
// interleave. An exit-action error aborts before the state mutates.
func (m *Machine) transitionLocked(to State, event Event) error {
	if m.debug {
		m.logger.Debug("transition", "from", m.current, "to", to, "event", event)
	}
	if err := m.handler.StateLeft(m.current, event); err != nil {
		return err
	}
	m.current = to
	return m.handler.StateEntered(m.current, event)
}

// Send queues an event for the run loop to dispatch. This is the delivery
// path for asynchronous sources (button edges, hardware timers) and the only
// machine call that is safe from inside StateEntered, StateLeft and
// StateEvent. When the queue is full the event is dropped with a warning.
func (m *Machine) Send(event Event) error {
	if !m.registry.contains(event) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	occ := occurrence{id: uuid.New(), event: event, at: time.Now()}
	select {
	case m.queue <- occ:
		if m.debug {
			m.logger.Debug("queued event", "event", event, "id", occ.id)
		}
	default:
		m.logger.Warn("event queue full, dropping event", "event", event)
	}
	return nil
}

// ButtonPressed delivers a button press edge. Part of ButtonTarget; called by
// attached button drivers.
func (m *Machine) ButtonPressed(name string) {
	m.deliver(PressEvent(name))
}

// ButtonReleased delivers a button release edge. Part of ButtonTarget.
func (m *Machine) ButtonReleased(name string) {
	m.deliver(ReleaseEvent(name))
}

// Timeout delivers a timer expiry for the named timer. Part of TimerTarget;
// called by attached timers, and usable directly by application code that
// manages its own timers.
func (m *Machine) Timeout(name string) {
	m.deliver(TimeoutEvent(name))
}

func (m *Machine) deliver(event Event) {
	if err := m.Send(event); err != nil {
		m.logger.Error("dropping undeliverable event", "event", event, "error", err)
	}
}

// Run starts the machine and executes the cooperative control loop until the
// machine stops or ctx is cancelled. Each iteration: the handler's StateDo
// runs, software timers are polled, queued events are dispatched, the loop
// suspends for pollInterval (zero means no suspension), and finally NoEvent
// is processed so unconditional transitions fire with zero latency.
//
// The first handler or configuration error aborts the loop and is returned.
// On cancellation the machine is stopped and ctx's error is returned.
func (m *Machine) Run(ctx context.Context, pollInterval time.Duration) error {
	if err := m.Start(); err != nil {
		return err
	}

	for m.Running() {
		select {
		case <-ctx.Done():
			if err := m.Stop(); err != nil {
				return err
			}
			return ctx.Err()
		default:
		}

		cur := m.CurrentState()
		if cur == StateNone {
			break
		}
		if err := m.handler.StateDo(cur); err != nil {
			return err
		}

		m.checkTimers()

		if err := m.drain(); err != nil {
			return err
		}

		if pollInterval > 0 {
			t := time.NewTimer(pollInterval)
			select {
			case <-ctx.Done():
				t.Stop()
				if err := m.Stop(); err != nil {
					return err
				}
				return ctx.Err()
			case <-t.C:
			}
		}

		// The handler may have stopped the machine during StateDo or while
		// draining; NoEvent is only processed on a live machine.
		if !m.Running() {
			break
		}
		if err := m.ProcessEvent(NoEvent); err != nil {
			// An external Stop can land between the Running check and this
			// dispatch; that is a clean shutdown, not a failure.
			if errors.Is(err, ErrNotRunning) {
				break
			}
			return err
		}
	}
	return nil
}

// checkTimers polls every attached software timer once.
func (m *Machine) checkTimers() {
	m.mu.RLock()
	timers := append([]Timer(nil), m.timers...)
	m.mu.RUnlock()

	for _, t := range timers {
		if p, ok := t.(polledTimer); ok {
			p.Check()
		}
	}
}

// drain dispatches queued events until the queue is empty. Events left queued
// when the machine stops mid-drain are discarded.
func (m *Machine) drain() error {
	for {
		select {
		case occ := <-m.queue:
			if m.debug {
				m.logger.Debug("dispatching queued event", "event", occ.event, "id", occ.id, "queued_for", time.Since(occ.at))
			}
			if err := m.ProcessEvent(occ.event); err != nil {
				if errors.Is(err, ErrNotRunning) {
					return nil
				}
				return err
			}
		default:
			return nil
		}
	}
}
