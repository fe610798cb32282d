package statemodel

import "errors"

// Configuration errors. All of them are raised synchronously at the call
// site, and the failed operation leaves the machine unchanged.
var (
	// ErrDuplicateEvent is returned when a registration would collide with
	// an already registered event name.
	ErrDuplicateEvent = errors.New("event already registered")

	// ErrUnknownEvent is returned when a transition or dispatch references
	// an event name that was never registered.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrEmptyEventName is returned when a registration names no event.
	ErrEmptyEventName = errors.New("event name must not be empty")

	// ErrStateOutOfRange is returned when a state is outside [0, numStates).
	ErrStateOutOfRange = errors.New("state out of range")

	// ErrRowCountMismatch is returned by SetTransitionTable when the number
	// of rows does not equal the machine's state count.
	ErrRowCountMismatch = errors.New("transition table row count does not match state count")

	// ErrInvalidStateCount is returned by New for a non-positive state count.
	ErrInvalidStateCount = errors.New("state count must be at least 1")

	// ErrNotRunning is returned when an event is dispatched to a stopped
	// machine.
	ErrNotRunning = errors.New("state model is not running")

	// ErrAlreadyRunning is returned by Start on a running machine.
	ErrAlreadyRunning = errors.New("state model is already running")
)
