package statemodel

import "log/slog"

// State identifies one operating mode of the controller. States are numbered
// from 0, and 0 is always the start state.
type State int

// StateNone is the sentinel for "no state": the current state of a stopped
// machine and the result of a failed transition lookup.
const StateNone State = -1

// Handler is the capability set a controller must implement. The machine
// calls into it, never the reverse.
//
// StateEntered, StateLeft and StateEvent run while the machine's dispatch
// lock is held; they must not call back into Machine methods other than
// Send. StateDo runs outside the lock, so a controller may drive
// ProcessEvent, GotoState or Stop from there.
type Handler interface {
	// StateEntered performs entry actions for a state, with the event that
	// caused the transition.
	StateEntered(state State, event Event) error
	// StateLeft performs exit actions for the state being left.
	StateLeft(state State, event Event) error
	// StateEvent responds to an event that caused no transition. The return
	// value is advisory: false only gates a debug "ignoring event" line.
	StateEvent(state State, event Event) bool
	// StateDo performs one iteration of in-state activity. It gates the run
	// loop's cadence and must be bounded.
	StateDo(state State) error
}

// Logger is the default logger used when none is provided.
var Logger = slog.Default()
