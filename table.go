package statemodel

import "fmt"

// Transition is one table entry: the event that triggers it and the
// destination state. The source state is implied by the row it lives in.
type Transition struct {
	Event Event
	To    State
}

// transitionTable stores per-state transition rows, indexed by source state.
// Rows keep insertion order; because event names are unique machine-wide, at
// most one entry per row can match a given event.
type transitionTable struct {
	rows [][]Transition
}

func newTransitionTable(numStates int) *transitionTable {
	return &transitionTable{
		rows: make([][]Transition, numStates),
	}
}

func (t *transitionTable) numStates() int {
	return len(t.rows)
}

func (t *transitionTable) stateInRange(s State) bool {
	return s >= 0 && int(s) < len(t.rows)
}

// add appends one (event, to) entry to from's row for every listed event.
// Everything is validated up front so a failure leaves the table untouched.
func (t *transitionTable) add(from State, events []Event, to State, reg *eventRegistry) error {
	if !t.stateInRange(from) {
		return fmt.Errorf("%w: from state %d", ErrStateOutOfRange, from)
	}
	if !t.stateInRange(to) {
		return fmt.Errorf("%w: to state %d", ErrStateOutOfRange, to)
	}
	for _, e := range events {
		if !reg.contains(e) {
			return fmt.Errorf("%w: %q", ErrUnknownEvent, e)
		}
	}
	for _, e := range events {
		t.rows[from] = append(t.rows[from], Transition{Event: e, To: to})
	}
	return nil
}

// replace swaps in a whole table at once. The row count must match the state
// count exactly, and every entry is validated before commit.
func (t *transitionTable) replace(rows [][]Transition, reg *eventRegistry) error {
	if len(rows) != len(t.rows) {
		return fmt.Errorf("%w: got %d rows for %d states", ErrRowCountMismatch, len(rows), len(t.rows))
	}
	for from, row := range rows {
		for _, tr := range row {
			if !reg.contains(tr.Event) {
				return fmt.Errorf("%w: %q in row %d", ErrUnknownEvent, tr.Event, from)
			}
			if !t.stateInRange(tr.To) {
				return fmt.Errorf("%w: to state %d in row %d", ErrStateOutOfRange, tr.To, from)
			}
		}
	}
	fresh := make([][]Transition, len(rows))
	for i, row := range rows {
		fresh[i] = append([]Transition(nil), row...)
	}
	t.rows = fresh
	return nil
}

// lookup returns the destination for the first entry in from's row whose
// event matches, or (StateNone, false) when the row has no match.
func (t *transitionTable) lookup(from State, event Event) (State, bool) {
	if !t.stateInRange(from) {
		return StateNone, false
	}
	for _, tr := range t.rows[from] {
		if tr.Event == event {
			return tr.To, true
		}
	}
	return StateNone, false
}
