package statemodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReservesNoEvent(t *testing.T) {
	r := newEventRegistry()
	assert.True(t, r.contains(NoEvent))
	assert.Equal(t, []Event{NoEvent}, r.list())

	require.ErrorIs(t, r.register(NoEvent), ErrDuplicateEvent)
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := newEventRegistry()
	require.ErrorIs(t, r.register(""), ErrEmptyEventName)
	assert.Equal(t, []Event{NoEvent}, r.list())
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := newEventRegistry()
	require.NoError(t, r.register("b"))
	require.NoError(t, r.register("a"))
	require.NoError(t, r.register("c"))
	assert.Equal(t, []Event{NoEvent, "b", "a", "c"}, r.list())

	require.ErrorIs(t, r.register("a"), ErrDuplicateEvent)
	assert.Equal(t, []Event{NoEvent, "b", "a", "c"}, r.list())
}

func TestAddTransitionValidation(t *testing.T) {
	reg := newEventRegistry()
	require.NoError(t, reg.register("go"))
	tbl := newTransitionTable(3)

	require.ErrorIs(t, tbl.add(3, []Event{"go"}, 0, reg), ErrStateOutOfRange)
	require.ErrorIs(t, tbl.add(-1, []Event{"go"}, 0, reg), ErrStateOutOfRange)
	require.ErrorIs(t, tbl.add(0, []Event{"go"}, 3, reg), ErrStateOutOfRange)

	// One unknown event in the batch leaves the whole row untouched.
	require.ErrorIs(t, tbl.add(0, []Event{"go", "halt"}, 1, reg), ErrUnknownEvent)
	_, ok := tbl.lookup(0, "go")
	assert.False(t, ok)

	require.NoError(t, tbl.add(0, []Event{"go"}, 1, reg))
	to, ok := tbl.lookup(0, "go")
	assert.True(t, ok)
	assert.Equal(t, State(1), to)
}

func TestSetTransitionTableValidation(t *testing.T) {
	reg := newEventRegistry()
	require.NoError(t, reg.register("go"))
	tbl := newTransitionTable(2)
	require.NoError(t, tbl.add(0, []Event{"go"}, 1, reg))

	err := tbl.replace([][]Transition{{{Event: "go", To: 1}}}, reg)
	require.ErrorIs(t, err, ErrRowCountMismatch)

	err = tbl.replace([][]Transition{{{Event: "halt", To: 1}}, nil}, reg)
	require.ErrorIs(t, err, ErrUnknownEvent)

	err = tbl.replace([][]Transition{{{Event: "go", To: 2}}, nil}, reg)
	require.ErrorIs(t, err, ErrStateOutOfRange)

	// Failed replacements never commit.
	to, ok := tbl.lookup(0, "go")
	require.True(t, ok)
	assert.Equal(t, State(1), to)

	require.NoError(t, tbl.replace([][]Transition{nil, {{Event: "go", To: 0}}}, reg))
	_, ok = tbl.lookup(0, "go")
	assert.False(t, ok)
	to, ok = tbl.lookup(1, "go")
	require.True(t, ok)
	assert.Equal(t, State(0), to)
}

func TestLookupDeterministic(t *testing.T) {
	rec := &recorder{}
	m := fanMachine(t, rec)

	for i := 0; i < 3; i++ {
		for s := State(0); int(s) < m.NumStates(); s++ {
			first, firstOK := m.Lookup(s, "temp_drop")
			second, secondOK := m.Lookup(s, "temp_drop")
			assert.Equal(t, first, second)
			assert.Equal(t, firstOK, secondOK)
		}
	}

	_, ok := m.Lookup(StateNone, "temp_drop")
	assert.False(t, ok)
}

// lookupGrid snapshots every (state, event) lookup result for comparison.
func lookupGrid(m *Machine) map[State]map[Event]State {
	grid := make(map[State]map[Event]State)
	for s := State(0); int(s) < m.NumStates(); s++ {
		grid[s] = make(map[Event]State)
		for _, e := range m.Events() {
			if to, ok := m.Lookup(s, e); ok {
				grid[s][e] = to
			}
		}
	}
	return grid
}

func TestIncrementalAndBulkTablesAreEquivalent(t *testing.T) {
	incremental := fanMachine(t, &recorder{})

	bulk, err := New(4, &recorder{})
	require.NoError(t, err)
	for _, e := range fanEvents {
		require.NoError(t, bulk.AddCustomEvent(e))
	}
	require.NoError(t, bulk.SetTransitionTable([][]Transition{
		{{Event: "fan1_on", To: 1}},
		{{Event: "both_fans_on", To: 2}, {Event: "temp_drop", To: 0}},
		{{Event: "critical_temp", To: 3}, {Event: "temp_drop", To: 1}},
		{{Event: "temp_drop", To: 2}},
	}))

	if diff := cmp.Diff(lookupGrid(incremental), lookupGrid(bulk)); diff != "" {
		t.Errorf("lookup results differ (-incremental +bulk):\n%s", diff)
	}
}
