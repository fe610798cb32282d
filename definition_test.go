package statemodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fanDefinition = `
states: 4
events: [fan1_on, both_fans_on, critical_temp, temp_drop]
transitions:
  - { from: 0, on: [fan1_on], to: 1 }
  - { from: 1, on: [both_fans_on], to: 2 }
  - { from: 2, on: [critical_temp], to: 3 }
  - { from: 3, on: [temp_drop], to: 2 }
  - { from: 2, on: [temp_drop], to: 1 }
  - { from: 1, on: [temp_drop], to: 0 }
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(fanDefinition))
	require.NoError(t, err)
	assert.Equal(t, 4, def.States)
	assert.Equal(t, []Event{"fan1_on", "both_fans_on", "critical_temp", "temp_drop"}, def.Events)
	require.Len(t, def.Transitions, 6)
	assert.Equal(t, Rule{From: 0, On: []Event{"fan1_on"}, To: 1}, def.Transitions[0])

	_, err = ParseDefinition([]byte("states: [not, a, count]"))
	require.Error(t, err)
}

func TestDefinitionMachineMatchesImperativeBuild(t *testing.T) {
	def, err := ParseDefinition([]byte(fanDefinition))
	require.NoError(t, err)

	declared, err := def.NewMachine(&recorder{})
	require.NoError(t, err)

	imperative := fanMachine(t, &recorder{})

	assert.Equal(t, imperative.Events(), declared.Events())
	if diff := cmp.Diff(lookupGrid(imperative), lookupGrid(declared)); diff != "" {
		t.Errorf("lookup results differ (-imperative +declared):\n%s", diff)
	}
}

func TestDefinitionValidation(t *testing.T) {
	def := &Definition{
		States: 2,
		Events: []Event{"go"},
		Transitions: []Rule{
			{From: 0, On: []Event{"halt"}, To: 1},
		},
	}
	_, err := def.NewMachine(&recorder{})
	require.ErrorIs(t, err, ErrUnknownEvent)

	def = &Definition{States: 0}
	_, err = def.NewMachine(&recorder{})
	require.ErrorIs(t, err, ErrInvalidStateCount)

	def = &Definition{
		States:      2,
		Events:      []Event{"go"},
		Transitions: []Rule{{From: 0, On: []Event{"go"}, To: 5}},
	}
	_, err = def.NewMachine(&recorder{})
	require.ErrorIs(t, err, ErrStateOutOfRange)
}
