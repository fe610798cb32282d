package statemodel

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is a declarative machine description, typically parsed from a
// YAML document:
//
//	states: 4
//	events: [fan1_on, both_fans_on, critical_temp, temp_drop]
//	transitions:
//	  - { from: 0, on: [fan1_on], to: 1 }
//	  - { from: 1, on: [both_fans_on], to: 2 }
//	  - { from: 1, on: [temp_drop], to: 0 }
//
// Events listed here are registered as custom events; button and timer events
// come from AddButton and AddTimer on the built machine.
type Definition struct {
	States      int     `yaml:"states"`
	Events      []Event `yaml:"events"`
	Transitions []Rule  `yaml:"transitions"`
}

// Rule maps one source state to a destination for a set of events.
type Rule struct {
	From State   `yaml:"from"`
	On   []Event `yaml:"on"`
	To   State   `yaml:"to"`
}

// ParseDefinition decodes a YAML machine definition. Structural validation
// (event names, state ranges) happens when the definition is instantiated.
func ParseDefinition(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	return &d, nil
}

// NewMachine instantiates the definition: custom events are registered first,
// then every rule is added in document order, so lookup order matches the
// document.
func (d *Definition) NewMachine(handler Handler, opts ...Option) (*Machine, error) {
	m, err := New(d.States, handler, opts...)
	if err != nil {
		return nil, err
	}
	for _, e := range d.Events {
		if err := m.AddCustomEvent(e); err != nil {
			return nil, err
		}
	}
	for _, r := range d.Transitions {
		if err := m.AddTransition(r.From, r.On, r.To); err != nil {
			return nil, fmt.Errorf("transition %d -> %d: %w", r.From, r.To, err)
		}
	}
	return m, nil
}
