// Package presets bundles the example automata that ship with the editor.
package presets

import (
	"fmt"
	"sort"

	"ca-modeler/internal/ruleset"
)

// Model is a ready-made set of states and rules.
type Model struct {
	Name   string
	Title  string
	States []ruleset.State
	Rules  []ruleset.TransitionRule
}

// Default is the model a fresh session starts with.
const Default = "life"

// Registry returns a new registry holding the model's states.
func (m Model) Registry() *ruleset.Registry {
	return ruleset.NewRegistry(m.States...)
}

// Ruleset returns a new ruleset holding the model's rules.
func (m Model) Ruleset() *ruleset.Ruleset {
	rs, err := ruleset.New(m.Rules...)
	if err != nil {
		panic(fmt.Sprintf("presets: %s: %v", m.Name, err))
	}
	return rs
}

var models = map[string]func() Model{
	"life":        life,
	"wireworld":   wireworld,
	"greenberg":   greenberg,
	"briansbrain": briansBrain,
	"turing":      turing,
	"forestfire":  forestFire,
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of the named preset.
func Lookup(name string) (Model, bool) {
	f, ok := models[name]
	if !ok {
		return Model{}, false
	}
	return f(), true
}

// All returns every preset in name order.
func All() []Model {
	out := make([]Model, 0, len(models))
	for _, name := range Names() {
		out = append(out, models[name]())
	}
	return out
}

func state(id uint8, name string, r, g, b, weight uint8) ruleset.State {
	return ruleset.State{ID: id, Name: name, Color: ruleset.RGB(r, g, b), Weight: weight}
}

func when(id uint8, op ruleset.Operator, threshold uint8) ruleset.Condition {
	return ruleset.Condition{Neighbor: id, Op: op, Threshold: threshold}
}

func life() Model {
	const dead, alive = 0, 1
	return Model{
		Name:  "life",
		Title: "Game of Life",
		States: []ruleset.State{
			state(dead, "Dead", 0, 0, 0, 5),
			state(alive, "Alive", 0, 255, 0, 5),
		},
		Rules: []ruleset.TransitionRule{
			{Current: alive, Next: alive, Probability: 1, Conditions: []ruleset.Condition{when(alive, ruleset.Equal, 2)}},
			{Current: alive, Next: alive, Probability: 1, Conditions: []ruleset.Condition{when(alive, ruleset.Equal, 3)}},
			{Current: dead, Next: alive, Probability: 1, Conditions: []ruleset.Condition{when(alive, ruleset.Equal, 3)}},
			{Current: alive, Next: dead, Probability: 1, Conditions: []ruleset.Condition{when(alive, ruleset.Less, 2)}},
			{Current: alive, Next: dead, Probability: 1, Conditions: []ruleset.Condition{when(alive, ruleset.Greater, 3)}},
		},
	}
}

func wireworld() Model {
	const empty, head, tail, conductor = 0, 1, 2, 3
	return Model{
		Name:  "wireworld",
		Title: "Wireworld",
		States: []ruleset.State{
			state(empty, "Empty", 0, 0, 0, 10),
			state(head, "ElectronHead", 0, 0, 255, 0),
			state(tail, "ElectronTail", 255, 0, 0, 0),
			state(conductor, "Conductor", 255, 255, 0, 0),
		},
		Rules: []ruleset.TransitionRule{
			{Current: head, Next: tail, Probability: 1},
			{Current: tail, Next: conductor, Probability: 1},
			{
				Current: conductor, Next: head, Probability: 1,
				Conditions: []ruleset.Condition{when(head, ruleset.Equal, 1), when(head, ruleset.Equal, 2)},
				Combiners:  []ruleset.Combiner{ruleset.Or},
			},
		},
	}
}

func greenberg() Model {
	const off, on, dying = 0, 1, 2
	return Model{
		Name:  "greenberg",
		Title: "Greenberg-Hastings",
		States: []ruleset.State{
			state(off, "Off", 0, 0, 0, 10),
			state(on, "On", 0, 0, 255, 10),
			state(dying, "Dying", 255, 0, 0, 10),
		},
		Rules: []ruleset.TransitionRule{
			{Current: off, Next: on, Probability: 1, Conditions: []ruleset.Condition{when(on, ruleset.Equal, 2)}},
			{Current: on, Next: dying, Probability: 1},
			{Current: dying, Next: off, Probability: 1},
		},
	}
}

// briansBrain shares the Greenberg-Hastings rules but seeds sparsely: one
// cell in eight starts firing and none start refractory.
func briansBrain() Model {
	const off, firing, dying = 0, 1, 2
	return Model{
		Name:  "briansbrain",
		Title: "Brian's Brain",
		States: []ruleset.State{
			state(off, "Ready", 0, 0, 0, 7),
			state(firing, "Firing", 255, 255, 255, 1),
			state(dying, "Refractory", 0, 120, 255, 0),
		},
		Rules: []ruleset.TransitionRule{
			{Current: off, Next: firing, Probability: 1, Conditions: []ruleset.Condition{when(firing, ruleset.Equal, 2)}},
			{Current: firing, Next: dying, Probability: 1},
			{Current: dying, Next: off, Probability: 1},
		},
	}
}

func turing() Model {
	const empty, activator, inhibitor = 0, 1, 2
	return Model{
		Name:  "turing",
		Title: "Turing Patterns",
		States: []ruleset.State{
			state(empty, "Empty", 0, 0, 0, 10),
			state(activator, "Activator", 0, 200, 255, 5),
			state(inhibitor, "Inhibitor", 255, 100, 0, 5),
		},
		Rules: []ruleset.TransitionRule{
			{Current: empty, Next: activator, Probability: 1, Conditions: []ruleset.Condition{when(activator, ruleset.GreaterOrEqual, 2)}},
			{Current: activator, Next: inhibitor, Probability: 1, Conditions: []ruleset.Condition{when(activator, ruleset.GreaterOrEqual, 3)}},
			{Current: inhibitor, Next: empty, Probability: 1},
		},
	}
}

func forestFire() Model {
	const empty, tree, burning = 0, 1, 2
	return Model{
		Name:  "forestfire",
		Title: "Forest Fire",
		States: []ruleset.State{
			state(empty, "Empty", 0, 0, 0, 10),
			state(tree, "Tree", 0, 200, 0, 7),
			state(burning, "Burning", 255, 0, 0, 3),
		},
		Rules: []ruleset.TransitionRule{
			{Current: burning, Next: empty, Probability: 0.8},
			{Current: tree, Next: burning, Probability: 0.5, Conditions: []ruleset.Condition{when(burning, ruleset.GreaterOrEqual, 1)}},
			{Current: empty, Next: tree, Probability: 0.3},
		},
	}
}
