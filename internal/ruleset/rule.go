package ruleset

import (
	"fmt"
	"math"
	"sort"
)

// Operator compares a neighbour count against a threshold.
type Operator uint8

const (
	Equal Operator = iota
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
)

// Operators lists every operator in display order.
var Operators = []Operator{Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual}

// Evaluate applies the comparison count <op> threshold.
func (o Operator) Evaluate(count, threshold uint8) bool {
	switch o {
	case Equal:
		return count == threshold
	case NotEqual:
		return count != threshold
	case Less:
		return count < threshold
	case LessOrEqual:
		return count <= threshold
	case Greater:
		return count > threshold
	case GreaterOrEqual:
		return count >= threshold
	}
	return false
}

// String returns the operator symbol used by the rule text format.
func (o Operator) String() string {
	switch o {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

// ParseOperator maps a symbol back to its operator.
func ParseOperator(s string) (Operator, bool) {
	for _, o := range Operators {
		if o.String() == s {
			return o, true
		}
	}
	return Equal, false
}

// Combiner joins the running result with the next condition.
type Combiner uint8

const (
	And Combiner = iota
	Or
	Xor
)

// Combiners lists every combiner in display order.
var Combiners = []Combiner{And, Or, Xor}

// Apply folds next into acc.
func (c Combiner) Apply(acc, next bool) bool {
	switch c {
	case Or:
		return acc || next
	case Xor:
		return acc != next
	default:
		return acc && next
	}
}

func (c Combiner) String() string {
	switch c {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Xor:
		return "XOR"
	}
	return fmt.Sprintf("Combiner(%d)", uint8(c))
}

// ParseCombiner accepts AND, OR and XOR.
func ParseCombiner(s string) (Combiner, bool) {
	switch s {
	case "AND":
		return And, true
	case "OR":
		return Or, true
	case "XOR":
		return Xor, true
	}
	return And, false
}

// Condition is a single count(Neighbor) <Op> Threshold comparison.
type Condition struct {
	Neighbor  uint8
	Op        Operator
	Threshold uint8
}

// Holds evaluates the condition for a neighbour count.
func (c Condition) Holds(count uint8) bool {
	return c.Op.Evaluate(count, c.Threshold)
}

// TransitionRule rewrites Current into Next when its conditions hold and the
// probability gate passes. Combiners[i] joins Conditions[i] and
// Conditions[i+1].
type TransitionRule struct {
	Current     uint8
	Conditions  []Condition
	Combiners   []Combiner
	Next        uint8
	Probability float32
}

// Validate checks the structural invariants.
func (r TransitionRule) Validate() error {
	want := len(r.Conditions) - 1
	if want < 0 {
		want = 0
	}
	if len(r.Combiners) != want {
		return fmt.Errorf("%w: %d conditions, %d combiners", ErrCombinerCount, len(r.Conditions), len(r.Combiners))
	}
	p := float64(r.Probability)
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrProbability, r.Probability)
	}
	return nil
}

// Normalize pads missing combiners with And and drops surplus ones.
func (r *TransitionRule) Normalize() {
	want := len(r.Conditions) - 1
	if want < 0 {
		want = 0
	}
	if want == 0 {
		r.Combiners = nil
		return
	}
	for len(r.Combiners) < want {
		r.Combiners = append(r.Combiners, And)
	}
	r.Combiners = r.Combiners[:want]
}

// Satisfied folds the conditions left to right without short-circuiting. A
// rule without conditions is always satisfied.
func (r TransitionRule) Satisfied(count func(neighbor uint8) uint8) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	acc := r.Conditions[0].Holds(count(r.Conditions[0].Neighbor))
	for i := 1; i < len(r.Conditions); i++ {
		c := r.Conditions[i]
		acc = r.combiner(i - 1).Apply(acc, c.Holds(count(c.Neighbor)))
	}
	return acc
}

func (r TransitionRule) combiner(i int) Combiner {
	if i < len(r.Combiners) {
		return r.Combiners[i]
	}
	return And
}

// References reports whether id appears as source, destination or in any
// condition.
func (r TransitionRule) References(id uint8) bool {
	if r.Current == id || r.Next == id {
		return true
	}
	for _, c := range r.Conditions {
		if c.Neighbor == id {
			return true
		}
	}
	return false
}

// NeighborIDs returns the distinct condition state ids in ascending order.
func (r TransitionRule) NeighborIDs() []uint8 {
	var seen [256]bool
	var ids []uint8
	for _, c := range r.Conditions {
		if !seen[c.Neighbor] {
			seen[c.Neighbor] = true
			ids = append(ids, c.Neighbor)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone deep-copies the rule.
func (r TransitionRule) Clone() TransitionRule {
	r.Conditions = append([]Condition(nil), r.Conditions...)
	r.Combiners = append([]Combiner(nil), r.Combiners...)
	return r
}
